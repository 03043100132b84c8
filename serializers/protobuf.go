package serializers

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtobufSerializer with support for vtproto (code-gen'd) protobuf,
// and standard protobuf (google.golang.org/protobuf/proto).
//
// Types that are not protobuf messages can opt in by implementing
// ProtobufStructMarshaler and ProtobufStructUnmarshaler, in which case
// they are written as a structpb.Struct.
type ProtobufSerializer struct {
	MarshalOptions   proto.MarshalOptions
	UnmarshalOptions proto.UnmarshalOptions
}

type ProtobufVTMarshaler interface {
	MarshalVT() ([]byte, error)
}

type ProtobufVTUnmarshaler interface {
	UnmarshalVT(b []byte) error
}

type ProtobufStructMarshaler interface {
	MarshalStruct() (*structpb.Struct, error)
}

type ProtobufStructUnmarshaler interface {
	UnmarshalStruct(s *structpb.Struct) error
}

func (s *ProtobufSerializer) Serialize(i interface{}) ([]byte, error) {
	switch v := i.(type) {
	case ProtobufVTMarshaler:
		// vtproto marshaler is faster than the reflection based one
		return v.MarshalVT()
	case proto.Message:
		return s.MarshalOptions.Marshal(v)
	case ProtobufStructMarshaler:
		st, err := v.MarshalStruct()
		if err != nil {
			return nil, err
		}
		return s.MarshalOptions.Marshal(st)
	}

	return nil, fmt.Errorf("error: %T does not implement protobuf marshaler", i)
}

func (s *ProtobufSerializer) Deserialize(b []byte, i interface{}) error {
	switch v := pointerTarget(i).(type) {
	case ProtobufVTUnmarshaler:
		return v.UnmarshalVT(b)
	case proto.Message:
		return s.UnmarshalOptions.Unmarshal(b, v)
	case ProtobufStructUnmarshaler:
		st := &structpb.Struct{}
		if err := s.UnmarshalOptions.Unmarshal(b, st); err != nil {
			return err
		}
		return v.UnmarshalStruct(st)
	}

	return fmt.Errorf("error: %T does not implement protobuf unmarshaler", i)
}

// pointerTarget returns *i for a pointer to a pointer, allocating it when
// nil, and i otherwise.
func pointerTarget(i interface{}) interface{} {
	rv := reflect.ValueOf(i)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return i
	}

	elem := rv.Elem()
	if elem.Kind() != reflect.Pointer {
		return i
	}
	if elem.IsNil() {
		elem.Set(reflect.New(elem.Type().Elem()))
	}
	return elem.Interface()
}
