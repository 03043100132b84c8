package serializers_test

import (
	"testing"
	"time"

	"github.com/go-bond/disks/serializers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestProtobufWellKnownTypes(t *testing.T) {
	serializer := &serializers.ProtobufSerializer{
		MarshalOptions: proto.MarshalOptions{Deterministic: true},
	}

	t.Run("Timestamp", func(t *testing.T) {
		ts := timestamppb.New(time.Unix(1700000000, 123456789))

		data, err := serializer.Serialize(ts)
		require.NoError(t, err)

		decoded := &timestamppb.Timestamp{}
		require.NoError(t, serializer.Deserialize(data, decoded))
		assert.True(t, proto.Equal(ts, decoded))
		assert.Equal(t, int64(1700000000123456789), decoded.AsTime().UnixNano())
	})

	t.Run("TimestampPointerToPointer", func(t *testing.T) {
		ts := timestamppb.New(time.Unix(42, 0))

		data, err := serializer.Serialize(ts)
		require.NoError(t, err)

		var decoded *timestamppb.Timestamp
		require.NoError(t, serializer.Deserialize(data, &decoded))
		require.NotNil(t, decoded)
		assert.True(t, proto.Equal(ts, decoded))
	})

	t.Run("Struct", func(t *testing.T) {
		st, err := structpb.NewStruct(map[string]interface{}{
			"algorithm": "lawnmower",
			"swapCount": 3,
			"sorted":    true,
		})
		require.NoError(t, err)

		data, err := serializer.Serialize(st)
		require.NoError(t, err)

		decoded := &structpb.Struct{}
		require.NoError(t, serializer.Deserialize(data, decoded))
		assert.True(t, proto.Equal(st, decoded))
	})
}

func TestProtobufUnsupportedType(t *testing.T) {
	serializer := &serializers.ProtobufSerializer{}

	_, err := serializer.Serialize(struct{ Name string }{"disk"})
	assert.EqualError(t, err, "error: struct { Name string } does not implement protobuf marshaler")

	var n int
	assert.Error(t, serializer.Deserialize([]byte{}, &n))
}

func TestProtobufCorruptReport(t *testing.T) {
	serializer := &serializers.ProtobufSerializer{}

	st, err := structpb.NewStruct(map[string]interface{}{"id": "not-a-uuid"})
	require.NoError(t, err)
	data, err := serializer.Serialize(st)
	require.NoError(t, err)

	report := sampleReport()
	assert.ErrorContains(t, serializer.Deserialize(data, report), "invalid report id")
}
