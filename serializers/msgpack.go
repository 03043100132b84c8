package serializers

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackSerializer encodes with msgpack. When StructTag is set, struct
// fields are named from that tag (e.g. "json") instead of "msgpack".
type MsgpackSerializer struct {
	StructTag string
}

func (m *MsgpackSerializer) Serialize(i interface{}) ([]byte, error) {
	if m.StructTag == "" {
		return msgpack.Marshal(i)
	}

	var buff bytes.Buffer
	enc := msgpack.NewEncoder(&buff)
	enc.SetCustomStructTag(m.StructTag)
	if err := enc.Encode(i); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

func (m *MsgpackSerializer) Deserialize(b []byte, i interface{}) error {
	if m.StructTag == "" {
		return msgpack.Unmarshal(b, i)
	}

	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag(m.StructTag)
	return dec.Decode(i)
}
