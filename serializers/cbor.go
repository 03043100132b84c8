package serializers

import (
	"github.com/fxamacker/cbor/v2"
)

// CBORSerializer is the default archive codec. A nil mode falls back to the
// package level cbor.Marshal / cbor.Unmarshal.
type CBORSerializer struct {
	EncMode cbor.EncMode
	DecMode cbor.DecMode
}

// NewCanonicalCBORSerializer produces byte-identical output for equal
// values, which keeps archive values stable across runs.
func NewCanonicalCBORSerializer() (*CBORSerializer, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}

	decMode, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}

	return &CBORSerializer{EncMode: encMode, DecMode: decMode}, nil
}

func (c *CBORSerializer) Serialize(i interface{}) ([]byte, error) {
	if c.EncMode != nil {
		return c.EncMode.Marshal(i)
	}
	return cbor.Marshal(i)
}

func (c *CBORSerializer) Deserialize(b []byte, i interface{}) error {
	if c.DecMode != nil {
		return c.DecMode.Unmarshal(b, i)
	}
	return cbor.Unmarshal(b, i)
}
