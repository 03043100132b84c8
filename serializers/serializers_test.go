package serializers_test

import (
	"testing"
	"time"

	"github.com/go-bond/disks"
	"github.com/go-bond/disks/serializers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func sampleReport() *disks.SortReport {
	return &disks.SortReport{
		ID:         uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427"),
		Algorithm:  disks.AlgorithmLawnmower,
		LightCount: 2,
		Before:     "D L D L",
		After:      "L L D D",
		SwapCount:  3,
		Sorted:     true,
		Elapsed:    1500 * time.Nanosecond,
		CreatedAt:  1700000000123456789,
	}
}

func TestSerializers(t *testing.T) {
	canonical, err := serializers.NewCanonicalCBORSerializer()
	require.NoError(t, err)

	variants := []struct {
		Name       string
		Serializer disks.Serializer[any]
	}{
		{"CBOR", &serializers.CBORSerializer{}},
		{"CBORCanonical", canonical},
		{"JSON", &serializers.JsonSerializer{}},
		{"JSONIndent", &serializers.JsonSerializer{Indent: "  "}},
		{"Msgpack", &serializers.MsgpackSerializer{}},
		{"MsgpackJSONTags", &serializers.MsgpackSerializer{StructTag: "json"}},
		{"Protobuf", &serializers.ProtobufSerializer{}},
		{"ProtobufDeterministic", &serializers.ProtobufSerializer{MarshalOptions: proto.MarshalOptions{Deterministic: true}}},
	}

	for _, variant := range variants {
		t.Run(variant.Name, func(t *testing.T) {
			report := sampleReport()

			data, err := variant.Serializer.Serialize(report)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			var decoded *disks.SortReport
			err = variant.Serializer.Deserialize(data, &decoded)
			require.NoError(t, err)
			assert.Equal(t, report, decoded)
		})
	}
}

func TestCanonicalCBORIsStable(t *testing.T) {
	serializer, err := serializers.NewCanonicalCBORSerializer()
	require.NoError(t, err)

	first, err := serializer.Serialize(sampleReport())
	require.NoError(t, err)

	second, err := serializer.Serialize(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSerializerAnyWrapper(t *testing.T) {
	wrapper := &disks.SerializerAnyWrapper[*disks.SortReport]{
		Serializer: &serializers.CBORSerializer{},
	}

	data, err := wrapper.Serialize(sampleReport())
	require.NoError(t, err)

	decoded := &disks.SortReport{}
	require.NoError(t, wrapper.Deserialize(data, decoded))
	assert.Equal(t, sampleReport(), decoded)
}

func TestJsonSerializerFieldNames(t *testing.T) {
	data, err := (&serializers.JsonSerializer{}).Serialize(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"swapCount":3`)
	assert.Contains(t, string(data), `"id":"1b4e28ba-2fa1-11d2-883f-0016d3cca427"`)
}
