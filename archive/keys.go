package archive

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-bond/disks"
	"github.com/google/uuid"
	"golang.org/x/exp/constraints"
)

type TableID byte

const (
	ReportTableID TableID = 0x01
	FilterTableID TableID = 0x02
)

// KeyBuilder appends ordered fields to a key. Every field is prefixed with
// its position so that keys with a missing trailing field sort first.
type KeyBuilder struct {
	buff []byte
	fid  byte
}

func NewKeyBuilder(buff []byte, table TableID) KeyBuilder {
	return KeyBuilder{buff: append(buff, byte(table))}
}

func (b KeyBuilder) AddUint64Field(i uint64) KeyBuilder {
	bt := b.putFieldID()
	bt.buff = appendUint(bt.buff, i)
	return bt
}

func (b KeyBuilder) AddUint32Field(i uint32) KeyBuilder {
	bt := b.putFieldID()
	bt.buff = appendUint(bt.buff, i)
	return bt
}

// AddStringField is length prefixed, so "lawnmower" is not a prefix of
// "lawnmower2".
func (b KeyBuilder) AddStringField(s string) KeyBuilder {
	bt := b.putFieldID()
	bt.buff = appendUint(bt.buff, uint32(len(s)))
	bt.buff = append(bt.buff, s...)
	return bt
}

func (b KeyBuilder) AddBytesField(bs []byte) KeyBuilder {
	bt := b.putFieldID()
	bt.buff = append(bt.buff, bs...)
	return bt
}

func (b KeyBuilder) putFieldID() KeyBuilder {
	return KeyBuilder{
		buff: append(b.buff, b.fid+1),
		fid:  b.fid + 1,
	}
}

func (b KeyBuilder) Bytes() []byte {
	return b.buff
}

func appendUint[T constraints.Unsigned](buff []byte, v T) []byte {
	size := int(unsafe.Sizeof(v))
	for i := size - 1; i >= 0; i-- {
		buff = append(buff, byte(uint64(v)>>(8*i)))
	}
	return buff
}

type ReportKey struct {
	Algorithm  disks.Algorithm
	LightCount int
	ID         uuid.UUID
}

func ReportKeyOf(report *disks.SortReport) ReportKey {
	return ReportKey{
		Algorithm:  report.Algorithm,
		LightCount: report.LightCount,
		ID:         report.ID,
	}
}

func (k ReportKey) Encode(buff []byte) []byte {
	return NewKeyBuilder(buff, ReportTableID).
		AddStringField(k.Algorithm.String()).
		AddUint64Field(uint64(k.LightCount)).
		AddBytesField(k.ID[:]).
		Bytes()
}

func DecodeReportKey(key []byte) (ReportKey, error) {
	if len(key) < 1 || TableID(key[0]) != ReportTableID {
		return ReportKey{}, fmt.Errorf("not a report key")
	}

	rest := key[1:]
	if len(rest) < 5 || rest[0] != 1 {
		return ReportKey{}, fmt.Errorf("report key too short: %d bytes", len(key))
	}
	algorithmLen := int(binary.BigEndian.Uint32(rest[1:5]))
	rest = rest[5:]
	if len(rest) < algorithmLen {
		return ReportKey{}, fmt.Errorf("invalid algorithm length: %d exceeds key bounds %d", algorithmLen, len(rest))
	}
	algorithm := disks.Algorithm(rest[:algorithmLen])
	rest = rest[algorithmLen:]

	if len(rest) != 1+8+1+16 || rest[0] != 2 || rest[9] != 3 {
		return ReportKey{}, fmt.Errorf("malformed report key")
	}

	var id uuid.UUID
	copy(id[:], rest[10:])

	return ReportKey{
		Algorithm:  algorithm,
		LightCount: int(binary.BigEndian.Uint64(rest[1:9])),
		ID:         id,
	}, nil
}

// reportKeyPrefix covers every report of algorithm, or only those of one
// light count when lightCount is positive.
func reportKeyPrefix(algorithm disks.Algorithm, lightCount int) []byte {
	builder := NewKeyBuilder(nil, ReportTableID)
	if algorithm == "" {
		return builder.Bytes()
	}

	builder = builder.AddStringField(algorithm.String())
	if lightCount > 0 {
		builder = builder.AddUint64Field(uint64(lightCount))
	}
	return builder.Bytes()
}

// keySuccessor returns the smallest key greater than every key starting
// with prefix.
func keySuccessor(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
