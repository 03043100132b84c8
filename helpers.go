package disks

import (
	"github.com/google/uuid"
)

// UniqueKeyGenerator produces report ids.
type UniqueKeyGenerator[T any] interface {
	Next() (T, error)
}

// UUIDGenerator generates random (version 4) UUIDs.
type UUIDGenerator struct{}

func (g *UUIDGenerator) Next() (uuid.UUID, error) {
	return uuid.NewRandom()
}
