package disks

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator_Next(t *testing.T) {
	uuidGenerator := &UUIDGenerator{}

	id, err := uuidGenerator.Next()
	require.NoError(t, err)

	id2, err := uuidGenerator.Next()
	require.NoError(t, err)

	require.NotEqual(t, id, id2)
	assert.Equal(t, uuid.Version(4), id.Version())
}

func TestUUIDGenerator_Interface(t *testing.T) {
	uuidGenerator := UniqueKeyGenerator[uuid.UUID](&UUIDGenerator{})
	require.NotNil(t, uuidGenerator)
}
