package archive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type filterStorer struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newFilterStorer() *filterStorer {
	return &filterStorer{data: make(map[string][]byte)}
}

func (f *filterStorer) Get(key []byte) ([]byte, io.Closer, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keyData, ok := f.data[string(key)]
	if !ok {
		return nil, nil, pebble.ErrNotFound
	}
	return keyData, io.NopCloser(nil), nil
}

func (f *filterStorer) Set(key []byte, value []byte, _ *pebble.WriteOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	f.data[string(key)] = valueCopy
	return nil
}

func (f *filterStorer) DeleteRange(start []byte, end []byte, _ *pebble.WriteOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for key := range f.data {
		if strings.Compare(key, string(start)) >= 0 && strings.Compare(key, string(end)) < 0 {
			delete(f.data, key)
		}
	}
	return nil
}

func TestBloomFilter(t *testing.T) {
	ctx := context.Background()
	store := newFilterStorer()

	filter := NewBloomFilter(1000, 0.01, 4)
	for i := 0; i < 100; i++ {
		filter.Add(ctx, []byte(fmt.Sprintf("key_%d", i)))
	}

	for i := 0; i < 100; i++ {
		assert.True(t, filter.MayContain(ctx, []byte(fmt.Sprintf("key_%d", i))))
	}

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, filter.Save(ctx, store))

		loaded := NewBloomFilter(1000, 0.01, 4)
		require.NoError(t, loaded.Load(ctx, store))

		for i := 0; i < 100; i++ {
			assert.True(t, loaded.MayContain(ctx, []byte(fmt.Sprintf("key_%d", i))))
		}

		misses := 0
		for i := 100; i < 1100; i++ {
			if !loaded.MayContain(ctx, []byte(fmt.Sprintf("key_%d", i))) {
				misses++
			}
		}
		assert.Greater(t, misses, 900)
	})

	t.Run("BucketCountChanged", func(t *testing.T) {
		other := NewBloomFilter(1000, 0.01, 8)
		assert.ErrorIs(t, other.Load(ctx, store), ErrFilterConfigChanged)
	})

	t.Run("SizingChanged", func(t *testing.T) {
		other := NewBloomFilter(50_000, 0.001, 4)
		assert.ErrorIs(t, other.Load(ctx, store), ErrFilterConfigChanged)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, filter.Clear(ctx, store))
		assert.Empty(t, store.data)

		err := NewBloomFilter(1000, 0.01, 4).Load(ctx, store)
		assert.ErrorIs(t, err, pebble.ErrNotFound)
	})
}
