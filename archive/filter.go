package archive

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"
	jump "github.com/lithammer/go-jump-consistent-hash"
)

var ErrFilterConfigChanged = errors.New("filter configuration changed")

// FilterStorer is the subset of *pebble.DB the filter persists itself to.
type FilterStorer interface {
	Get(key []byte) ([]byte, io.Closer, error)
	Set(key, value []byte, opts *pebble.WriteOptions) error
	DeleteRange(start, end []byte, opts *pebble.WriteOptions) error
}

type filterBucket struct {
	num        int
	hasChanges bool
	written    bool

	filter *bloom.BloomFilter
	mutex  sync.Mutex
}

// BloomFilter spreads keys over a fixed number of bloom filter buckets by
// jump consistent hashing, so Save only rewrites buckets that changed.
type BloomFilter struct {
	hasher *sync.Pool

	keyPrefix []byte
	buckets   []*filterBucket

	mutex sync.RWMutex
}

func NewBloomFilter(n uint, fp float64, numOfBuckets int) *BloomFilter {
	buckets := make([]*filterBucket, 0, numOfBuckets)
	for i := 0; i < numOfBuckets; i++ {
		buckets = append(buckets, &filterBucket{
			num:    i,
			filter: bloom.NewWithEstimates(n, fp),
		})
	}

	return &BloomFilter{
		hasher: &sync.Pool{
			New: func() any {
				return jump.NewCRC32()
			},
		},
		keyPrefix: NewKeyBuilder(nil, FilterTableID).AddStringField("bf_").Bytes(),
		buckets:   buckets,
	}
}

func (b *BloomFilter) Add(_ context.Context, key []byte) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	bucket := b.buckets[b.hash(key)]
	bucket.mutex.Lock()
	bucket.hasChanges = !bucket.filter.TestOrAdd(key) || bucket.hasChanges
	bucket.mutex.Unlock()
}

func (b *BloomFilter) MayContain(_ context.Context, key []byte) bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	bucket := b.buckets[b.hash(key)]
	bucket.mutex.Lock()
	defer bucket.mutex.Unlock()
	return bucket.filter.Test(key)
}

// Load merges the buckets saved by Save. It fails with
// ErrFilterConfigChanged when the saved filter was built with different
// sizing, and with the store's error when nothing was saved yet.
func (b *BloomFilter) Load(_ context.Context, store FilterStorer) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	data, closer, err := store.Get(b.bucketCountKey())
	if err != nil {
		return err
	}
	if len(data) != 8 {
		_ = closer.Close()
		return fmt.Errorf("%w: bad bucket count record", ErrFilterConfigChanged)
	}
	savedBuckets := binary.BigEndian.Uint64(data)
	_ = closer.Close()

	if savedBuckets != uint64(len(b.buckets)) {
		return fmt.Errorf("%w: %d buckets saved, %d configured", ErrFilterConfigChanged, savedBuckets, len(b.buckets))
	}

	for _, bucket := range b.buckets {
		data, closer, err := store.Get(b.bucketKey(bucket.num))
		if err != nil {
			return err
		}

		filter, err := decodeFilter(data)
		_ = closer.Close()
		if err != nil {
			return err
		}

		if err = bucket.filter.Merge(filter); err != nil {
			return fmt.Errorf("%w: %s", ErrFilterConfigChanged, err.Error())
		}
		bucket.written = true
	}

	return nil
}

func (b *BloomFilter) Save(_ context.Context, store FilterStorer) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var countBuff [8]byte
	binary.BigEndian.PutUint64(countBuff[:], uint64(len(b.buckets)))
	if err := store.Set(b.bucketCountKey(), countBuff[:], pebble.Sync); err != nil {
		return err
	}

	for _, bucket := range b.buckets {
		if !bucket.hasChanges && bucket.written {
			continue
		}

		data, err := encodeFilter(bucket.filter)
		if err != nil {
			return err
		}

		if err = store.Set(b.bucketKey(bucket.num), data, pebble.Sync); err != nil {
			return err
		}

		bucket.hasChanges = false
		bucket.written = true
	}

	return nil
}

// Clear removes the saved filter from store.
func (b *BloomFilter) Clear(_ context.Context, store FilterStorer) error {
	return store.DeleteRange(b.keyPrefix, keySuccessor(b.keyPrefix), pebble.Sync)
}

func (b *BloomFilter) hash(key []byte) int {
	hasher := b.hasher.Get().(jump.KeyHasher)
	defer b.hasher.Put(hasher)
	return int(HashBytes(key, int32(len(b.buckets)), hasher))
}

func (b *BloomFilter) bucketKey(num int) []byte {
	return append(append([]byte{}, b.keyPrefix...), strconv.Itoa(num)...)
}

func (b *BloomFilter) bucketCountKey() []byte {
	return append(append([]byte{}, b.keyPrefix...), "bn"...)
}

func encodeFilter(filter *bloom.BloomFilter) ([]byte, error) {
	var buff bytes.Buffer
	zw, err := zstd.NewWriter(&buff)
	if err != nil {
		return nil, err
	}

	if _, err = filter.WriteTo(zw); err != nil {
		_ = zw.Close()
		return nil, err
	}

	if err = zw.Close(); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

func decodeFilter(data []byte) (*bloom.BloomFilter, error) {
	zr, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	filter := bloom.New(1, 1)
	if _, err = filter.ReadFrom(zr); err != nil {
		return nil, err
	}
	return filter, nil
}

func HashBytes(key []byte, buckets int32, h jump.KeyHasher) int32 {
	h.Reset()
	_, err := h.Write(key)
	if err != nil {
		panic(err)
	}
	return jump.Hash(h.Sum64(), buckets)
}
