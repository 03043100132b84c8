package archive

import (
	"github.com/cockroachdb/pebble"
	pebblebloom "github.com/cockroachdb/pebble/bloom"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/go-bond/disks"
	"github.com/go-bond/disks/serializers"
)

const (
	DefaultFilterBuckets       = 8
	DefaultFilterExpectedItems = 100_000
	DefaultFilterFalsePositive = 0.01
)

type Options struct {
	PebbleOptions *pebble.Options

	Serializer disks.Serializer[any]

	// FilterBuckets, FilterExpectedItems and FilterFalsePositive size the
	// bloom filter kept in front of Get. Changing any of them discards the
	// saved filter on the next Open and rebuilds it from the stored keys.
	FilterBuckets       int
	FilterExpectedItems uint
	FilterFalsePositive float64
}

func DefaultOptions() *Options {
	return &Options{
		PebbleOptions:       DefaultPebbleOptions(),
		Serializer:          &serializers.CBORSerializer{},
		FilterBuckets:       DefaultFilterBuckets,
		FilterExpectedItems: DefaultFilterExpectedItems,
		FilterFalsePositive: DefaultFilterFalsePositive,
	}
}

// DefaultPebbleOptions is tuned for a small, append mostly archive. Fields
// left unset are filled in by pebble.Open.
func DefaultPebbleOptions() *pebble.Options {
	opts := &pebble.Options{
		FS:                          vfs.Default,
		L0CompactionThreshold:       2,
		L0StopWritesThreshold:       1000,
		MaxOpenFiles:                1000,
		MemTableSize:                4 << 20, // 4 MB
		MemTableStopWritesThreshold: 4,
	}

	for i := range opts.Levels {
		l := &opts.Levels[i]
		l.BlockSize = 32 << 10 // 32 KB
		l.FilterPolicy = pebblebloom.FilterPolicy(10)
		l.FilterType = pebble.TableFilter
	}

	return opts
}

func (o *Options) withDefaults() *Options {
	defaults := DefaultOptions()
	if o == nil {
		return defaults
	}

	opts := *o
	if opts.PebbleOptions == nil {
		opts.PebbleOptions = defaults.PebbleOptions
	}
	if opts.Serializer == nil {
		opts.Serializer = defaults.Serializer
	}
	if opts.FilterBuckets <= 0 {
		opts.FilterBuckets = defaults.FilterBuckets
	}
	if opts.FilterExpectedItems == 0 {
		opts.FilterExpectedItems = defaults.FilterExpectedItems
	}
	if opts.FilterFalsePositive <= 0 || opts.FilterFalsePositive >= 1 {
		opts.FilterFalsePositive = defaults.FilterFalsePositive
	}
	return &opts
}
