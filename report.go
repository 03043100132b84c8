package disks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidLightCount = errors.New("invalid light count")

// SortReport is the serializable record of one sort run.
type SortReport struct {
	ID         uuid.UUID     `json:"id" cbor:"1"`
	Algorithm  Algorithm     `json:"algorithm" cbor:"2"`
	LightCount int           `json:"lightCount" cbor:"3"`
	Before     string        `json:"before" cbor:"4"`
	After      string        `json:"after" cbor:"5"`
	SwapCount  int           `json:"swapCount" cbor:"6"`
	Sorted     bool          `json:"sorted" cbor:"7"`
	Elapsed    time.Duration `json:"elapsed" cbor:"8"`
	// unix nanoseconds
	CreatedAt int64 `json:"createdAt" cbor:"9"`
}

func (r *SortReport) CreatedTime() time.Time {
	return time.Unix(0, r.CreatedAt)
}

// DefaultMaxLightCount bounds a single run. Both sorts are quadratic in the
// row length, so 4096 light disks is about 67 million inner steps.
const DefaultMaxLightCount = 4096

type Runner struct {
	IDs UniqueKeyGenerator[uuid.UUID]
	Now func() time.Time

	// MaxLightCount rejects larger rows with ErrInvalidLightCount. Zero means
	// DefaultMaxLightCount.
	MaxLightCount int
}

func NewRunner() *Runner {
	return &Runner{
		IDs:           &UUIDGenerator{},
		Now:           time.Now,
		MaxLightCount: DefaultMaxLightCount,
	}
}

var _defaultRunner = NewRunner()

// Run sorts the alternating row of the given light count with the named
// algorithm using the default runner.
func Run(algorithm Algorithm, lightCount int) (*SortReport, error) {
	return _defaultRunner.Run(algorithm, lightCount)
}

func (r *Runner) Run(algorithm Algorithm, lightCount int) (*SortReport, error) {
	return r.RunContext(context.Background(), algorithm, lightCount)
}

// RunContext is Run with ctx checked before the sort starts and once it
// returns. A canceled run yields ctx.Err() and no report.
func (r *Runner) RunContext(ctx context.Context, algorithm Algorithm, lightCount int) (*SortReport, error) {
	maxLightCount := r.MaxLightCount
	if maxLightCount <= 0 {
		maxLightCount = DefaultMaxLightCount
	}

	if lightCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLightCount, lightCount)
	}
	if lightCount > maxLightCount {
		return nil, fmt.Errorf("%w: %d exceeds limit %d", ErrInvalidLightCount, lightCount, maxLightCount)
	}

	sortFunc, err := LookupSortFunc(algorithm)
	if err != nil {
		return nil, err
	}

	id, err := r.IDs.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report id: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	before := NewDiskRow(lightCount)

	start := r.Now()
	result := sortFunc(before)
	elapsed := r.Now().Sub(start)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	after := result.After()
	return &SortReport{
		ID:         id,
		Algorithm:  algorithm,
		LightCount: lightCount,
		Before:     before.String(),
		After:      after.String(),
		SwapCount:  result.SwapCount(),
		Sorted:     after.IsSorted(),
		Elapsed:    elapsed,
		CreatedAt:  start.UnixNano(),
	}, nil
}
