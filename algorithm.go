package disks

import (
	"errors"
	"fmt"
)

var ErrUnknownAlgorithm = errors.New("unknown algorithm")

type Algorithm string

const (
	AlgorithmLeftToRight Algorithm = "left-to-right"
	AlgorithmLawnmower   Algorithm = "lawnmower"
)

var _algorithms = []struct {
	algorithm Algorithm
	sortFunc  SortFunc
}{
	{AlgorithmLeftToRight, SortLeftToRight},
	{AlgorithmLawnmower, SortLawnmower},
}

// Algorithms returns every registered algorithm in a stable order.
func Algorithms() []Algorithm {
	algorithms := make([]Algorithm, 0, len(_algorithms))
	for _, entry := range _algorithms {
		algorithms = append(algorithms, entry.algorithm)
	}
	return algorithms
}

func LookupSortFunc(algorithm Algorithm) (SortFunc, error) {
	for _, entry := range _algorithms {
		if entry.algorithm == algorithm {
			return entry.sortFunc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
}

func (a Algorithm) String() string {
	return string(a)
}
