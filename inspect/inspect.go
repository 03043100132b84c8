package inspect

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/fatih/structs"
	"github.com/go-bond/disks"
	"github.com/go-bond/disks/archive"
)

var ErrNoArchive = errors.New("no archive configured")

type Inspect interface {
	Algorithms() ([]string, error)
	ReportFields() (map[string]string, error)

	Sort(ctx context.Context, algorithm string, lightCount int) (*disks.SortReport, error)
	History(ctx context.Context, algorithm string, lightCount int, limit uint64) ([]*disks.SortReport, error)
}

type inspect struct {
	archive *archive.Archive
	runner  *disks.Runner
}

// NewInspect returns an Inspect that runs sorts in process. Reports are
// stored in a when it is not nil.
func NewInspect(a *archive.Archive) (Inspect, error) {
	return &inspect{archive: a, runner: disks.NewRunner()}, nil
}

func (in *inspect) Algorithms() ([]string, error) {
	var algorithms []string
	for _, algorithm := range disks.Algorithms() {
		algorithms = append(algorithms, algorithm.String())
	}
	return algorithms, nil
}

func (in *inspect) ReportFields() (map[string]string, error) {
	fieldsAndTypes := make(map[string]string)
	for fieldName, value := range structs.Map(disks.SortReport{}) {
		fieldsAndTypes[fieldName] = reflect.ValueOf(value).Kind().String()
	}
	return fieldsAndTypes, nil
}

func (in *inspect) Sort(ctx context.Context, algorithm string, lightCount int) (*disks.SortReport, error) {
	if algorithm == "" {
		return nil, fmt.Errorf("algorithm can not be empty")
	}

	report, err := in.runner.RunContext(ctx, disks.Algorithm(algorithm), lightCount)
	if err != nil {
		return nil, err
	}

	if in.archive != nil {
		if err = in.archive.Put(ctx, report); err != nil {
			return nil, fmt.Errorf("failed to archive report: %w", err)
		}
	}

	return report, nil
}

func (in *inspect) History(ctx context.Context, algorithm string, lightCount int, limit uint64) ([]*disks.SortReport, error) {
	if in.archive == nil {
		return nil, ErrNoArchive
	}
	if lightCount < 0 {
		return nil, fmt.Errorf("%w: %d", disks.ErrInvalidLightCount, lightCount)
	}

	return in.archive.List(ctx, disks.Algorithm(algorithm), lightCount, int(limit))
}

// Close closes the underlying archive, if any.
func (in *inspect) Close() error {
	if in.archive == nil {
		return nil
	}
	return in.archive.Close()
}
