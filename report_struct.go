package disks

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// MarshalStruct encodes r as a protobuf Struct. Elapsed and CreatedAt are
// written as decimal strings, Struct numbers being float64.
func (r *SortReport) MarshalStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":         r.ID.String(),
		"algorithm":  r.Algorithm.String(),
		"lightCount": r.LightCount,
		"before":     r.Before,
		"after":      r.After,
		"swapCount":  r.SwapCount,
		"sorted":     r.Sorted,
		"elapsed":    strconv.FormatInt(int64(r.Elapsed), 10),
		"createdAt":  strconv.FormatInt(r.CreatedAt, 10),
	})
}

func (r *SortReport) UnmarshalStruct(s *structpb.Struct) error {
	fields := s.GetFields()

	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return fmt.Errorf("invalid report id: %w", err)
	}

	elapsed, err := strconv.ParseInt(fields["elapsed"].GetStringValue(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid report elapsed: %w", err)
	}

	createdAt, err := strconv.ParseInt(fields["createdAt"].GetStringValue(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid report createdAt: %w", err)
	}

	*r = SortReport{
		ID:         id,
		Algorithm:  Algorithm(fields["algorithm"].GetStringValue()),
		LightCount: int(fields["lightCount"].GetNumberValue()),
		Before:     fields["before"].GetStringValue(),
		After:      fields["after"].GetStringValue(),
		SwapCount:  int(fields["swapCount"].GetNumberValue()),
		Sorted:     fields["sorted"].GetBoolValue(),
		Elapsed:    time.Duration(elapsed),
		CreatedAt:  createdAt,
	}
	return nil
}
