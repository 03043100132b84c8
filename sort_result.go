package disks

// SortResult is the output of a sorting algorithm: the final row together
// with the number of adjacent swaps performed to reach it.
type SortResult struct {
	after     DiskRow
	swapCount int
}

// NewSortResult takes its own copy of after.
func NewSortResult(after DiskRow, swapCount int) SortResult {
	if swapCount < 0 {
		panic("disks: swap count can not be negative")
	}
	return SortResult{after: after.Clone(), swapCount: swapCount}
}

// After returns a copy of the final row.
func (s SortResult) After() DiskRow {
	return s.after.Clone()
}

func (s SortResult) SwapCount() int {
	return s.swapCount
}
