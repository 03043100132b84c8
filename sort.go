package disks

// SortFunc sorts a row of disks and reports the swaps it needed. The input
// row is never modified.
type SortFunc func(before DiskRow) SortResult

// SortLeftToRight runs TotalCount full passes over the row. Each pass walks
// from left to right and moves a dark disk one step right whenever a light
// disk follows it. There is no early exit once the row is sorted.
func SortLeftToRight(before DiskRow) SortResult {
	row := before.Clone()
	swaps := 0

	for a := 0; a < row.TotalCount(); a++ {
		for b := 0; b < row.TotalCount()-1; b++ {
			if row.Get(b) == DiskDark && row.Get(b+1) == DiskLight {
				row.Swap(b)
				swaps++
			}
		}
	}

	return NewSortResult(row, swaps)
}

// SortLawnmower runs TotalCount passes, each walking from the right end down
// to one past the pass number, so the left bound tightens by one disk per
// pass. A light disk is moved one step left whenever a dark disk precedes it.
// Every pass scans right to left.
func SortLawnmower(before DiskRow) SortResult {
	row := before.Clone()
	swaps := 0

	for a := 0; a < row.TotalCount(); a++ {
		for b := row.TotalCount() - 1; b > a; b-- {
			if row.Get(b) == DiskLight && row.Get(b-1) == DiskDark {
				row.Swap(b - 1)
				swaps++
			}
		}
	}

	return NewSortResult(row, swaps)
}
