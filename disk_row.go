package disks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyRow      = errors.New("disk row is empty")
	ErrUnbalancedRow = errors.New("disk row must hold as many light disks as dark disks")
	ErrInvalidColor  = errors.New("invalid disk color")
)

// DiskRow is the state of one row of disks. The row always holds an even
// number of disks, half of them light and half of them dark.
//
// DiskRow wraps a slice, so plain assignment shares the underlying disks.
// Use Clone to get an independent copy.
type DiskRow struct {
	colors []DiskColor
}

// NewDiskRow creates a row of 2*lightCount disks in alternating order,
// starting with a dark disk at index 0. It panics if lightCount is not
// positive.
func NewDiskRow(lightCount int) DiskRow {
	if lightCount <= 0 {
		panic(fmt.Sprintf("disks: light count must be positive, got %d", lightCount))
	}

	colors := make([]DiskColor, lightCount*2)
	for i := range colors {
		if i%2 == 0 {
			colors[i] = DiskDark
		} else {
			colors[i] = DiskLight
		}
	}
	return DiskRow{colors: colors}
}

// ParseDiskRow reads a row rendered by String, e.g. "D L D L".
func ParseDiskRow(s string) (DiskRow, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return DiskRow{}, ErrEmptyRow
	}

	var light int
	colors := make([]DiskColor, 0, len(tokens))
	for _, token := range tokens {
		color, err := ParseDiskColor(token)
		if err != nil {
			return DiskRow{}, err
		}
		if color == DiskLight {
			light++
		}
		colors = append(colors, color)
	}

	if light*2 != len(colors) {
		return DiskRow{}, fmt.Errorf("%w: %d light of %d", ErrUnbalancedRow, light, len(colors))
	}

	return DiskRow{colors: colors}, nil
}

func (r DiskRow) TotalCount() int {
	return len(r.colors)
}

// LightCount assumes the row is balanced, it is not tracked separately.
func (r DiskRow) LightCount() int {
	return r.TotalCount() / 2
}

func (r DiskRow) DarkCount() int {
	return r.LightCount()
}

func (r DiskRow) IsIndex(i int) bool {
	return i >= 0 && i < r.TotalCount()
}

// Get returns the color at index. It panics if index is out of range.
func (r DiskRow) Get(index int) DiskColor {
	r.mustIndex(index)
	return r.colors[index]
}

// Swap exchanges the disk at leftIndex with its right neighbour. It panics
// unless both leftIndex and leftIndex+1 are valid.
func (r *DiskRow) Swap(leftIndex int) {
	r.mustIndex(leftIndex)
	rightIndex := leftIndex + 1
	r.mustIndex(rightIndex)

	r.colors[leftIndex], r.colors[rightIndex] = r.colors[rightIndex], r.colors[leftIndex]
}

func (r DiskRow) String() string {
	var sb strings.Builder
	sb.Grow(r.TotalCount() * 2)
	for i, color := range r.colors {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(color.Token())
	}
	return sb.String()
}

// IsAlternating reports whether the disk at index 0 is dark, the disk at
// index 1 is light, and so on for the entire row.
func (r DiskRow) IsAlternating() bool {
	if r.Get(0) != DiskDark {
		return false
	}

	for i := 1; i < r.TotalCount(); i++ {
		if r.colors[i] == r.colors[i-1] {
			return false
		}
	}
	return true
}

// IsSorted reports whether all light disks are on the left (low indices)
// and all dark disks are on the right (high indices).
func (r DiskRow) IsSorted() bool {
	for i := 0; i < r.LightCount(); i++ {
		if r.colors[i] == DiskDark {
			return false
		}
	}
	for i := r.LightCount(); i < r.TotalCount(); i++ {
		if r.colors[i] == DiskLight {
			return false
		}
	}
	return true
}

// Equal reports whether both rows hold the same colors at every index.
// Rows of different length are never equal.
func (r DiskRow) Equal(other DiskRow) bool {
	if len(r.colors) != len(other.colors) {
		return false
	}
	for i := range r.colors {
		if r.colors[i] != other.colors[i] {
			return false
		}
	}
	return true
}

func (r DiskRow) Clone() DiskRow {
	if r.colors == nil {
		return DiskRow{}
	}
	colors := make([]DiskColor, len(r.colors))
	copy(colors, r.colors)
	return DiskRow{colors: colors}
}

// Colors returns a copy of the row's colors in index order.
func (r DiskRow) Colors() []DiskColor {
	return r.Clone().colors
}

func (r DiskRow) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *DiskRow) UnmarshalText(text []byte) error {
	row, err := ParseDiskRow(string(text))
	if err != nil {
		return err
	}
	*r = row
	return nil
}

func (r DiskRow) mustIndex(i int) {
	if !r.IsIndex(i) {
		panic(fmt.Sprintf("disks: index %d out of range [0, %d)", i, r.TotalCount()))
	}
}
