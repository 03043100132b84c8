package disks

import "fmt"

// DiskColor is the state of one disk, either light or dark.
type DiskColor uint8

const (
	DiskLight DiskColor = iota
	DiskDark
)

const (
	lightToken = 'L'
	darkToken  = 'D'
)

func (c DiskColor) String() string {
	return string(c.Token())
}

// Token returns the single character used when rendering a row.
func (c DiskColor) Token() byte {
	if c == DiskLight {
		return lightToken
	}
	return darkToken
}

func ParseDiskColor(token string) (DiskColor, error) {
	if len(token) == 1 {
		switch token[0] {
		case lightToken:
			return DiskLight, nil
		case darkToken:
			return DiskDark, nil
		}
	}
	return DiskLight, fmt.Errorf("%w: %q", ErrInvalidColor, token)
}
