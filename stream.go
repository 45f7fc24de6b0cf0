package heatmap

import (
	"fmt"
	"slices"
)

// Direction selects the edge AddRow inserts at.
type Direction int

const (
	// DirectionStart prepends the row; overflow is evicted from the back.
	DirectionStart Direction = iota
	// DirectionEnd appends the row; overflow is evicted from the front.
	DirectionEnd
)

// Unbounded disables the row cap in AddRow.
const Unbounded = 0

// String returns "start" or "end".
func (d Direction) String() string {
	switch d {
	case DirectionStart:
		return "start"
	case DirectionEnd:
		return "end"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "start" or "end".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "start":
		return DirectionStart, nil
	case "end":
		return DirectionEnd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// StreamBuffer owns the raw row-major sample grid. len(samples) equals
// width*height whenever control is outside a method.
//
// StreamBuffer is not safe for concurrent use.
type StreamBuffer struct {
	samples []float64
	width   int
	height  int
}

// Width returns the number of columns.
func (s *StreamBuffer) Width() int { return s.width }

// Height returns the number of rows.
func (s *StreamBuffer) Height() int { return s.height }

// Len returns the number of samples.
func (s *StreamBuffer) Len() int { return len(s.samples) }

// Empty reports whether the buffer holds no samples.
func (s *StreamBuffer) Empty() bool { return len(s.samples) == 0 }

// Data returns a copy of the raw samples, never the encoded form.
func (s *StreamBuffer) Data() []float64 {
	return slices.Clone(s.samples)
}

// At returns the sample at column x, row y.
func (s *StreamBuffer) At(x, y int) (float64, bool) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0, false
	}
	return s.samples[x+y*s.width], true
}

// samplesView exposes the backing slice to package code that only reads.
func (s *StreamBuffer) samplesView() []float64 { return s.samples }

// Reset drops all samples and dimensions.
func (s *StreamBuffer) Reset() {
	s.samples = s.samples[:0]
	s.width, s.height = 0, 0
}

// SetGrid replaces the grid wholesale with a copy of samples. A length that
// does not match width*height is rejected, never truncated or padded.
func (s *StreamBuffer) SetGrid(samples []float64, width, height int) error {
	if !gridSizeOK(len(samples), width, height) {
		return fmt.Errorf("%w: %d samples for %dx%d", ErrGridSize, len(samples), width, height)
	}
	s.samples = append(s.samples[:0], samples...)
	s.width, s.height = width, height
	return nil
}

// AddRow inserts one row at the edge selected by dir.
//
// On an empty buffer the row defines the width and the height becomes 1.
// Afterwards len(row) must equal Width. When maxRows is positive and the
// new height would exceed it, height+1-maxRows rows are evicted from the
// opposite edge so the height ends at maxRows. Unbounded (0) never evicts.
func (s *StreamBuffer) AddRow(row []float64, maxRows int, dir Direction) error {
	if maxRows < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxRows, maxRows)
	}
	if dir != DirectionStart && dir != DirectionEnd {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}
	if len(row) == 0 {
		return ErrEmptyRow
	}
	if len(s.samples) == 0 {
		s.samples = append(s.samples[:0], row...)
		s.width, s.height = len(row), 1
		return nil
	}
	if len(row) != s.width {
		return fmt.Errorf("%w: got %d, width %d", ErrRowLength, len(row), s.width)
	}

	evict := evictCount(s.height, maxRows)
	keep := (s.height - evict) * s.width

	switch dir {
	case DirectionEnd:
		// Drop the oldest rows from the front, then append.
		n := copy(s.samples, s.samples[evict*s.width:])
		s.samples = append(s.samples[:n], row...)
	case DirectionStart:
		// Keep the first rows, shift them down by one row, write the new
		// row in front.
		s.samples = slices.Grow(s.samples[:keep], s.width)[:keep+s.width]
		copy(s.samples[s.width:], s.samples[:keep])
		copy(s.samples, row)
	}
	s.height = s.height - evict + 1
	return nil
}

// evictCount returns how many rows must go so that height+1 fits in
// maxRows. It is never negative.
func evictCount(height, maxRows int) int {
	if maxRows == Unbounded {
		return 0
	}
	return max(height+1-maxRows, 0)
}
