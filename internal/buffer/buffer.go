// Package buffer implements the row-major 2-D grid of float32 samples that
// backs terrain heightfields and the camera/world ray buffers of the range
// pipeline.
package buffer

import (
	"github.com/clarity-go/rangecam/internal/rangeerr"
)

// storage is the reference-counted backing array shared by shallow copies of
// a Buffer. It is never resized after creation.
type storage struct {
	data []float32
}

// Buffer is a 2-D area of memory in row-major order, indexed by
// (row, col, channel). Copying a Buffer by value shares the underlying
// storage — the handle is cheap to copy, the array is not duplicated.
type Buffer struct {
	rows, cols int
	depth      uint8
	store      *storage
}

// New allocates a zero-initialised Buffer with the given dimensions.
// depth defaults to 1 when 0 is passed.
func New(rows, cols int, depth uint8) (Buffer, error) {
	if depth == 0 {
		depth = 1
	}
	if rows < 1 || cols < 1 {
		return Buffer{}, rangeerr.InvalidArgf("buffer.New", "rows and cols must be >= 1, got (%d, %d)", rows, cols)
	}
	n := rows * cols * int(depth)
	return Buffer{
		rows:  rows,
		cols:  cols,
		depth: depth,
		store: &storage{data: make([]float32, n)},
	}, nil
}

// NewDepth1 is a convenience constructor for the common depth=1 case.
func NewDepth1(rows, cols int) (Buffer, error) {
	return New(rows, cols, 1)
}

// offset computes the flat index for (row, col, ch) using the formula
// mandated by the spec: row*cols*depth + col*depth + ch. A naive
// row*cols + col*depth + ch variant is wrong for depth > 1 and must never be
// reintroduced here.
func (b Buffer) offset(row, col int, ch uint8) int {
	return row*b.cols*int(b.depth) + col*int(b.depth) + int(ch)
}

func (b Buffer) checkBounds(op string, row, col int, ch uint8) *rangeerr.Error {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols || ch >= b.depth {
		return rangeerr.OutOfRangef(op, "(%d, %d, %d) out of range for buffer of size (%d, %d, %d)",
			row, col, ch, b.rows, b.cols, b.depth)
	}
	return nil
}

// At reads the value at (row, col, ch).
func (b Buffer) At(row, col int, ch uint8) (float32, error) {
	if err := b.checkBounds("buffer.At", row, col, ch); err != nil {
		return 0, err
	}
	return b.store.data[b.offset(row, col, ch)], nil
}

// Set writes the value at (row, col, ch).
func (b Buffer) Set(row, col int, ch uint8, v float32) error {
	if err := b.checkBounds("buffer.Set", row, col, ch); err != nil {
		return err
	}
	b.store.data[b.offset(row, col, ch)] = v
	return nil
}

// Size returns the (rows, cols) of the buffer.
func (b Buffer) Size() (int, int) { return b.rows, b.cols }

// Depth returns the channel depth of the buffer.
func (b Buffer) Depth() uint8 { return b.depth }

// SameShape reports whether two buffers have identical (rows, cols, depth).
func (b Buffer) SameShape(other Buffer) bool {
	return b.rows == other.rows && b.cols == other.cols && b.depth == other.depth
}

// Data returns the shared backing slice, for bulk copy or device upload.
// Mutating the returned slice mutates every shallow copy of this Buffer.
func (b Buffer) Data() []float32 { return b.store.data }

// Fill sets every sample in the buffer to v.
func (b Buffer) Fill(v float32) {
	for i := range b.store.data {
		b.store.data[i] = v
	}
}
