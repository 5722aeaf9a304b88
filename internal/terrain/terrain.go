// Package terrain holds the heightfield backing the range pipeline's
// ray-march: a depth-1 Buffer of elevations in metres plus a metric scale.
package terrain

import (
	"github.com/clarity-go/rangecam/internal/buffer"
	"github.com/clarity-go/rangecam/internal/rangeerr"
)

// Terrain is a Buffer of depth 1 plus a metres-per-cell scale. Copy
// semantics are shallow: copies share the underlying Buffer storage.
type Terrain struct {
	buf   buffer.Buffer
	scale float64
}

// New allocates a zeroed depth-1 Buffer of the given size.
func New(rows, cols int, scaleMPerCell float64) (Terrain, error) {
	if scaleMPerCell <= 0 {
		return Terrain{}, rangeerr.InvalidArgf("terrain.New", "scale_m_per_cell must be > 0, got %v", scaleMPerCell)
	}
	buf, err := buffer.New(rows, cols, 1)
	if err != nil {
		return Terrain{}, err
	}
	return Terrain{buf: buf, scale: scaleMPerCell}, nil
}

// NewWithBuffer adopts a caller-provided depth-1 Buffer, allowing the
// pipeline or generator to back a Terrain with device-visible storage.
func NewWithBuffer(buf buffer.Buffer, scaleMPerCell float64) (Terrain, error) {
	if scaleMPerCell <= 0 {
		return Terrain{}, rangeerr.InvalidArgf("terrain.NewWithBuffer", "scale_m_per_cell must be > 0, got %v", scaleMPerCell)
	}
	if buf.Depth() != 1 {
		return Terrain{}, rangeerr.InvalidArgf("terrain.NewWithBuffer", "buffer must have depth 1, got %d", buf.Depth())
	}
	return Terrain{buf: buf, scale: scaleMPerCell}, nil
}

// Data returns the backing Buffer.
func (t Terrain) Data() buffer.Buffer { return t.buf }

// Scale returns the metres-per-cell scale.
func (t Terrain) Scale() float64 { return t.scale }

// Size returns the (rows, cols) of the heightfield grid.
func (t Terrain) Size() (int, int) { return t.buf.Size() }

// SampleNearest returns the elevation at the grid cell nearest (row, col),
// clamping to the grid bounds — the heightfield between integer samples is
// undefined and nearest-neighbour sampling is the contract this pipeline
// relies on.
func (t Terrain) SampleNearest(row, col int) (float32, error) {
	rows, cols := t.buf.Size()
	if row < 0 {
		row = 0
	} else if row >= rows {
		row = rows - 1
	}
	if col < 0 {
		col = 0
	} else if col >= cols {
		col = cols - 1
	}
	return t.buf.At(row, col, 0)
}
