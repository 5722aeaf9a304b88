// Package terraingen synthesises plausible terrain heightfields using the
// diamond-square fractal algorithm, so the range pipeline has input even
// without real elevation data.
package terraingen

import (
	"github.com/clarity-go/rangecam/internal/buffer"
	"github.com/clarity-go/rangecam/internal/rangeerr"
	"github.com/clarity-go/rangecam/internal/terrain"
)

// MaxHeightM is the elevation (metres) the four corners are initialised to
// half of. The generator does not clamp subsequent cells to [0, MaxHeightM]
// — values may drift outside this range by design; consumers rescale for
// display.
const MaxHeightM = 100.0

// Options configures a Generate call. Seed, when non-nil, makes the run
// reproducible; otherwise the offsets are drawn from a non-deterministic
// source.
type Options struct {
	Roughness float64
	Seed      *int64
}

func (o Options) rng() *RNG {
	if o.Seed != nil {
		return NewRNG(*o.Seed)
	}
	return NewRandomRNG()
}

// Generate synthesises a rows x cols terrain at the given metres-per-cell
// scale and roughness. rows must equal cols and be 2^n+1 for some n >= 1.
func Generate(rows, cols int, scale float64, opts Options) (terrain.Terrain, error) {
	if err := validateSize(rows, cols); err != nil {
		return terrain.Terrain{}, err
	}
	if !(opts.Roughness > 0 && opts.Roughness <= 1) {
		return terrain.Terrain{}, rangeerr.InvalidArgf("terraingen.Generate", "roughness must be in (0, 1], got %v", opts.Roughness)
	}
	buf, err := buffer.New(rows, cols, 1)
	if err != nil {
		return terrain.Terrain{}, err
	}
	return GenerateInto(buf, scale, opts)
}

// GenerateInto fills a caller-provided buffer in place and wraps it as a
// Terrain — this lets the generator populate device-visible storage
// directly, mirroring the original engine's buffer-adopting overload.
func GenerateInto(buf buffer.Buffer, scale float64, opts Options) (terrain.Terrain, error) {
	rows, cols := buf.Size()
	if err := validateSize(rows, cols); err != nil {
		return terrain.Terrain{}, err
	}
	if buf.Depth() != 1 {
		return terrain.Terrain{}, rangeerr.InvalidArgf("terraingen.GenerateInto", "buffer must have depth 1, got %d", buf.Depth())
	}
	if !(opts.Roughness > 0 && opts.Roughness <= 1) {
		return terrain.Terrain{}, rangeerr.InvalidArgf("terraingen.GenerateInto", "roughness must be in (0, 1], got %v", opts.Roughness)
	}

	corner := float32(MaxHeightM / 2)
	_ = buf.Set(0, 0, 0, corner)
	_ = buf.Set(0, cols-1, 0, corner)
	_ = buf.Set(rows-1, 0, 0, corner)
	_ = buf.Set(rows-1, cols-1, 0, corner)

	gen := opts.rng()

	size := rows - 1
	half := size / 2
	for half >= 1 {
		featureScale := float64(size) * opts.Roughness
		processSquares(buf, rows, cols, size, half, gen, featureScale)
		processDiamonds(buf, rows, cols, size, half, gen, featureScale)
		size = size / 2
		half = size / 2
	}

	return terrain.NewWithBuffer(buf, scale)
}

func validateSize(rows, cols int) error {
	if rows != cols {
		return rangeerr.InvalidArgf("terraingen", "rows must equal cols, got (%d, %d)", rows, cols)
	}
	if !isPowerOfTwoPlusOne(rows) {
		return rangeerr.InvalidArgf("terraingen", "size must be 2^n+1, got %d", rows)
	}
	return nil
}

func isPowerOfTwoPlusOne(n int) bool {
	if n < 3 {
		return false
	}
	m := n - 1
	return m&(m-1) == 0
}

// processSquares performs the square step: for each cell at a square-step
// grid point, average the in-bounds corner neighbours at (r±half, c±half)
// and add a random offset. A neighbour past the grid edge is excluded from
// both the sum and the divisor; every included neighbour increments the
// divisor (a Square_Generator revision in the source only counted two of
// four branches — this must not be reproduced).
func processSquares(buf buffer.Buffer, rows, cols, size, half int, gen *RNG, featureScale float64) {
	for r := half; r < rows; r += size {
		for c := half; c < cols; c += size {
			lowerRowValid := r >= half
			upperRowValid := r+half < rows
			lowerColValid := c >= half
			upperColValid := c+half < cols

			var sum float32
			validCt := 0

			if lowerRowValid && lowerColValid {
				v, _ := buf.At(r-half, c-half, 0)
				sum += v
				validCt++
			}
			if lowerRowValid && upperColValid {
				v, _ := buf.At(r-half, c+half, 0)
				sum += v
				validCt++
			}
			if upperRowValid && lowerColValid {
				v, _ := buf.At(r+half, c-half, 0)
				sum += v
				validCt++
			}
			if upperRowValid && upperColValid {
				v, _ := buf.At(r+half, c+half, 0)
				sum += v
				validCt++
			}

			offset := gen.Uniform(-featureScale, featureScale)
			_ = buf.Set(r, c, 0, sum/float32(validCt)+float32(offset))
		}
	}
}

// processDiamonds performs the diamond step: for each cell at a diamond-step
// grid point, average the in-bounds edge-midpoint neighbours at
// (r±half, c) and (r, c±half) and add a random offset.
func processDiamonds(buf buffer.Buffer, rows, cols, size, half int, gen *RNG, featureScale float64) {
	for r := 0; r < rows; r += half {
		startCol := (r + half) % size
		for c := startCol; c < cols; c += size {
			lowerRowValid := r >= half
			upperRowValid := r+half < rows
			lowerColValid := c >= half
			upperColValid := c+half < cols

			var sum float32
			validCt := 0

			if lowerColValid {
				v, _ := buf.At(r, c-half, 0)
				sum += v
				validCt++
			}
			if upperRowValid {
				v, _ := buf.At(r+half, c, 0)
				sum += v
				validCt++
			}
			if upperColValid {
				v, _ := buf.At(r, c+half, 0)
				sum += v
				validCt++
			}
			if lowerRowValid {
				v, _ := buf.At(r-half, c, 0)
				sum += v
				validCt++
			}

			offset := gen.Uniform(-featureScale, featureScale)
			_ = buf.Set(r, c, 0, sum/float32(validCt)+float32(offset))
		}
	}
}
