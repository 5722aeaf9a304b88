// Package rangecalc implements the three-stage range-mapping pipeline:
// pixel-space ray -> camera-space unit vector, camera-space -> world-space
// rotation, and a ray-march against a terrain heightfield to the first
// surface hit.
package rangecalc

import (
	"math"
	"sync"

	"github.com/clarity-go/rangecam/internal/buffer"
	"github.com/clarity-go/rangecam/internal/camera"
	"github.com/clarity-go/rangecam/internal/mathutil"
	"github.com/clarity-go/rangecam/internal/rangeerr"
	"github.com/clarity-go/rangecam/internal/rowpool"
	"github.com/clarity-go/rangecam/internal/terrain"
)

// errorBox collects the first error reported by any row-tile goroutine.
type errorBox struct {
	mu  sync.Mutex
	err error
}

func (b *errorBox) set(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}

// Options configures the ray-march tolerance and cutoff. A zero Options
// resolves to the package defaults.
type Options struct {
	// MaxErrorRatio sets max_error = scale * ratio. Smaller means more
	// accurate and more iterations. Default 0.2 (i.e. scale/5).
	MaxErrorRatio float64
	// MaxRange overrides the ray-march cutoff. Default scale*rows*sqrt(3).
	MaxRange float64
}

const defaultMaxErrorRatio = 0.2

func (o Options) resolve(t terrain.Terrain) (maxError, maxRange float64) {
	ratio := o.MaxErrorRatio
	if ratio <= 0 {
		ratio = defaultMaxErrorRatio
	}
	maxError = t.Scale() * ratio

	maxRange = o.MaxRange
	if maxRange <= 0 {
		rows, _ := t.Size()
		maxRange = t.Scale() * float64(rows) * math.Sqrt(3)
	}
	return maxError, maxRange
}

// Calculator is the CPU implementation of the range pipeline. It owns and
// reuses its intermediate camera/world-coords buffers across calls when the
// requested shape matches; it is not safe for concurrent use on the same
// instance, and distinct instances are safe only if they do not share a
// mutable buffer.
type Calculator struct {
	Options

	camCoords   buffer.Buffer
	worldCoords buffer.Buffer
}

// New constructs a Calculator with the given options.
func New(opts Options) *Calculator {
	return &Calculator{Options: opts}
}

// normalizeDepth reports whether depth is one of the 3-or-4-channel layouts
// the spec allows for ray buffers.
func normalizeDepth(depth uint8) bool {
	return depth == 3 || depth == 4
}

func checkRayBufferShape(op string, wantRows, wantCols int, b buffer.Buffer) error {
	rows, cols := b.Size()
	if rows != wantRows || cols != wantCols || !normalizeDepth(b.Depth()) {
		return rangeerr.InvalidArgf(op,
			"expected buffer of size (%d, %d, 3-or-4) but got (%d, %d, %d)",
			wantRows, wantCols, rows, cols, b.Depth())
	}
	return nil
}

func checkRangeBufferShape(op string, wantRows, wantCols int, b buffer.Buffer) error {
	rows, cols := b.Size()
	if rows != wantRows || cols != wantCols || b.Depth() != 1 {
		return rangeerr.ShapeMismatch(op, wantRows, wantCols, 1, rows, cols, b.Depth())
	}
	return nil
}

// ConvertPixelToCameraCoords fills out[r,c,0:3] with the unit camera-frame
// ray direction for pixel (r,c). out must have shape (cam.rows, cam.cols,
// 3-or-4); channel 3, if present, is set to 0.
func (c *Calculator) ConvertPixelToCameraCoords(cam *camera.Camera, out buffer.Buffer) error {
	rows, cols := cam.FocalPlaneDimensions()
	if err := checkRayBufferShape("rangecalc.ConvertPixelToCameraCoords", rows, cols, out); err != nil {
		return err
	}

	f := cam.FocalLength()
	hasPad := out.Depth() == 4
	halfRows, halfCols := float64(rows)/2, float64(cols)/2

	var firstErr errorBox
	rowpool.Run(rows, rowpool.Workers(rows), func(rowStart, rowEnd int) {
		for r := rowStart; r < rowEnd; r++ {
			dr := float64(r) - halfRows
			for c := 0; c < cols; c++ {
				dc := float64(c) - halfCols

				// v = (f, dc, -dr): X forward, Y right in image, Z up in image.
				v := mathutil.Vec3{f, dc, -dr}
				u := v.Normalize()
				if u == (mathutil.Vec3{}) {
					u = mathutil.Vec3{1, 0, 0}
				}

				if err := out.Set(r, c, 0, float32(u[0])); err != nil {
					firstErr.set(err)
					return
				}
				if err := out.Set(r, c, 1, float32(u[1])); err != nil {
					firstErr.set(err)
					return
				}
				if err := out.Set(r, c, 2, float32(u[2])); err != nil {
					firstErr.set(err)
					return
				}
				if hasPad {
					if err := out.Set(r, c, 3, 0); err != nil {
						firstErr.set(err)
						return
					}
				}
			}
		}
	})
	return firstErr.err
}

// ConvertCameraToWorldCoords rotates each per-pixel camera-frame ray into
// world space using the camera's current pose. camCoords and out must both
// have shape (cam.rows, cam.cols, 3-or-4).
func (c *Calculator) ConvertCameraToWorldCoords(cam *camera.Camera, camCoords, out buffer.Buffer) error {
	rows, cols := cam.FocalPlaneDimensions()
	if err := checkRayBufferShape("rangecalc.ConvertCameraToWorldCoords", rows, cols, camCoords); err != nil {
		return err
	}
	if err := checkRayBufferShape("rangecalc.ConvertCameraToWorldCoords", rows, cols, out); err != nil {
		return err
	}

	rot, err := buffer.New(3, 4, 1)
	if err != nil {
		return err
	}
	if err := cam.RotationMatrix(rot); err != nil {
		return err
	}

	var r mathutil.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, _ := rot.At(i, j, 0)
			r[i*3+j] = float64(v)
		}
	}

	hasPad := out.Depth() == 4

	var firstErr errorBox
	rowpool.Run(rows, rowpool.Workers(rows), func(rowStart, rowEnd int) {
		for row := rowStart; row < rowEnd; row++ {
			for col := 0; col < cols; col++ {
				vx, _ := camCoords.At(row, col, 0)
				vy, _ := camCoords.At(row, col, 1)
				vz, _ := camCoords.At(row, col, 2)

				w := r.MulVec3(mathutil.Vec3{float64(vx), float64(vy), float64(vz)})

				if err := out.Set(row, col, 0, float32(w[0])); err != nil {
					firstErr.set(err)
					return
				}
				if err := out.Set(row, col, 1, float32(w[1])); err != nil {
					firstErr.set(err)
					return
				}
				if err := out.Set(row, col, 2, float32(w[2])); err != nil {
					firstErr.set(err)
					return
				}
				if hasPad {
					if err := out.Set(row, col, 3, 0); err != nil {
						firstErr.set(err)
						return
					}
				}
			}
		}
	})
	return firstErr.err
}

// ComputeRange ray-marches each pixel's world-frame ray against the terrain
// and writes the first-hit distance (metres) into out, which must have
// shape (cam.rows, cam.cols, 1).
func (c *Calculator) ComputeRange(cam *camera.Camera, t terrain.Terrain, worldCoords, out buffer.Buffer) error {
	rows, cols := cam.FocalPlaneDimensions()
	if err := checkRayBufferShape("rangecalc.ComputeRange", rows, cols, worldCoords); err != nil {
		return err
	}
	if err := checkRangeBufferShape("rangecalc.ComputeRange", rows, cols, out); err != nil {
		return err
	}

	maxError, maxRange := c.Options.resolve(t)
	scale := t.Scale()
	tRows, tCols := t.Size()
	step := maxError / scale
	iterations := int(math.Ceil(maxRange / maxError))

	pos := cam.Position()
	originX, originY, originZ := pos.X/scale, pos.Y/scale, pos.Z/scale

	var firstErr errorBox
	rowpool.Run(rows, rowpool.Workers(rows), func(rowStart, rowEnd int) {
		for row := rowStart; row < rowEnd; row++ {
			for col := 0; col < cols; col++ {
				dx, _ := worldCoords.At(row, col, 0)
				dy, _ := worldCoords.At(row, col, 1)
				dz, _ := worldCoords.At(row, col, 2)

				rng, err := marchRay(t, tRows, tCols, originX, originY, originZ, float64(dx), float64(dy), float64(dz), step, iterations, scale, maxRange)
				if err != nil {
					firstErr.set(err)
					return
				}
				if err := out.Set(row, col, 0, float32(rng)); err != nil {
					firstErr.set(err)
					return
				}
			}
		}
	})
	return firstErr.err
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func marchRay(t terrain.Terrain, rows, cols int, ox, oy, oz, dx, dy, dz, step float64, iterations int, scale, maxRange float64) (float64, error) {
	px, py, pz := ox, oy, oz
	for i := 0; i < iterations; i++ {
		px += step * dx
		py += step * dy
		pz += step * dz

		ri := clampInt(int(math.Floor(px)), 0, rows-1)
		ci := clampInt(int(math.Floor(py)), 0, cols-1)

		h, err := t.Data().At(ri, ci, 0)
		if err != nil {
			return 0, err
		}
		if pz <= float64(h) {
			break
		}
	}

	diffX, diffY, diffZ := px-ox, py-oy, pz-oz
	rangePixels := math.Sqrt(diffX*diffX + diffY*diffY + diffZ*diffZ)
	rng := scale * rangePixels
	if rng < 0 {
		rng = 0
	}
	if rng > maxRange {
		rng = maxRange
	}
	return rng, nil
}

// Calculate is a convenience that composes the three stages above, reusing
// this Calculator's internal camera/world-coords buffers across calls when
// their shape matches cam's focal plane size. out must have shape
// (cam.rows, cam.cols, 1). On failure, the first stage's error is returned
// verbatim.
func (c *Calculator) Calculate(cam *camera.Camera, t terrain.Terrain, out buffer.Buffer) error {
	rows, cols := cam.FocalPlaneDimensions()

	if !bufferMatches(c.camCoords, rows, cols, 4) {
		buf, err := buffer.New(rows, cols, 4)
		if err != nil {
			return err
		}
		c.camCoords = buf
	}
	if err := c.ConvertPixelToCameraCoords(cam, c.camCoords); err != nil {
		return err
	}

	if !bufferMatches(c.worldCoords, rows, cols, 4) {
		buf, err := buffer.New(rows, cols, 4)
		if err != nil {
			return err
		}
		c.worldCoords = buf
	}
	if err := c.ConvertCameraToWorldCoords(cam, c.camCoords, c.worldCoords); err != nil {
		return err
	}

	return c.ComputeRange(cam, t, c.worldCoords, out)
}

func bufferMatches(b buffer.Buffer, rows, cols int, depth uint8) bool {
	br, bc := b.Size()
	return br == rows && bc == cols && b.Depth() == depth
}
