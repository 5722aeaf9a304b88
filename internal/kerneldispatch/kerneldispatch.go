// Package kerneldispatch is the optional accelerator adaptor for the range
// pipeline. It exposes the same three named operations as the CPU path
// (pix2cam, cam2world, map_range) as data-parallel kernels dispatched onto a
// selected device, so a future accelerator backend can be swapped in behind
// gpucontext.DeviceProvider without changing rangecalc's contract.
package kerneldispatch

import (
	"math"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/clarity-go/rangecam/internal/buffer"
	"github.com/clarity-go/rangecam/internal/camera"
	"github.com/clarity-go/rangecam/internal/rangeerr"
	"github.com/clarity-go/rangecam/internal/rowpool"
	"github.com/clarity-go/rangecam/internal/terrain"
)

// DeviceHandle provides accelerator device access from the host application,
// mirroring the gg renderer's integration point: the dispatcher receives a
// device rather than creating one.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is the zero value of DeviceHandle. Passing it to New
// registers an accelerator device with no bound handle, and kernels run on
// that device fail with a BuildError; Dispatcher only ever tests a Device's
// Handle for nilness, never calls through it.
var NullDeviceHandle DeviceHandle

// The Kernel* constants name the three operations every backend must expose.
const (
	KernelPix2Cam   = "pix2cam"
	KernelCam2World = "cam2world"
	KernelMapRange  = "map_range"
)

// Device describes one device a Dispatcher can target.
type Device struct {
	Index   int
	Name    string
	Vendor  string
	Handle  DeviceHandle
	cpuOnly bool
}

// BuildError reports a kernel build/dispatch failure on a specific device,
// carrying the vendor code and build log the way the accelerator backend
// would surface a compiler failure.
type BuildError struct {
	Kernel string
	Device string
	Vendor int
	Log    string
}

func (e *BuildError) Error() string {
	return "kerneldispatch: " + e.Kernel + " on " + e.Device + ": build failed"
}

// Dispatcher runs the three range-pipeline kernels on a selected Device. The
// zero value runs every kernel on a software CPU device (row-tiled across
// goroutines) and is ready to use without calling UseDevice.
type Dispatcher struct {
	devices   []Device
	deviceIdx int
}

// New constructs a Dispatcher with the built-in software device registered
// at index 0, plus any accelerator devices discovered behind handles.
func New(accelerators ...DeviceHandle) *Dispatcher {
	d := &Dispatcher{
		devices: []Device{{Index: 0, Name: "cpu-software", Vendor: "goroutine-pool", cpuOnly: true}},
	}
	for i, h := range accelerators {
		d.devices = append(d.devices, Device{Index: i + 1, Name: "accelerator", Vendor: "gpucontext", Handle: h})
	}
	return d
}

var (
	defaultOnce sync.Once
	defaultDisp *Dispatcher
)

// DefaultDevice lazily constructs and caches a Dispatcher bound to the
// software device, discovered once per process. Callers that don't have
// their own accelerator handle can share this instance instead of building
// their own.
func DefaultDevice() *Dispatcher {
	defaultOnce.Do(func() {
		defaultDisp = New()
	})
	return defaultDisp
}

// Devices returns the devices this Dispatcher can target.
func (d *Dispatcher) Devices() []Device { return d.devices }

// UseDevice selects the device kernels will run on for subsequent calls.
func (d *Dispatcher) UseDevice(idx int) error {
	if idx < 0 || idx >= len(d.devices) {
		return rangeerr.InvalidArgf("kerneldispatch.UseDevice", "device index %d out of range [0, %d)", idx, len(d.devices))
	}
	d.deviceIdx = idx
	return nil
}

func (d *Dispatcher) current() Device {
	if len(d.devices) == 0 {
		return Device{Index: 0, Name: "cpu-software", Vendor: "goroutine-pool", cpuOnly: true}
	}
	return d.devices[d.deviceIdx]
}

// runKernel dispatches fn across the device's execution model. The software
// device row-tiles across goroutines; an accelerator device (once a real
// backend is wired behind Handle) would instead enqueue onto its queue and
// block until the kernel completes — the blocking-per-stage contract is
// identical either way, so rangecalc callers never need to know which ran.
func (d *Dispatcher) runKernel(kernel string, rows int, fn func(rowStart, rowEnd int)) error {
	dev := d.current()
	if !dev.cpuOnly && dev.Handle == nil {
		return &BuildError{Kernel: kernel, Device: dev.Name, Vendor: -1, Log: "no device handle bound"}
	}
	rowpool.Run(rows, rowpool.Workers(rows), fn)
	return nil
}

// Pix2Cam dispatches the pix2cam kernel: fills out[r,c,0:3] with the unit
// camera-frame ray direction for every pixel.
func (d *Dispatcher) Pix2Cam(cam *camera.Camera, out buffer.Buffer) error {
	rows, cols := cam.FocalPlaneDimensions()
	if rows2, cols2 := out.Size(); rows2 != rows || cols2 != cols || (out.Depth() != 3 && out.Depth() != 4) {
		return rangeerr.ShapeMismatch("kerneldispatch.Pix2Cam", rows, cols, 4, rows2, cols2, out.Depth())
	}

	f := cam.FocalLength()
	hasPad := out.Depth() == 4
	halfRows, halfCols := float64(rows)/2, float64(cols)/2

	return d.runKernel(KernelPix2Cam, rows, func(rowStart, rowEnd int) {
		for r := rowStart; r < rowEnd; r++ {
			dr := float64(r) - halfRows
			for c := 0; c < cols; c++ {
				dc := float64(c) - halfCols
				vx, vy, vz := f, dc, -dr
				length := vx*vx + vy*vy + vz*vz
				if length > 0 {
					length = math.Sqrt(length)
					vx, vy, vz = vx/length, vy/length, vz/length
				} else {
					vx, vy, vz = 1, 0, 0
				}
				_ = out.Set(r, c, 0, float32(vx))
				_ = out.Set(r, c, 1, float32(vy))
				_ = out.Set(r, c, 2, float32(vz))
				if hasPad {
					_ = out.Set(r, c, 3, 0)
				}
			}
		}
	})
}

// Cam2World dispatches the cam2world kernel: rotates camCoords into world
// space using cam's current pose.
func (d *Dispatcher) Cam2World(cam *camera.Camera, camCoords, out buffer.Buffer) error {
	rows, cols := cam.FocalPlaneDimensions()
	if rows2, cols2 := out.Size(); rows2 != rows || cols2 != cols || (out.Depth() != 3 && out.Depth() != 4) {
		return rangeerr.ShapeMismatch("kerneldispatch.Cam2World", rows, cols, 4, rows2, cols2, out.Depth())
	}

	rot, err := buffer.New(3, 4, 1)
	if err != nil {
		return err
	}
	if err := cam.RotationMatrix(rot); err != nil {
		return err
	}
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, _ := rot.At(i, j, 0)
			r[i][j] = float64(v)
		}
	}
	hasPad := out.Depth() == 4

	return d.runKernel(KernelCam2World, rows, func(rowStart, rowEnd int) {
		for row := rowStart; row < rowEnd; row++ {
			for col := 0; col < cols; col++ {
				vx, _ := camCoords.At(row, col, 0)
				vy, _ := camCoords.At(row, col, 1)
				vz, _ := camCoords.At(row, col, 2)
				wx := r[0][0]*float64(vx) + r[0][1]*float64(vy) + r[0][2]*float64(vz)
				wy := r[1][0]*float64(vx) + r[1][1]*float64(vy) + r[1][2]*float64(vz)
				wz := r[2][0]*float64(vx) + r[2][1]*float64(vy) + r[2][2]*float64(vz)
				_ = out.Set(row, col, 0, float32(wx))
				_ = out.Set(row, col, 1, float32(wy))
				_ = out.Set(row, col, 2, float32(wz))
				if hasPad {
					_ = out.Set(row, col, 3, 0)
				}
			}
		}
	})
}

// MapRange dispatches the map_range kernel: ray-marches worldCoords against
// t and writes first-hit distances (metres) into out.
func (d *Dispatcher) MapRange(cam *camera.Camera, t terrain.Terrain, worldCoords, out buffer.Buffer, maxErrorRatio, maxRangeOverride float64) error {
	rows, cols := cam.FocalPlaneDimensions()
	if rows2, cols2 := out.Size(); rows2 != rows || cols2 != cols || out.Depth() != 1 {
		return rangeerr.ShapeMismatch("kerneldispatch.MapRange", rows, cols, 1, rows2, cols2, out.Depth())
	}

	scale := t.Scale()
	if maxErrorRatio <= 0 {
		maxErrorRatio = 0.2
	}
	maxError := scale * maxErrorRatio
	maxRange := maxRangeOverride
	if maxRange <= 0 {
		tRows, _ := t.Size()
		maxRange = scale * float64(tRows) * math.Sqrt(3)
	}
	tRows, tCols := t.Size()
	step := maxError / scale
	iterations := int(math.Ceil(maxRange / maxError))

	pos := cam.Position()
	originX, originY, originZ := pos.X/scale, pos.Y/scale, pos.Z/scale

	return d.runKernel(KernelMapRange, rows, func(rowStart, rowEnd int) {
		for row := rowStart; row < rowEnd; row++ {
			for col := 0; col < cols; col++ {
				dx, _ := worldCoords.At(row, col, 0)
				dy, _ := worldCoords.At(row, col, 1)
				dz, _ := worldCoords.At(row, col, 2)

				px, py, pz := originX, originY, originZ
				for i := 0; i < iterations; i++ {
					px += step * float64(dx)
					py += step * float64(dy)
					pz += step * float64(dz)

					ri := clampInt(int(math.Floor(px)), 0, tRows-1)
					ci := clampInt(int(math.Floor(py)), 0, tCols-1)
					h, _ := t.Data().At(ri, ci, 0)
					if pz <= float64(h) {
						break
					}
				}

				diffX, diffY, diffZ := px-originX, py-originY, pz-originZ
				rangePixels := math.Sqrt(diffX*diffX + diffY*diffY + diffZ*diffZ)
				rng := scale * rangePixels
				if rng < 0 {
					rng = 0
				}
				if rng > maxRange {
					rng = maxRange
				}
				_ = out.Set(row, col, 0, float32(rng))
			}
		}
	})
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
