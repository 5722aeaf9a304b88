// Package camera models a pinhole camera with known pose: intrinsic field
// of view and focal-plane size, extrinsic position and yaw/pitch, and the
// world-from-camera rotation matrix derived from them.
package camera

import (
	"math"

	"github.com/clarity-go/rangecam/internal/buffer"
	"github.com/clarity-go/rangecam/internal/mathutil"
	"github.com/clarity-go/rangecam/internal/rangeerr"
)

// Position is a world-space point in metres.
type Position struct {
	X, Y, Z float64
}

// Camera models a pinhole camera. Focal-plane dimensions are fixed at
// construction; every other parameter is freely mutable.
type Camera struct {
	fovRad     float64
	rows, cols int
	position   Position
	yawRad     float64
	pitchRad   float64
}

// New constructs a Camera with the given horizontal field of view (radians,
// must satisfy 0 < fov < pi) and focal-plane size in pixels.
func New(fovRad float64, rows, cols int) (*Camera, error) {
	if !(fovRad > 0 && fovRad < math.Pi) {
		return nil, rangeerr.InvalidArgf("camera.New", "fov_rad must be in (0, pi), got %v", fovRad)
	}
	if rows < 1 || cols < 1 {
		return nil, rangeerr.InvalidArgf("camera.New", "rows and cols must be >= 1, got (%d, %d)", rows, cols)
	}
	return &Camera{fovRad: fovRad, rows: rows, cols: cols}, nil
}

// FOV returns the field of view in radians.
func (c *Camera) FOV() float64 { return c.fovRad }

// SetFOV updates the field of view. Must be in (0, pi).
func (c *Camera) SetFOV(fovRad float64) error {
	if !(fovRad > 0 && fovRad < math.Pi) {
		return rangeerr.InvalidArgf("camera.SetFOV", "fov_rad must be in (0, pi), got %v", fovRad)
	}
	c.fovRad = fovRad
	return nil
}

// FocalPlaneDimensions returns the immutable (rows, cols) of the sensor.
func (c *Camera) FocalPlaneDimensions() (int, int) { return c.rows, c.cols }

// FocalLength returns the focal length in pixels, derived from cols and fov.
func (c *Camera) FocalLength() float64 {
	return (float64(c.cols) / 2) / math.Tan(c.fovRad/2)
}

// Position returns the camera's world position.
func (c *Camera) Position() Position { return c.position }

// SetPosition updates the camera's world position.
func (c *Camera) SetPosition(p Position) { c.position = p }

// Yaw returns the current yaw in radians, about world +Z.
func (c *Camera) Yaw() float64 { return c.yawRad }

// SetYaw updates the yaw in radians.
func (c *Camera) SetYaw(yawRad float64) { c.yawRad = yawRad }

// Pitch returns the current pitch in radians, about the +Y axis (see
// RotationMatrix).
func (c *Camera) Pitch() float64 { return c.pitchRad }

// SetPitch updates the pitch in radians.
func (c *Camera) SetPitch(pitchRad float64) { c.pitchRad = pitchRad }

// RotationMatrix writes the 3x4 world-from-camera rotation matrix (the 4th
// column zero-padded for SIMD/device alignment) into out, which must have
// shape (3, 4, 1). Built as R = RotY(pitch) * RotZ(yaw); roll is reserved
// but always zero. Applied to a camera-frame vector, the yaw rotation about
// +Z acts first and the pitch rotation about +Y second.
//
//	R = | cosG·cosA   -cosG·sinA      sinG |
//	    |    sinA         cosA          0  |
//	    | -sinG·cosA    sinG·sinA     cosG |
func (c *Camera) RotationMatrix(out buffer.Buffer) error {
	rows, cols := out.Size()
	if rows != 3 || cols != 4 || out.Depth() != 1 {
		return rangeerr.ShapeMismatch("camera.RotationMatrix", 3, 4, 1, rows, cols, out.Depth())
	}

	rot := mathutil.Mat3Mul(mathutil.RotY(c.pitchRad), mathutil.RotZ(c.yawRad))
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			if err := out.Set(r, col, 0, float32(rot[r*3+col])); err != nil {
				return err
			}
		}
		if err := out.Set(r, 3, 0, 0); err != nil {
			return err
		}
	}
	return nil
}
