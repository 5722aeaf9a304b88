package kerneldispatch

import (
	"math"
	"testing"

	"github.com/clarity-go/rangecam/internal/buffer"
	"github.com/clarity-go/rangecam/internal/camera"
	"github.com/clarity-go/rangecam/internal/terrain"
)

func TestNewRegistersSoftwareDeviceAtZero(t *testing.T) {
	d := New()
	devs := d.Devices()
	if len(devs) != 1 || devs[0].Index != 0 || !devs[0].cpuOnly {
		t.Fatalf("expected single cpu-software device at index 0, got %+v", devs)
	}
}

func TestUseDeviceRejectsOutOfRange(t *testing.T) {
	d := New()
	if err := d.UseDevice(5); err == nil {
		t.Fatal("expected error for out-of-range device index")
	}
	if err := d.UseDevice(0); err != nil {
		t.Fatalf("UseDevice(0): %v", err)
	}
}

func TestPix2CamMatchesUnitLength(t *testing.T) {
	cam, err := camera.New(math.Pi/2, 12, 12)
	if err != nil {
		t.Fatalf("camera.New: %v", err)
	}
	out, err := buffer.New(12, 12, 4)
	if err != nil {
		t.Fatalf("buffer.New: %v", err)
	}
	d := New()
	if err := d.Pix2Cam(cam, out); err != nil {
		t.Fatalf("Pix2Cam: %v", err)
	}
	rows, cols := out.Size()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, _ := out.At(r, c, 0)
			y, _ := out.At(r, c, 1)
			z, _ := out.At(r, c, 2)
			l := math.Sqrt(float64(x)*float64(x) + float64(y)*float64(y) + float64(z)*float64(z))
			if math.Abs(l-1) > 1e-4 {
				t.Fatalf("pixel (%d,%d) length %v, want 1", r, c, l)
			}
		}
	}
}

func TestFullPipelineViaDispatcher(t *testing.T) {
	tr, err := terrain.New(64, 64, 10)
	if err != nil {
		t.Fatalf("terrain.New: %v", err)
	}
	cam, err := camera.New(math.Pi/2, 16, 16)
	if err != nil {
		t.Fatalf("camera.New: %v", err)
	}
	cam.SetPosition(camera.Position{X: 320, Y: 320, Z: 500})
	cam.SetPitch(math.Pi / 2)

	d := New()
	camCoords, _ := buffer.New(16, 16, 4)
	if err := d.Pix2Cam(cam, camCoords); err != nil {
		t.Fatalf("Pix2Cam: %v", err)
	}
	world, _ := buffer.New(16, 16, 4)
	if err := d.Cam2World(cam, camCoords, world); err != nil {
		t.Fatalf("Cam2World: %v", err)
	}
	out, _ := buffer.New(16, 16, 1)
	if err := d.MapRange(cam, tr, world, out, 0, 0); err != nil {
		t.Fatalf("MapRange: %v", err)
	}
	for r := 0; r < 16; r++ {
		for c := 0; c < 16; c++ {
			v, _ := out.At(r, c, 0)
			if v < 0 {
				t.Fatalf("range(%d,%d) = %v, want >= 0", r, c, v)
			}
		}
	}
}

func TestRunKernelFailsOnUnboundAcceleratorDevice(t *testing.T) {
	d := New(nil)
	if err := d.UseDevice(1); err != nil {
		t.Fatalf("UseDevice(1): %v", err)
	}
	cam, _ := camera.New(math.Pi/2, 4, 4)
	out, _ := buffer.New(4, 4, 4)
	err := d.Pix2Cam(cam, out)
	if err == nil {
		t.Fatal("expected BuildError for unbound accelerator device")
	}
	if _, ok := err.(*BuildError); !ok {
		t.Fatalf("expected *BuildError, got %T", err)
	}
}
