package terrain

import (
	"testing"

	"github.com/clarity-go/rangecam/internal/buffer"
)

func TestNewAndDataRoundTrip(t *testing.T) {
	tr, err := New(4, 4, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tr.Data().Set(1, 2, 0, 5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, _ := tr.Data().At(1, 2, 0)
	if v != 5 {
		t.Fatalf("got %v, want 5", v)
	}
	if tr.Scale() != 10 {
		t.Fatalf("Scale() = %v, want 10", tr.Scale())
	}
}

func TestShallowCopyShares(t *testing.T) {
	a, _ := New(3, 3, 1)
	b := a
	_ = b.Data().Set(0, 0, 0, 9)
	v, _ := a.Data().At(0, 0, 0)
	if v != 9 {
		t.Fatalf("shallow copy did not share storage: got %v, want 9", v)
	}
}

func TestNewRejectsBadScale(t *testing.T) {
	if _, err := New(3, 3, 0); err == nil {
		t.Fatal("expected error for scale=0")
	}
	if _, err := New(3, 3, -1); err == nil {
		t.Fatal("expected error for negative scale")
	}
}

func TestNewWithBufferRejectsWrongDepth(t *testing.T) {
	buf, _ := buffer.New(3, 3, 3)
	if _, err := NewWithBuffer(buf, 1); err == nil {
		t.Fatal("expected error for depth != 1")
	}
}

func TestSampleNearestClamps(t *testing.T) {
	tr, _ := New(3, 3, 1)
	_ = tr.Data().Set(0, 0, 0, 11)
	_ = tr.Data().Set(2, 2, 0, 22)
	v, err := tr.SampleNearest(-5, -5)
	if err != nil {
		t.Fatalf("SampleNearest: %v", err)
	}
	if v != 11 {
		t.Fatalf("got %v, want 11", v)
	}
	v, err = tr.SampleNearest(50, 50)
	if err != nil {
		t.Fatalf("SampleNearest: %v", err)
	}
	if v != 22 {
		t.Fatalf("got %v, want 22", v)
	}
}
