package mathutil

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVec3NormalizeUnitLength(t *testing.T) {
	v := Vec3{3, 4, 0}.Normalize()
	if !almostEqual(v.Len(), 1) {
		t.Fatalf("Len() = %v, want 1", v.Len())
	}
}

func TestVec3NormalizeZeroIsZero(t *testing.T) {
	v := Vec3{}.Normalize()
	if v != (Vec3{}) {
		t.Fatalf("Normalize of zero vector = %v, want zero", v)
	}
}

func TestVec3CrossOrthogonal(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := x.Cross(y)
	if !almostEqual(z[2], 1) || !almostEqual(z[0], 0) || !almostEqual(z[1], 0) {
		t.Fatalf("x cross y = %v, want (0,0,1)", z)
	}
}

func TestRotZQuarterTurn(t *testing.T) {
	r := RotZ(math.Pi / 2)
	v := r.MulVec3(Vec3{1, 0, 0})
	if !almostEqual(v[0], 0) || !almostEqual(v[1], 1) || !almostEqual(v[2], 0) {
		t.Fatalf("RotZ(pi/2) * (1,0,0) = %v, want (0,1,0)", v)
	}
}

func TestRotYQuarterTurn(t *testing.T) {
	r := RotY(math.Pi / 2)
	v := r.MulVec3(Vec3{1, 0, 0})
	if !almostEqual(v[0], 0) || !almostEqual(v[1], 0) || !almostEqual(v[2], -1) {
		t.Fatalf("RotY(pi/2) * (1,0,0) = %v, want (0,0,-1)", v)
	}
}

func TestMat3MulIdentity(t *testing.T) {
	id := Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
	r := RotX(0.7)
	got := Mat3Mul(id, r)
	for i := range got {
		if !almostEqual(got[i], r[i]) {
			t.Fatalf("identity * r = %v, want %v", got, r)
		}
	}
}

func TestDeg2Rad(t *testing.T) {
	if !almostEqual(Deg2Rad(180), math.Pi) {
		t.Fatalf("Deg2Rad(180) = %v, want pi", Deg2Rad(180))
	}
}
