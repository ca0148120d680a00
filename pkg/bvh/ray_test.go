package bvh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNewRay_InverseDirection(t *testing.T) {
	r := NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, -4, 0})

	if r.InvDirection[0] != 0.5 {
		t.Errorf("InvDirection.X = %v, want 0.5", r.InvDirection[0])
	}
	if r.InvDirection[1] != -0.25 {
		t.Errorf("InvDirection.Y = %v, want -0.25", r.InvDirection[1])
	}
	// Zero components invert to infinity; the slab test relies on this
	if !math.IsInf(r.InvDirection[2], 1) {
		t.Errorf("InvDirection.Z = %v, want +Inf", r.InvDirection[2])
	}
}

func TestRay_At(t *testing.T) {
	r := NewRay(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 0, -1})
	want := mgl64.Vec3{3, 2, 1}
	if got := r.At(2); got != want {
		t.Errorf("At(2) = %v, want %v", got, want)
	}
}

func TestRay_IsDegenerate(t *testing.T) {
	if !NewRay(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{}).IsDegenerate() {
		t.Error("zero direction should be degenerate")
	}
	if NewRay(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1e-30}).IsDegenerate() {
		t.Error("tiny but nonzero direction is not degenerate")
	}
}
