package bvh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3 // Minimum corner
	Max mgl64.Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max corners
func NewAABB(min, max mgl64.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the empty box, the identity element for Union.
// Its corners are chosen so that any union with it yields the other box.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...mgl64.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.ExtendPoint(p)
	}
	return box
}

// IsEmpty reports whether the box has no extent on some axis, i.e. it is
// the Union identity. Degenerate (flat) boxes with Min == Max are not empty.
func (a AABB) IsEmpty() bool {
	return a.Min[0] > a.Max[0] || a.Min[1] > a.Max[1] || a.Min[2] > a.Max[2]
}

// IsValid reports whether the box is usable for tree construction: all
// components finite and Min <= Max on every axis. Flat boxes are valid.
func (a AABB) IsValid() bool {
	for axis := 0; axis < 3; axis++ {
		lo, hi := a.Min[axis], a.Max[axis]
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return false
		}
		if lo > hi {
			return false
		}
	}
	return true
}

// Union returns the smallest AABB containing both boxes
func (a AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{
			math.Min(a.Min[0], other.Min[0]),
			math.Min(a.Min[1], other.Min[1]),
			math.Min(a.Min[2], other.Min[2]),
		},
		Max: mgl64.Vec3{
			math.Max(a.Max[0], other.Max[0]),
			math.Max(a.Max[1], other.Max[1]),
			math.Max(a.Max[2], other.Max[2]),
		},
	}
}

// ExtendPoint returns the smallest AABB containing the box and the point
func (a AABB) ExtendPoint(p mgl64.Vec3) AABB {
	return a.Union(AABB{Min: p, Max: p})
}

// Overlaps reports whether the two boxes intersect. Touching faces count
// as overlapping. Empty boxes overlap nothing.
func (a AABB) Overlaps(other AABB) bool {
	return a.Min[0] <= other.Max[0] && a.Max[0] >= other.Min[0] &&
		a.Min[1] <= other.Max[1] && a.Max[1] >= other.Min[1] &&
		a.Min[2] <= other.Max[2] && a.Max[2] >= other.Min[2]
}

// ContainsPoint reports whether the point lies inside or on the box
func (a AABB) ContainsPoint(p mgl64.Vec3) bool {
	return p[0] >= a.Min[0] && p[0] <= a.Max[0] &&
		p[1] >= a.Min[1] && p[1] <= a.Max[1] &&
		p[2] >= a.Min[2] && p[2] <= a.Max[2]
}

// OverlapsSphere reports whether the sphere intersects the box, using the
// squared distance from the center to the nearest point on the box.
func (a AABB) OverlapsSphere(center mgl64.Vec3, radius float64) bool {
	if a.IsEmpty() {
		return false
	}
	var d2 float64
	for axis := 0; axis < 3; axis++ {
		c := center[axis]
		if c < a.Min[axis] {
			d := a.Min[axis] - c
			d2 += d * d
		} else if c > a.Max[axis] {
			d := c - a.Max[axis]
			d2 += d * d
		}
	}
	return d2 <= radius*radius
}

// Center returns the center point of the box
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis
func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// SurfaceArea returns the surface area of the box. A box that is flat
// along one axis has zero area, which is fine for the SAH cost model.
// The empty box also reports zero.
func (a AABB) SurfaceArea() float64 {
	if a.IsEmpty() {
		return 0
	}
	size := a.Size()
	return 2.0 * (size[0]*size[1] + size[1]*size[2] + size[2]*size[0])
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (a AABB) LongestAxis() int {
	size := a.Size()
	if size[0] > size[1] && size[0] > size[2] {
		return 0
	}
	if size[1] > size[2] {
		return 1
	}
	return 2
}

// Expand returns an AABB grown by the given amount in all directions
func (a AABB) Expand(amount float64) AABB {
	e := mgl64.Vec3{amount, amount, amount}
	return AABB{Min: a.Min.Sub(e), Max: a.Max.Add(e)}
}

// IntersectRay tests the ray against the box with the slab method,
// restricted to the parametric interval [tMin, tMax]. It returns the
// entry and exit distances of the clipped interval. Axes with a zero
// direction component degrade to an origin-inside-slab check so no NaN
// can leak out of a 0*Inf product.
func (a AABB) IntersectRay(r Ray, tMin, tMax float64) (entry, exit float64, ok bool) {
	if a.IsEmpty() {
		return 0, 0, false
	}
	entry, exit = tMin, tMax
	for axis := 0; axis < 3; axis++ {
		inv := r.InvDirection[axis]
		if math.IsInf(inv, 0) {
			// Ray is parallel to this slab
			origin := r.Origin[axis]
			if origin < a.Min[axis] || origin > a.Max[axis] {
				return 0, 0, false
			}
			continue
		}

		t1 := (a.Min[axis] - r.Origin[axis]) * inv
		t2 := (a.Max[axis] - r.Origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		entry = math.Max(entry, t1)
		exit = math.Min(exit, t2)
		if entry > exit {
			return 0, 0, false
		}
	}
	return entry, exit, true
}
