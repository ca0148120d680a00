package bvh

import "github.com/go-gl/mathgl/mgl64"

// Ray represents a ray with an origin, a direction and the cached inverse
// direction used by the slab test. Direction components equal to zero
// produce infinities in the inverse, which IntersectRay handles explicitly.
type Ray struct {
	Origin       mgl64.Vec3
	Direction    mgl64.Vec3
	InvDirection mgl64.Vec3
}

// NewRay creates a ray and precomputes the inverse direction
func NewRay(origin, direction mgl64.Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		InvDirection: mgl64.Vec3{
			1.0 / direction[0],
			1.0 / direction[1],
			1.0 / direction[2],
		},
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IsDegenerate reports whether the ray has a zero-length direction.
// Queries treat such rays as hitting nothing.
func (r Ray) IsDegenerate() bool {
	return r.Direction[0] == 0 && r.Direction[1] == 0 && r.Direction[2] == 0
}
