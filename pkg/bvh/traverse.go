package bvh

import (
	"iter"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ClosestHit walks the tree and returns the nearest primitive intersection
// along the ray within [tMin, tMax]. The per-primitive test is delegated
// to isect since the tree knows nothing about primitive geometry. When two
// primitives hit at exactly the same distance the one encountered first in
// traversal order wins.
//
// The walk is read-only: any number of goroutines may query the same tree
// concurrently.
func (t *Tree) ClosestHit(r Ray, tMin, tMax float64, isect IntersectFunc) (Hit, bool) {
	if r.IsDegenerate() {
		return Hit{}, false
	}

	best := Hit{Prim: -1, T: tMax}
	found := false

	for i := 0; i < len(t.nodes); {
		n := &t.nodes[i]
		// Restricting the box test to the best distance so far prunes
		// subtrees that can no longer contain a closer hit.
		if _, _, ok := n.Bounds.IntersectRay(r, tMin, best.T); !ok {
			i = int(n.Exit)
			continue
		}
		if n.IsLeaf() {
			for j := n.First; j < n.First+n.Count; j++ {
				prim := int(t.prims[j])
				if d, ok := isect(prim, r, tMin, best.T); ok && (!found || d < best.T) {
					best = Hit{Prim: prim, T: d}
					found = true
				}
			}
		}
		i++
	}

	if !found {
		return Hit{}, false
	}
	return best, true
}

// AnyHit reports whether the ray intersects any primitive within
// [tMin, tMax], returning as soon as one is found. Use it for visibility
// and occlusion tests where the nearest hit does not matter.
func (t *Tree) AnyHit(r Ray, tMin, tMax float64, isect IntersectFunc) bool {
	if r.IsDegenerate() {
		return false
	}

	for i := 0; i < len(t.nodes); {
		n := &t.nodes[i]
		if _, _, ok := n.Bounds.IntersectRay(r, tMin, tMax); !ok {
			i = int(n.Exit)
			continue
		}
		if n.IsLeaf() {
			for j := n.First; j < n.First+n.Count; j++ {
				if _, ok := isect(int(t.prims[j]), r, tMin, tMax); ok {
					return true
				}
			}
		}
		i++
	}
	return false
}

// Overlapping returns a lazy, single-pass sequence of the indices of all
// primitives whose bounds overlap the query box. The same flat-array walk
// as the ray queries applies, with a box-overlap test in place of the slab
// test. Primitive bounds are re-read from prims because the tree stores
// indices only.
func (t *Tree) Overlapping(box AABB, prims []Bounded) iter.Seq[int] {
	return func(yield func(int) bool) {
		if box.IsEmpty() {
			return
		}
		for i := 0; i < len(t.nodes); {
			n := &t.nodes[i]
			if !n.Bounds.Overlaps(box) {
				i = int(n.Exit)
				continue
			}
			if n.IsLeaf() {
				for j := n.First; j < n.First+n.Count; j++ {
					prim := int(t.prims[j])
					if !prims[prim].Bounds().Overlaps(box) {
						continue
					}
					if !yield(prim) {
						return
					}
				}
			}
			i++
		}
	}
}

// OverlappingSphere is Overlapping with a sphere query region
func (t *Tree) OverlappingSphere(center mgl64.Vec3, radius float64, prims []Bounded) iter.Seq[int] {
	return func(yield func(int) bool) {
		if radius < 0 || math.IsNaN(radius) {
			return
		}
		for i := 0; i < len(t.nodes); {
			n := &t.nodes[i]
			if !n.Bounds.OverlapsSphere(center, radius) {
				i = int(n.Exit)
				continue
			}
			if n.IsLeaf() {
				for j := n.First; j < n.First+n.Count; j++ {
					prim := int(t.prims[j])
					if !prims[prim].Bounds().OverlapsSphere(center, radius) {
						continue
					}
					if !yield(prim) {
						return
					}
				}
			}
			i++
		}
	}
}
