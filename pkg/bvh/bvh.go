// Package bvh builds and queries bounding volume hierarchies over sets of
// axis-aligned bounded primitives. Construction uses a binned surface area
// heuristic and the finished tree is stored as a flat array walked
// iteratively per query, so ray and region lookups run in expected
// logarithmic time. The tree stores primitive indices only; it never looks
// at primitive geometry beyond its bounding box.
package bvh

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Build, Restore and Refit
var (
	ErrInvalidBounds = errors.New("bvh: primitive has invalid bounds")
	ErrCorruptTree   = errors.New("bvh: corrupt tree data")
	ErrPrimCount     = errors.New("bvh: primitive count mismatch")
)

// Bounded is implemented by anything the builder can partition.
// Bounds must stay stable for the lifetime of a tree built over it,
// until Refit or Rebuild is called with the moved primitives.
type Bounded interface {
	Bounds() AABB
}

// Node is one entry of the flattened tree, in depth-first pre-order.
// The first child of an interior node is the next array slot; Exit is the
// index of the node visited after this node's entire subtree, used to skip
// the subtree when the query misses the node's bounds.
type Node struct {
	Bounds AABB

	// Exit indexes the node after this subtree (len(nodes) at the
	// right edge of the tree). For leaves Exit is always index+1.
	Exit int32

	// First is the offset of the leaf's primitive range inside the
	// permutation. Meaningless for interior nodes.
	First int32

	// Count is the number of primitives in a leaf. Interior nodes have
	// Count == 0.
	Count int32

	// Axis is the split axis of an interior node (0=X, 1=Y, 2=Z)
	Axis int8
}

// IsLeaf reports whether the node holds primitives directly
func (n Node) IsLeaf() bool {
	return n.Count > 0
}

// Hit is the result of a closest-hit query
type Hit struct {
	// Prim is the primitive's index in the caller's original collection
	Prim int

	// T is the parametric distance along the ray
	T float64
}

// IntersectFunc tests the ray against one primitive, identified by its
// index in the caller's original collection. It reports the hit distance,
// which must lie within [tMin, tMax] for ok to be true. The tree calls it
// only for primitives whose leaf bounds the ray actually enters.
type IntersectFunc func(prim int, r Ray, tMin, tMax float64) (t float64, ok bool)

// Tree is an immutable flattened BVH plus the primitive index permutation.
// It is safe for concurrent use by any number of readers. Refit and
// Rebuild are the only mutating operations and must not race with queries.
type Tree struct {
	nodes []Node
	prims []int32 // permutation of original primitive indices
	opts  Options

	// Surface area total captured at build time, the baseline for Drift
	builtArea float64
}

// Build constructs a tree over the given primitives. A zero-length input
// is not an error and yields a tree whose queries all report no hits.
// Primitives with NaN, infinite or inverted bounds are rejected up front
// with an error wrapping ErrInvalidBounds.
func Build(prims []Bounded, opts Options) (*Tree, error) {
	return build(prims, opts.withDefaults())
}

// Len returns the number of primitives the tree was built over
func (t *Tree) Len() int {
	return len(t.prims)
}

// Bounds returns the root bounding box, or the empty box for a tree built
// over no primitives.
func (t *Tree) Bounds() AABB {
	if len(t.nodes) == 0 {
		return EmptyAABB()
	}
	return t.nodes[0].Bounds
}

// Nodes returns the flat node array in depth-first pre-order. The slice is
// the tree's own storage and must not be modified; it exists so that
// persistence collaborators can serialize the tree without rebuilding it.
func (t *Tree) Nodes() []Node {
	return t.nodes
}

// Permutation returns the primitive index permutation backing the leaf
// ranges. Like Nodes, the returned slice must be treated as read-only.
func (t *Tree) Permutation() []int32 {
	return t.prims
}

// Restore rebuilds a Tree from a previously persisted node array and
// permutation, validating the structural invariants the traversal and
// refit walks rely on: in-range exit indices, in-range leaf primitive
// ranges, every interior node closing exactly two child subtrees, and a
// permutation covering every primitive exactly once.
func Restore(nodes []Node, perm []int32) (*Tree, error) {
	n := int32(len(nodes))
	if n == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrCorruptTree)
	}
	for i, node := range nodes {
		if node.Count < 0 {
			return nil, fmt.Errorf("%w: node %d has negative count", ErrCorruptTree, i)
		}
		if node.Exit <= int32(i) || node.Exit > n {
			return nil, fmt.Errorf("%w: node %d exit %d out of range", ErrCorruptTree, i, node.Exit)
		}
		if node.IsLeaf() {
			if node.First < 0 || node.First+node.Count > int32(len(perm)) {
				return nil, fmt.Errorf("%w: node %d primitive range [%d,%d) out of range",
					ErrCorruptTree, i, node.First, node.First+node.Count)
			}
		}
	}

	if len(perm) == 0 {
		// The empty tree is a single sentinel whose empty bounds fail
		// every query.
		if n != 1 || nodes[0].IsLeaf() {
			return nil, fmt.Errorf("%w: malformed empty tree", ErrCorruptTree)
		}
	} else {
		// Walk the pre-order layout. Leaves must exit at the next slot
		// and every interior node must close exactly two child
		// subtrees, which is what keeps the refit child lookups
		// (left at i+1, right at the left child's exit) in bounds.
		var walk func(i int32) (int32, error)
		walk = func(i int32) (int32, error) {
			if i >= n {
				return 0, fmt.Errorf("%w: subtree at %d out of range", ErrCorruptTree, i)
			}
			node := nodes[i]
			if node.IsLeaf() {
				if node.Exit != i+1 {
					return 0, fmt.Errorf("%w: leaf %d exit %d, want %d", ErrCorruptTree, i, node.Exit, i+1)
				}
				return node.Exit, nil
			}
			leftEnd, err := walk(i + 1)
			if err != nil {
				return 0, err
			}
			rightEnd, err := walk(leftEnd)
			if err != nil {
				return 0, err
			}
			if rightEnd != node.Exit {
				return 0, fmt.Errorf("%w: node %d exit %d, but children end at %d",
					ErrCorruptTree, i, node.Exit, rightEnd)
			}
			return rightEnd, nil
		}
		end, err := walk(0)
		if err != nil {
			return nil, err
		}
		if end != n {
			return nil, fmt.Errorf("%w: tree ends at %d, want %d", ErrCorruptTree, end, n)
		}
	}

	seen := make([]bool, len(perm))
	for i, p := range perm {
		if p < 0 || int(p) >= len(perm) || seen[p] {
			return nil, fmt.Errorf("%w: permutation entry %d invalid", ErrCorruptTree, i)
		}
		seen[p] = true
	}

	t := &Tree{
		nodes: nodes,
		prims: perm,
		opts:  DefaultOptions(),
	}
	t.builtArea = t.totalArea()
	return t, nil
}

// totalArea sums the surface areas of every node, the quantity the drift
// heuristic compares against its as-built baseline.
func (t *Tree) totalArea() float64 {
	var area float64
	for i := range t.nodes {
		area += t.nodes[i].Bounds.SurfaceArea()
	}
	return area
}

// BoundedBoxes adapts a plain slice of boxes to the Bounded interface,
// for callers whose primitives are the boxes themselves.
func BoundedBoxes(boxes []AABB) []Bounded {
	prims := make([]Bounded, len(boxes))
	for i := range boxes {
		prims[i] = boxes[i]
	}
	return prims
}

// Bounds makes AABB itself a Bounded primitive
func (a AABB) Bounds() AABB {
	return a
}

// BoxIntersector returns an IntersectFunc that intersects rays against the
// boxes themselves, for callers whose primitives are plain AABBs. The
// reported distance is the ray's entry into the box, clipped to tMin for
// origins inside it.
func BoxIntersector(boxes []AABB) IntersectFunc {
	return func(prim int, r Ray, tMin, tMax float64) (float64, bool) {
		entry, _, ok := boxes[prim].IntersectRay(r, tMin, tMax)
		if !ok {
			return 0, false
		}
		return entry, true
	}
}
