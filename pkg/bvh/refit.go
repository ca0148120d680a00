package bvh

import "fmt"

// Refit recomputes every node's bounding box after primitive motion,
// keeping the partition topology intact. Leaves take the union of their
// primitives' current bounds; interior nodes take the union of their two
// children. Because the flat array is in pre-order, a single reverse walk
// sees both children of every interior node before the node itself: the
// left child sits at i+1 and the right child at the left child's exit
// index.
//
// Refit runs in O(nodes) and must not race with concurrent queries.
// If motion has degraded the partition quality, Drift grows; the caller
// decides when that warrants a Rebuild.
func (t *Tree) Refit(prims []Bounded) error {
	if len(prims) != len(t.prims) {
		return fmt.Errorf("%w: tree has %d primitives, got %d", ErrPrimCount, len(t.prims), len(prims))
	}
	for i, p := range prims {
		if !p.Bounds().IsValid() {
			return fmt.Errorf("%w: primitive %d: %+v", ErrInvalidBounds, i, p.Bounds())
		}
	}
	if len(prims) == 0 {
		return nil
	}

	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := &t.nodes[i]
		bounds := EmptyAABB()
		if n.IsLeaf() {
			for j := n.First; j < n.First+n.Count; j++ {
				bounds = bounds.Union(prims[t.prims[j]].Bounds())
			}
		} else {
			left := int32(i) + 1
			right := t.nodes[left].Exit
			bounds = t.nodes[left].Bounds.Union(t.nodes[right].Bounds)
		}
		n.Bounds = bounds
	}
	return nil
}

// Drift compares the tree's current total surface area against the value
// captured when it was built (or last rebuilt). A freshly built tree
// reports 1.0; values well above that mean the boxes have inflated and
// traversal prunes less, so a Rebuild is worth considering. The tree only
// reports the ratio, it never rebuilds on its own.
func (t *Tree) Drift() float64 {
	if t.builtArea == 0 {
		return 1.0
	}
	return t.totalArea() / t.builtArea
}
