package bvh

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// primInfo carries the per-primitive data the builder partitions: the
// original index, the bounding box, and its cached centroid. The builder
// reorders a slice of these in place; the final order is the permutation.
type primInfo struct {
	index    int32
	bounds   AABB
	centroid mgl64.Vec3
}

// buildNode is the construction-time recursive tree. It exists only until
// the flattening pass and is discarded afterwards.
type buildNode struct {
	bounds      AABB
	left, right *buildNode
	axis        int8
	first       int32
	count       int32
}

type builder struct {
	prims []primInfo
	opts  Options
}

func build(src []Bounded, opts Options) (*Tree, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	for i, p := range src {
		if !p.Bounds().IsValid() {
			return nil, fmt.Errorf("%w: primitive %d: %+v", ErrInvalidBounds, i, p.Bounds())
		}
	}

	t := &Tree{opts: opts}
	if len(src) == 0 {
		// Sentinel whose empty bounds fail every box test, so all
		// queries walk straight past it.
		t.nodes = []Node{{Bounds: EmptyAABB(), Exit: 1}}
		t.prims = []int32{}
		return t, nil
	}

	start := time.Now()
	b := &builder{
		prims: make([]primInfo, len(src)),
		opts:  opts,
	}
	for i, p := range src {
		bounds := p.Bounds()
		b.prims[i] = primInfo{
			index:    int32(i),
			bounds:   bounds,
			centroid: bounds.Center(),
		}
	}

	root := b.buildRange(0, len(b.prims))
	t.nodes = flatten(root, len(b.prims))

	t.prims = make([]int32, len(b.prims))
	for i := range b.prims {
		t.prims[i] = b.prims[i].index
	}
	t.builtArea = t.totalArea()

	stats := t.Stats()
	opts.Logger.Debug("built bvh",
		zap.Int("primitives", t.Len()),
		zap.Int("nodes", stats.Nodes),
		zap.Int("leaves", stats.Leaves),
		zap.Int("max_depth", stats.MaxDepth),
		zap.Duration("elapsed", time.Since(start)),
	)
	return t, nil
}

// buildRange partitions prims[lo:hi] into a subtree. Recursive calls own
// disjoint sub-ranges, so sibling subtrees above the parallel threshold
// can be built on separate goroutines without any locking.
func (b *builder) buildRange(lo, hi int) *buildNode {
	node := &buildNode{bounds: EmptyAABB()}
	for i := lo; i < hi; i++ {
		node.bounds = node.bounds.Union(b.prims[i].bounds)
	}

	n := hi - lo
	if n <= b.opts.MinLeafSize {
		return b.makeLeaf(node, lo, hi)
	}

	choice, ok := evaluateSplit(b.prims[lo:hi], node.bounds, b.opts)
	if !ok {
		return b.makeLeaf(node, lo, hi)
	}

	mid := lo + partitionByBin(b.prims[lo:hi], choice, b.opts.Bins)
	node.axis = int8(choice.axis)

	if b.opts.ParallelThreshold > 0 && n > b.opts.ParallelThreshold {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			node.left = b.buildRange(lo, mid)
		}()
		node.right = b.buildRange(mid, hi)
		wg.Wait()
	} else {
		node.left = b.buildRange(lo, mid)
		node.right = b.buildRange(mid, hi)
	}
	return node
}

func (b *builder) makeLeaf(node *buildNode, lo, hi int) *buildNode {
	node.first = int32(lo)
	node.count = int32(hi - lo)
	return node
}

// Rebuild reconstructs the tree from scratch over the given primitives
// with the options it was originally built with. Unlike Refit this may
// change the partition topology; it is the caller's answer to a drift
// ratio that has grown too large.
func (t *Tree) Rebuild(prims []Bounded) error {
	fresh, err := build(prims, t.opts)
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}
