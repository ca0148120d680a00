package bvh

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// randomBoxes generates n boxes with random positions and extents inside
// a fixed world region. Deterministic for a seeded source.
func randomBoxes(rng *rand.Rand, n int) []AABB {
	boxes := make([]AABB, n)
	for i := range boxes {
		center := mgl64.Vec3{
			rng.Float64()*100 - 50,
			rng.Float64()*100 - 50,
			rng.Float64()*100 - 50,
		}
		half := mgl64.Vec3{
			rng.Float64() * 2,
			rng.Float64() * 2,
			rng.Float64() * 2,
		}
		boxes[i] = NewAABB(center.Sub(half), center.Add(half))
	}
	return boxes
}

// verifyTree checks the structural invariants of a built tree against the
// source boxes: the permutation covers every primitive exactly once, leaf
// ranges partition the permutation, exit indices describe well-formed
// subtrees, and every node's box is the exact union of its children's
// (interior) or its primitives' (leaf) boxes with no slack.
func verifyTree(t *testing.T, tree *Tree, boxes []AABB) {
	t.Helper()

	perm := tree.Permutation()
	if len(perm) != len(boxes) {
		t.Fatalf("permutation has %d entries, want %d", len(perm), len(boxes))
	}
	seen := make([]bool, len(boxes))
	for _, p := range perm {
		if p < 0 || int(p) >= len(boxes) {
			t.Fatalf("permutation entry %d out of range", p)
		}
		if seen[p] {
			t.Fatalf("primitive %d appears twice in permutation", p)
		}
		seen[p] = true
	}

	nodes := tree.Nodes()
	if len(boxes) == 0 {
		if len(nodes) != 1 || !nodes[0].Bounds.IsEmpty() {
			t.Fatalf("empty input should produce a single empty sentinel node, got %+v", nodes)
		}
		return
	}

	covered := 0
	var walk func(i int32) int32
	walk = func(i int32) int32 {
		n := nodes[i]
		if n.IsLeaf() {
			if n.Exit != i+1 {
				t.Fatalf("leaf %d has exit %d, want %d", i, n.Exit, i+1)
			}
			bounds := EmptyAABB()
			for j := n.First; j < n.First+n.Count; j++ {
				bounds = bounds.Union(boxes[perm[j]])
			}
			if n.Bounds != bounds {
				t.Fatalf("leaf %d bounds %+v, want exact union %+v", i, n.Bounds, bounds)
			}
			covered += int(n.Count)
			return n.Exit
		}

		left := i + 1
		leftExit := walk(left)
		rightExit := walk(leftExit)
		if rightExit != n.Exit {
			t.Fatalf("node %d exit %d, but children end at %d", i, n.Exit, rightExit)
		}
		bounds := nodes[left].Bounds.Union(nodes[leftExit].Bounds)
		if n.Bounds != bounds {
			t.Fatalf("node %d bounds %+v, want exact union of children %+v", i, n.Bounds, bounds)
		}
		return n.Exit
	}

	if exit := walk(0); exit != int32(len(nodes)) {
		t.Fatalf("root subtree ends at %d, want %d", exit, len(nodes))
	}
	if covered != len(boxes) {
		t.Fatalf("leaves cover %d primitives, want %d", covered, len(boxes))
	}
}

func TestBuild_Invariants(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1234} {
		rng := rand.New(rand.NewSource(seed))
		boxes := randomBoxes(rng, 300)

		tree, err := Build(BoundedBoxes(boxes), DefaultOptions())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		verifyTree(t, tree, boxes)
	}
}

func TestBuild_Empty(t *testing.T) {
	tree, err := Build(nil, DefaultOptions())
	if err != nil {
		t.Fatalf("zero primitives is not an error: %v", err)
	}
	if tree.Len() != 0 {
		t.Errorf("Len = %d, want 0", tree.Len())
	}
	if !tree.Bounds().IsEmpty() {
		t.Errorf("empty tree bounds = %+v, want empty", tree.Bounds())
	}
	verifyTree(t, tree, nil)
}

func TestBuild_SinglePrimitive(t *testing.T) {
	box := NewAABB(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, 5, 6})
	tree, err := Build(BoundedBoxes([]AABB{box}), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	nodes := tree.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("single primitive should produce a single leaf, got %d nodes", len(nodes))
	}
	if !nodes[0].IsLeaf() {
		t.Error("root should be a leaf")
	}
	if nodes[0].Bounds != box {
		t.Errorf("leaf bounds %+v, want exactly %+v", nodes[0].Bounds, box)
	}
}

func TestBuild_InvalidBounds(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	good := NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})

	tests := []struct {
		name string
		bad  AABB
	}{
		{"nan component", NewAABB(mgl64.Vec3{nan, 0, 0}, mgl64.Vec3{1, 1, 1})},
		{"infinite component", NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{inf, 1, 1})},
		{"inverted", NewAABB(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 1, 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(BoundedBoxes([]AABB{good, tt.bad}), DefaultOptions())
			if !errors.Is(err, ErrInvalidBounds) {
				t.Errorf("error = %v, want ErrInvalidBounds", err)
			}
		})
	}
}

func TestBuild_InvalidOptions(t *testing.T) {
	boxes := randomBoxes(rand.New(rand.NewSource(23)), 8)

	tests := []struct {
		name string
		opts Options
	}{
		{"negative bins", Options{Bins: -3}},
		{"one bin", Options{Bins: 1}},
		{"negative leaf size", Options{MinLeafSize: -1}},
		{"negative traversal cost", Options{TraversalCost: -2}},
		{"negative intersect cost", Options{IntersectCost: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Must be rejected up front, never reach the evaluator
			if _, err := Build(BoundedBoxes(boxes), tt.opts); err == nil {
				t.Errorf("Build with %+v should fail validation", tt.opts)
			}
		})
	}
}

func TestBuild_LeafThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	boxes := randomBoxes(rng, 10)

	opts := DefaultOptions()
	opts.MinLeafSize = 16
	tree, err := Build(BoundedBoxes(boxes), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(tree.Nodes()); got != 1 {
		t.Errorf("10 primitives with min leaf 16 should stay one leaf, got %d nodes", got)
	}

	opts.MinLeafSize = 2
	tree, err = Build(BoundedBoxes(boxes), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(tree.Nodes()); got < 3 {
		t.Errorf("expected a split with min leaf 2, got %d nodes", got)
	}
	verifyTree(t, tree, boxes)
}

func TestBuild_CoincidentCentroids(t *testing.T) {
	// All centroids identical: no axis can separate anything, so the
	// builder must terminate with one leaf instead of recursing forever
	box := NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	boxes := make([]AABB, 64)
	for i := range boxes {
		boxes[i] = box
	}

	tree, err := Build(BoundedBoxes(boxes), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := len(tree.Nodes()); got != 1 {
		t.Errorf("coincident centroids should produce a single leaf, got %d nodes", got)
	}
	verifyTree(t, tree, boxes)
}

func TestBuild_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	boxes := randomBoxes(rng, 500)

	first, err := Build(BoundedBoxes(boxes), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(BoundedBoxes(boxes), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Nodes(), second.Nodes()) {
		t.Error("two builds over identical input produced different node arrays")
	}
	if !reflect.DeepEqual(first.Permutation(), second.Permutation()) {
		t.Error("two builds over identical input produced different permutations")
	}
}

func TestBuild_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	boxes := randomBoxes(rng, 2000)

	seq := DefaultOptions()
	seq.ParallelThreshold = -1 // force sequential
	par := DefaultOptions()
	par.ParallelThreshold = 64 // spawn goroutines aggressively

	seqTree, err := Build(BoundedBoxes(boxes), seq)
	if err != nil {
		t.Fatal(err)
	}
	parTree, err := Build(BoundedBoxes(boxes), par)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(seqTree.Nodes(), parTree.Nodes()) {
		t.Error("parallel construction changed the node array")
	}
	if !reflect.DeepEqual(seqTree.Permutation(), parTree.Permutation()) {
		t.Error("parallel construction changed the permutation")
	}
	verifyTree(t, parTree, boxes)
}

func TestTree_Stats(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	boxes := randomBoxes(rng, 200)

	tree, err := Build(BoundedBoxes(boxes), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	stats := tree.Stats()

	if stats.Prims != 200 {
		t.Errorf("Prims = %d, want 200", stats.Prims)
	}
	if stats.Leaves < 2 {
		t.Errorf("expected multiple leaves for 200 spread-out boxes, got %d", stats.Leaves)
	}
	if stats.Nodes != 2*stats.Leaves-1 {
		t.Errorf("binary tree with %d leaves should have %d nodes, got %d",
			stats.Leaves, 2*stats.Leaves-1, stats.Nodes)
	}
	if stats.MaxDepth < 1 {
		t.Errorf("MaxDepth = %d, want >= 1", stats.MaxDepth)
	}
	if stats.AvgLeafSize <= 0 {
		t.Errorf("AvgLeafSize = %v, want > 0", stats.AvgLeafSize)
	}
	if stats.SurfaceArea <= 0 || stats.TotalArea < stats.SurfaceArea {
		t.Errorf("implausible areas: root %v total %v", stats.SurfaceArea, stats.TotalArea)
	}
}
