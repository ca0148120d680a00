package bvh

import "math"

// binInfo accumulates the primitives whose centroids fall into one SAH bin
type binInfo struct {
	count  int32
	bounds AABB
}

// splitChoice describes the winning binned split for a primitive range:
// primitives whose centroid bin on the axis is below bin go left, the rest
// go right. The centroid bounds are kept so the partition step bins
// primitives exactly the way the evaluation did.
type splitChoice struct {
	axis      int
	bin       int
	cost      float64
	leftCount int32
	centroid  AABB
}

// binIndex maps a centroid coordinate to its bin on one axis. The clamp
// keeps coordinates sitting exactly on the upper bound inside the last bin.
func binIndex(c, lo, extent float64, bins int) int {
	b := int(float64(bins) * (c - lo) / extent)
	if b < 0 {
		b = 0
	} else if b >= bins {
		b = bins - 1
	}
	return b
}

// evaluateSplit runs the binned SAH over all three axes of the range's
// centroid bounds and returns the cheapest split candidate. It reports
// ok=false when the range should become a leaf instead: estimated split
// cost not better than testing every primitive, a node box with no
// surface, or centroids that coincide on every axis so no split can
// separate anything.
func evaluateSplit(prims []primInfo, bounds AABB, opts Options) (splitChoice, bool) {
	n := len(prims)
	nodeArea := bounds.SurfaceArea()
	if nodeArea <= 0 {
		return splitChoice{}, false
	}

	centroidBounds := EmptyAABB()
	for i := range prims {
		centroidBounds = centroidBounds.ExtendPoint(prims[i].centroid)
	}

	best := splitChoice{cost: math.Inf(1), centroid: centroidBounds}
	bins := make([]binInfo, opts.Bins)

	for axis := 0; axis < 3; axis++ {
		lo := centroidBounds.Min[axis]
		extent := centroidBounds.Max[axis] - lo
		if extent <= 0 {
			// All centroids coincide on this axis
			continue
		}

		for i := range bins {
			bins[i] = binInfo{bounds: EmptyAABB()}
		}
		for i := range prims {
			b := binIndex(prims[i].centroid[axis], lo, extent, opts.Bins)
			bins[b].count++
			bins[b].bounds = bins[b].bounds.Union(prims[i].bounds)
		}

		// Sweep from the right to precompute the area and count of
		// every suffix, then sweep left to right accumulating the
		// prefix and scoring each boundary between two bins.
		rightArea := make([]float64, opts.Bins)
		rightCount := make([]int32, opts.Bins)
		suffix := EmptyAABB()
		var count int32
		for i := opts.Bins - 1; i > 0; i-- {
			suffix = suffix.Union(bins[i].bounds)
			count += bins[i].count
			rightArea[i] = suffix.SurfaceArea()
			rightCount[i] = count
		}

		prefix := EmptyAABB()
		var leftCount int32
		for i := 0; i < opts.Bins-1; i++ {
			prefix = prefix.Union(bins[i].bounds)
			leftCount += bins[i].count
			if leftCount == 0 || rightCount[i+1] == 0 {
				continue
			}

			cost := opts.TraversalCost + opts.IntersectCost*
				(prefix.SurfaceArea()*float64(leftCount)+
					rightArea[i+1]*float64(rightCount[i+1]))/nodeArea
			if cost < best.cost {
				best = splitChoice{
					axis:      axis,
					bin:       i + 1,
					cost:      cost,
					leftCount: leftCount,
					centroid:  centroidBounds,
				}
			}
		}
	}

	if math.IsInf(best.cost, 1) {
		return splitChoice{}, false
	}
	leafCost := float64(n) * opts.IntersectCost
	if best.cost >= leafCost {
		return splitChoice{}, false
	}
	return best, true
}

// partitionByBin reorders the range in place so primitives binned below
// the split boundary precede the rest, returning the boundary offset.
// evaluateSplit guarantees both halves are non-empty.
func partitionByBin(prims []primInfo, c splitChoice, bins int) int {
	lo := c.centroid.Min[c.axis]
	extent := c.centroid.Max[c.axis] - lo

	i, j := 0, len(prims)
	for i < j {
		if binIndex(prims[i].centroid[c.axis], lo, extent, bins) < c.bin {
			i++
		} else {
			j--
			prims[i], prims[j] = prims[j], prims[i]
		}
	}
	return i
}
