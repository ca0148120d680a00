package bvh

// Stats summarizes the shape of a built tree
type Stats struct {
	Nodes       int
	Leaves      int
	Prims       int
	MaxDepth    int
	AvgLeafSize float64

	// SurfaceArea is the root box area; TotalArea sums every node and
	// is the quantity the drift heuristic tracks.
	SurfaceArea float64
	TotalArea   float64
}

// Stats walks the flat array once and collects structural statistics.
// Depth falls out of the exit indices: a stack of pending exits holds one
// entry per enclosing subtree still open at the cursor.
func (t *Tree) Stats() Stats {
	s := Stats{
		Prims:       len(t.prims),
		SurfaceArea: t.Bounds().SurfaceArea(),
	}

	var exits []int32
	for i := range t.nodes {
		for len(exits) > 0 && exits[len(exits)-1] == int32(i) {
			exits = exits[:len(exits)-1]
		}
		if len(exits) > s.MaxDepth {
			s.MaxDepth = len(exits)
		}

		n := &t.nodes[i]
		s.Nodes++
		s.TotalArea += n.Bounds.SurfaceArea()
		if n.IsLeaf() {
			s.Leaves++
		} else if n.Exit > int32(i)+1 {
			exits = append(exits, n.Exit)
		}
	}

	if s.Leaves > 0 {
		s.AvgLeafSize = float64(s.Prims) / float64(s.Leaves)
	}
	return s
}
