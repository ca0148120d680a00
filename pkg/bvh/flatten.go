package bvh

// flatten converts the recursive construction tree into the flat pre-order
// array the traversal walks. A node's first child lands at its own index
// plus one; Exit is filled with the array length once the whole subtree
// has been emitted, which is exactly the index of the node visited after
// skipping this subtree. The pass is purely structural: bounds were
// already computed during construction and are only copied.
func flatten(root *buildNode, primCount int) []Node {
	// A binary tree with L leaves has 2L-1 nodes; leaves hold at least
	// one primitive each, so this bound never reallocates.
	nodes := make([]Node, 0, 2*primCount-1)

	var emit func(bn *buildNode)
	emit = func(bn *buildNode) {
		idx := len(nodes)
		nodes = append(nodes, Node{Bounds: bn.bounds, Axis: bn.axis})
		if bn.left == nil {
			nodes[idx].First = bn.first
			nodes[idx].Count = bn.count
		} else {
			emit(bn.left)
			emit(bn.right)
		}
		nodes[idx].Exit = int32(len(nodes))
	}
	emit(root)
	return nodes
}
