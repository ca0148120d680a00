// Package bvhio persists built trees and primitive box lists in a compact
// little-endian binary layout, so a structure built once can be reloaded
// without reconstruction. It consumes only the read accessors of
// bvh.Tree; nothing in here participates in construction or traversal.
package bvhio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mtavis/go-bvh/pkg/bvh"
)

var treeMagic = [4]byte{'G', 'B', 'V', 'H'}

const (
	treeVersion uint16 = 1

	// Upper bound on header counts, so a corrupted count field cannot
	// drive a huge allocation before the stream proves it has the data.
	maxHeaderCount = 1 << 28

	readChunk = 4096
)

// treeHeader prefixes a serialized tree
type treeHeader struct {
	Magic     [4]byte
	Version   uint16
	NodeCount uint32
	PrimCount uint32
}

// diskNode is the fixed-size wire form of one flat node
type diskNode struct {
	Min   [3]float64
	Max   [3]float64
	Exit  int32
	First int32
	Count int32
	Axis  int8
}

// WriteTree serializes the flat node array and permutation of a tree
func WriteTree(w io.Writer, t *bvh.Tree) error {
	nodes := t.Nodes()
	perm := t.Permutation()

	hdr := treeHeader{
		Magic:     treeMagic,
		Version:   treeVersion,
		NodeCount: uint32(len(nodes)),
		PrimCount: uint32(len(perm)),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("bvhio: write header: %w", err)
	}

	for i := range nodes {
		dn := diskNode{
			Min:   [3]float64(nodes[i].Bounds.Min),
			Max:   [3]float64(nodes[i].Bounds.Max),
			Exit:  nodes[i].Exit,
			First: nodes[i].First,
			Count: nodes[i].Count,
			Axis:  nodes[i].Axis,
		}
		if err := binary.Write(w, binary.LittleEndian, dn); err != nil {
			return fmt.Errorf("bvhio: write node %d: %w", i, err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, perm); err != nil {
		return fmt.Errorf("bvhio: write permutation: %w", err)
	}
	return nil
}

// ReadTree deserializes a tree written by WriteTree. The restored tree is
// validated structurally before it is returned, so a truncated or
// corrupted stream cannot produce a tree that panics during traversal.
func ReadTree(r io.Reader) (*bvh.Tree, error) {
	var hdr treeHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("bvhio: read header: %w", err)
	}
	if hdr.Magic != treeMagic {
		return nil, fmt.Errorf("bvhio: bad magic %q", hdr.Magic[:])
	}
	if hdr.Version != treeVersion {
		return nil, fmt.Errorf("bvhio: unsupported version %d", hdr.Version)
	}
	// Plausibility checks on the untrusted counts: a binary tree over P
	// primitives has at most 2P-1 nodes, and the empty tree is exactly
	// one sentinel node.
	switch {
	case hdr.NodeCount > maxHeaderCount || hdr.PrimCount > maxHeaderCount:
		return nil, fmt.Errorf("bvhio: implausible counts: %d nodes, %d primitives", hdr.NodeCount, hdr.PrimCount)
	case hdr.PrimCount == 0 && hdr.NodeCount != 1:
		return nil, fmt.Errorf("bvhio: %d nodes for an empty tree", hdr.NodeCount)
	case hdr.PrimCount > 0 && (hdr.NodeCount == 0 || hdr.NodeCount > 2*hdr.PrimCount-1):
		return nil, fmt.Errorf("bvhio: implausible counts: %d nodes, %d primitives", hdr.NodeCount, hdr.PrimCount)
	}

	// Grow while reading instead of allocating the full counts up front,
	// so a truncated stream fails cheaply.
	nodes := make([]bvh.Node, 0, min(hdr.NodeCount, readChunk))
	for i := uint32(0); i < hdr.NodeCount; i++ {
		var dn diskNode
		if err := binary.Read(r, binary.LittleEndian, &dn); err != nil {
			return nil, fmt.Errorf("bvhio: read node %d: %w", i, err)
		}
		nodes = append(nodes, bvh.Node{
			Bounds: bvh.AABB{Min: mgl64.Vec3(dn.Min), Max: mgl64.Vec3(dn.Max)},
			Exit:   dn.Exit,
			First:  dn.First,
			Count:  dn.Count,
			Axis:   dn.Axis,
		})
	}

	perm := make([]int32, 0, min(hdr.PrimCount, readChunk))
	chunk := make([]int32, readChunk)
	for remaining := hdr.PrimCount; remaining > 0; {
		c := min(remaining, readChunk)
		if err := binary.Read(r, binary.LittleEndian, chunk[:c]); err != nil {
			return nil, fmt.Errorf("bvhio: read permutation: %w", err)
		}
		perm = append(perm, chunk[:c]...)
		remaining -= c
	}

	return bvh.Restore(nodes, perm)
}

// WriteTreeFile persists a tree to a file
func WriteTreeFile(path string, t *bvh.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteTree(f, t); err != nil {
		return err
	}
	return f.Close()
}

// ReadTreeFile loads a tree persisted by WriteTreeFile
func ReadTreeFile(path string) (*bvh.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTree(f)
}
