package bvhio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mtavis/go-bvh/pkg/bvh"
)

var boxMagic = [4]byte{'G', 'B', 'O', 'X'}

const boxVersion uint16 = 1

// boxHeader prefixes a serialized box list
type boxHeader struct {
	Magic   [4]byte
	Version uint16
	Count   uint32
}

// WriteBoxes serializes a flat list of bounding boxes. The box list is the
// fixture format the CLI feeds the builder with, standing in for whatever
// primitive collection a real consumer owns.
func WriteBoxes(w io.Writer, boxes []bvh.AABB) error {
	hdr := boxHeader{Magic: boxMagic, Version: boxVersion, Count: uint32(len(boxes))}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("bvhio: write box header: %w", err)
	}
	for i := range boxes {
		corners := [6]float64{
			boxes[i].Min[0], boxes[i].Min[1], boxes[i].Min[2],
			boxes[i].Max[0], boxes[i].Max[1], boxes[i].Max[2],
		}
		if err := binary.Write(w, binary.LittleEndian, corners); err != nil {
			return fmt.Errorf("bvhio: write box %d: %w", i, err)
		}
	}
	return nil
}

// ReadBoxes deserializes a box list written by WriteBoxes
func ReadBoxes(r io.Reader) ([]bvh.AABB, error) {
	var hdr boxHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("bvhio: read box header: %w", err)
	}
	if hdr.Magic != boxMagic {
		return nil, fmt.Errorf("bvhio: bad magic %q", hdr.Magic[:])
	}
	if hdr.Version != boxVersion {
		return nil, fmt.Errorf("bvhio: unsupported version %d", hdr.Version)
	}
	if hdr.Count > maxHeaderCount {
		return nil, fmt.Errorf("bvhio: implausible box count %d", hdr.Count)
	}

	boxes := make([]bvh.AABB, 0, min(hdr.Count, readChunk))
	for i := uint32(0); i < hdr.Count; i++ {
		var corners [6]float64
		if err := binary.Read(r, binary.LittleEndian, &corners); err != nil {
			return nil, fmt.Errorf("bvhio: read box %d: %w", i, err)
		}
		boxes = append(boxes, bvh.AABB{
			Min: mgl64.Vec3{corners[0], corners[1], corners[2]},
			Max: mgl64.Vec3{corners[3], corners[4], corners[5]},
		})
	}
	return boxes, nil
}

// WriteBoxesFile persists a box list to a file
func WriteBoxesFile(path string, boxes []bvh.AABB) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteBoxes(f, boxes); err != nil {
		return err
	}
	return f.Close()
}

// ReadBoxesFile loads a box list persisted by WriteBoxesFile
func ReadBoxesFile(path string) ([]bvh.AABB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBoxes(f)
}
