package raster

import "github.com/gandhilab/volumecore/dvid"

// Descriptor is the wire form of a raster volume handle, consumed at every
// filter boundary per the external interface: filename, byte offset of the
// first element, shape, and element type.
type Descriptor struct {
	Filename string       `json:"filename"`
	Offset   uint64       `json:"offset"`
	Shape    dvid.Point3d `json:"shape"` // (Z, Y, X)
	ElemType ElemType     `json:"element_type"`
}

// Size returns Z*Y*X, the number of voxels described.
func (d Descriptor) Size() uint64 {
	return uint64(d.Shape[0] * d.Shape[1] * d.Shape[2])
}

// CompatibleWith reports whether two descriptors have identical shape, per
// spec.md's definition of "compatible" volumes.
func (d Descriptor) CompatibleWith(other Descriptor) bool {
	return d.Shape == other.Shape
}

// ByteLength returns the total span in bytes of the raster this descriptor
// names.
func (d Descriptor) ByteLength() int64 {
	return int64(d.Size()) * d.ElemType.Bytes()
}
