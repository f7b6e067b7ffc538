package diffuse

import (
	"fmt"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/raster"
)

// SeedsFromMaskContours collects the raveled index of every foreground
// (mask == 1) voxel that touches background within its own Z slice, using
// 4-connectivity in X/Y. This supplements spec §4.8, whose seed list is an
// opaque caller-supplied input, with the actual seeding strategy from
// original_source's DiffusionCorr: cv2.findContours per slice, walked here
// as a direct boundary scan since this pack carries no OpenCV-equivalent
// contour finder.
func SeedsFromMaskContours(mask []uint8, shape dvid.Point3d) []int {
	z, y, x := shape[0], shape[1], shape[2]
	strides := shape.Strides()
	var seeds []int

	for iz := int64(0); iz < z; iz++ {
		zBase := iz * strides[0]
		for iy := int64(0); iy < y; iy++ {
			rowBase := zBase + iy*strides[1]
			for ix := int64(0); ix < x; ix++ {
				idx := rowBase + ix
				if mask[idx] != 1 {
					continue
				}
				if isBoundary(mask, rowBase, zBase, strides, iy, ix, y, x) {
					seeds = append(seeds, int(idx))
				}
			}
		}
	}
	return seeds
}

func isBoundary(mask []uint8, rowBase, zBase int64, strides [3]int64, iy, ix, y, x int64) bool {
	idx := rowBase + ix
	if ix == 0 || ix == x-1 || iy == 0 || iy == y-1 {
		return true
	}
	if mask[idx-1] != 1 || mask[idx+1] != 1 {
		return true
	}
	if mask[idx-strides[1]] != 1 || mask[idx+strides[1]] != 1 {
		return true
	}
	return false
}

// PadForDiffusion writes a copy of src into a new volume at path with a
// 1-voxel halo of zero border on every face, matching the original's "pad
// image by 1 pixel in each dimension for heap" step: it lets the shared
// neighborhood structure step outward from any true edge voxel without
// leaving the array, without requiring per-voxel bounds checks in the
// caller's seed or mask construction.
func PadForDiffusion(src *raster.Volume, path string) (*raster.Volume, error) {
	shape := src.Descriptor().Shape
	padded := dvid.Point3d{shape[0] + 2, shape[1] + 2, shape[2] + 2}
	desc := raster.Descriptor{Filename: path, Shape: padded, ElemType: src.Descriptor().ElemType}

	dst, err := raster.Open(desc, raster.Create)
	if err != nil {
		return nil, fmt.Errorf("pad-for-diffusion: %w", err)
	}

	switch src.Descriptor().ElemType {
	case raster.U8:
		copyPadded(raster.As[uint8](src), raster.As[uint8](dst), shape, padded)
	case raster.U16:
		copyPadded(raster.As[uint16](src), raster.As[uint16](dst), shape, padded)
	case raster.U32:
		copyPadded(raster.As[uint32](src), raster.As[uint32](dst), shape, padded)
	case raster.I32:
		copyPadded(raster.As[int32](src), raster.As[int32](dst), shape, padded)
	case raster.F32:
		copyPadded(raster.As[float32](src), raster.As[float32](dst), shape, padded)
	case raster.F64:
		copyPadded(raster.As[float64](src), raster.As[float64](dst), shape, padded)
	default:
		dst.Close()
		return nil, fmt.Errorf("%w: pad-for-diffusion type %s", dvid.ErrTypeMismatch, src.Descriptor().ElemType)
	}
	return dst, nil
}

func copyPadded[T any](src, dst []T, shape, padded dvid.Point3d) {
	srcStrides := shape.Strides()
	dstStrides := padded.Strides()
	for iz := int64(0); iz < shape[0]; iz++ {
		for iy := int64(0); iy < shape[1]; iy++ {
			srcBase := iz*srcStrides[0] + iy*srcStrides[1]
			dstBase := (iz+1)*dstStrides[0] + (iy+1)*dstStrides[1] + 1
			copy(dst[dstBase:dstBase+shape[2]], src[srcBase:srcBase+shape[2]])
		}
	}
}
