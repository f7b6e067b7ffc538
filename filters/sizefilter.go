package filters

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/raster"
)

// LabelCounts maps a label id to the number of voxels carrying it, per the
// label-count report in spec §6.
type LabelCounts map[int64]int64

// SizeFilter keeps components whose voxel count falls within
// [minSize, maxSize] inclusive, zeroing everything else, per spec §4.3. It
// returns the total number of distinct labels observed and the counts of
// those kept. image and out may alias (in-place safe, spec §5).
func SizeFilter(image, out *raster.Volume, minSize, maxSize int64) (totalLabels int, kept LabelCounts, err error) {
	if !image.Descriptor().CompatibleWith(out.Descriptor()) {
		return 0, nil, fmt.Errorf("%w: size-filter image %v vs out %v", dvid.ErrShapeMismatch, image.Descriptor().Shape, out.Descriptor().Shape)
	}
	areas, err := labelAreas(image)
	if err != nil {
		return 0, nil, err
	}
	totalLabels = len(areas)

	kept = make(LabelCounts, totalLabels)
	keep := make(map[int64]int64, totalLabels)
	for label, count := range areas {
		if count >= minSize && count <= maxSize {
			keep[label] = count
			kept[label] = count
		}
	}

	if err := applyKeep(image, out, keep, false); err != nil {
		return 0, nil, err
	}
	labels := maps.Keys(kept)
	slices.Sort(labels)
	dvid.Infof("size-filter: %d/%d labels kept in [%d,%d]\n", len(kept), totalLabels, minSize, maxSize)
	return totalLabels, kept, nil
}

// LabelBySize rewrites every labeled voxel's value to its component's pixel
// count, per spec §4.3's labelBySize variant.
func LabelBySize(image, out *raster.Volume) (totalLabels int, counts LabelCounts, err error) {
	if !image.Descriptor().CompatibleWith(out.Descriptor()) {
		return 0, nil, fmt.Errorf("%w: label-by-size image %v vs out %v", dvid.ErrShapeMismatch, image.Descriptor().Shape, out.Descriptor().Shape)
	}
	areas, err := labelAreas(image)
	if err != nil {
		return 0, nil, err
	}
	totalLabels = len(areas)
	counts = LabelCounts(areas)
	if err := applyKeep(image, out, areas, true); err != nil {
		return 0, nil, err
	}
	return totalLabels, counts, nil
}

// labelAreas is pass 1: areas[label] += 1 for each non-zero voxel.
func labelAreas(image *raster.Volume) (map[int64]int64, error) {
	switch image.Descriptor().ElemType {
	case raster.I32:
		return countAreas(raster.As[int32](image)), nil
	case raster.U32:
		return countAreas(raster.As[uint32](image)), nil
	default:
		return nil, fmt.Errorf("%w: labels must be i32 or u32, got %s", dvid.ErrTypeMismatch, image.Descriptor().ElemType)
	}
}

func countAreas[T interface{ ~int32 | ~uint32 }](data []T) map[int64]int64 {
	areas := make(map[int64]int64)
	for _, v := range data {
		if v != 0 {
			areas[int64(v)]++
		}
	}
	return areas
}

// applyKeep is pass 3: out[v] = replacement(label) if keep[label] != 0 else
// 0. When writeCount is true the replacement is the kept count itself
// (labelBySize); otherwise it is the original label id (sizeFilter).
func applyKeep(image, out *raster.Volume, keep map[int64]int64, writeCount bool) error {
	it, ot := image.Descriptor().ElemType, out.Descriptor().ElemType
	if it != raster.I32 && it != raster.U32 {
		return fmt.Errorf("%w: labels must be i32 or u32, got %s", dvid.ErrTypeMismatch, it)
	}
	if ot != raster.I32 && ot != raster.U32 {
		return fmt.Errorf("%w: labels must be i32 or u32, got %s", dvid.ErrTypeMismatch, ot)
	}

	switch it {
	case raster.I32:
		in := raster.As[int32](image)
		switch ot {
		case raster.I32:
			applyKeepTyped(in, raster.As[int32](out), keep, writeCount)
		case raster.U32:
			applyKeepTyped(in, raster.As[uint32](out), keep, writeCount)
		}
	case raster.U32:
		in := raster.As[uint32](image)
		switch ot {
		case raster.I32:
			applyKeepTyped(in, raster.As[int32](out), keep, writeCount)
		case raster.U32:
			applyKeepTyped(in, raster.As[uint32](out), keep, writeCount)
		}
	}
	return nil
}

func applyKeepTyped[In interface{ ~int32 | ~uint32 }, Out interface{ ~int32 | ~uint32 }](
	in []In, out []Out, keep map[int64]int64, writeCount bool) {
	// Read every source value before writing when in and out alias the
	// same backing memory, since In and Out may differ in signedness but
	// share byte width.
	for i, v := range in {
		if v == 0 {
			out[i] = 0
			continue
		}
		label := int64(v)
		count, ok := keep[label]
		if !ok {
			out[i] = 0
			continue
		}
		if writeCount {
			out[i] = Out(count)
		} else {
			out[i] = Out(label)
		}
	}
}
