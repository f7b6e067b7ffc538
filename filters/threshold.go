// Package filters implements the elementwise and label-size filters that
// glue the core kernels together: threshold, standardize, min-threshold,
// increment-nonzero, nonzero-coordinate extraction, the size filter /
// label-by-size pair, and the two-threshold overlap reconciler (spec §4.2,
// §4.3, §4.9).
package filters

import (
	"fmt"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/raster"
)

// maxOf returns MAX(out_type) for the threshold formula, as a T: the largest
// representable value for the integer types, and 1 for f32 and f64.
func maxOf[T interface {
	~uint8 | ~uint16 | ~uint32 | ~int32 | ~float32 | ~float64
}]() T {
	var v T
	switch any(v).(type) {
	case uint8:
		var m uint8 = 255
		return T(m)
	case uint16:
		var m uint16 = 65535
		return T(m)
	case uint32:
		var m uint32 = 4294967295
		return T(m)
	case int32:
		var m int32 = 2147483647
		return T(m)
	case float32, float64:
		var m float64 = 1
		return T(m)
	}
	return v
}

// thresholdTyped applies out[i] = (in[i] < v) ? 0 : MAX(Out) for every
// voxel, per spec §4.2.
func thresholdTyped[In, Out interface {
	~uint8 | ~uint16 | ~uint32 | ~int32 | ~float32 | ~float64
}](in []In, out []Out, v float64) {
	max := maxOf[Out]()
	for i, x := range in {
		if float64(x) < v {
			out[i] = 0
		} else {
			out[i] = max
		}
	}
}

// Threshold streams image and writes out[i] = (image[i] < v) ? 0 :
// MAX(out_type), dispatching across the fused element-type Cartesian
// product per spec §4.2. image and out must be shape-compatible.
func Threshold(image, out *raster.Volume, v float64) error {
	if !image.Descriptor().CompatibleWith(out.Descriptor()) {
		return fmt.Errorf("%w: threshold image %v vs out %v", dvid.ErrShapeMismatch, image.Descriptor().Shape, out.Descriptor().Shape)
	}
	dvid.Debugf("threshold: v=%v image=%s -> out=%s\n", v, image.Descriptor().Filename, out.Descriptor().Filename)

	it, ot := image.Descriptor().ElemType, out.Descriptor().ElemType
	switch it {
	case raster.U8:
		in := raster.As[uint8](image)
		dispatchThresholdOut(in, out, ot, v)
	case raster.U16:
		in := raster.As[uint16](image)
		dispatchThresholdOut(in, out, ot, v)
	case raster.U32:
		in := raster.As[uint32](image)
		dispatchThresholdOut(in, out, ot, v)
	case raster.I32:
		in := raster.As[int32](image)
		dispatchThresholdOut(in, out, ot, v)
	case raster.F32:
		in := raster.As[float32](image)
		dispatchThresholdOut(in, out, ot, v)
	case raster.F64:
		in := raster.As[float64](image)
		dispatchThresholdOut(in, out, ot, v)
	default:
		return fmt.Errorf("%w: threshold input type %s", dvid.ErrTypeMismatch, it)
	}
	return nil
}

func dispatchThresholdOut[In interface {
	~uint8 | ~uint16 | ~uint32 | ~int32 | ~float32 | ~float64
}](in []In, out *raster.Volume, ot raster.ElemType, v float64) {
	switch ot {
	case raster.U8:
		thresholdTyped(in, raster.As[uint8](out), v)
	case raster.U16:
		thresholdTyped(in, raster.As[uint16](out), v)
	case raster.U32:
		thresholdTyped(in, raster.As[uint32](out), v)
	case raster.I32:
		thresholdTyped(in, raster.As[int32](out), v)
	case raster.F32:
		thresholdTyped(in, raster.As[float32](out), v)
	case raster.F64:
		thresholdTyped(in, raster.As[float64](out), v)
	}
}

// MinThreshold zeroes voxels below v in place; voxels at or above v are
// untouched, per spec §4.2 "min-threshold in place".
func MinThreshold(image *raster.Volume, v float64) error {
	switch image.Descriptor().ElemType {
	case raster.U8:
		minThresholdTyped(raster.As[uint8](image), v)
	case raster.U16:
		minThresholdTyped(raster.As[uint16](image), v)
	case raster.U32:
		minThresholdTyped(raster.As[uint32](image), v)
	case raster.I32:
		minThresholdTyped(raster.As[int32](image), v)
	case raster.F32:
		minThresholdTyped(raster.As[float32](image), v)
	case raster.F64:
		minThresholdTyped(raster.As[float64](image), v)
	default:
		return fmt.Errorf("%w: min-threshold type %s", dvid.ErrTypeMismatch, image.Descriptor().ElemType)
	}
	return nil
}

func minThresholdTyped[T interface {
	~uint8 | ~uint16 | ~uint32 | ~int32 | ~float32 | ~float64
}](data []T, v float64) {
	for i, x := range data {
		if float64(x) < v {
			data[i] = 0
		}
	}
}

// IncrementNonzero adds delta to every non-zero voxel; zeros are untouched,
// per spec §4.2.
func IncrementNonzero(image *raster.Volume, delta float64) error {
	switch image.Descriptor().ElemType {
	case raster.U8:
		incrementNonzeroTyped(raster.As[uint8](image), delta)
	case raster.U16:
		incrementNonzeroTyped(raster.As[uint16](image), delta)
	case raster.U32:
		incrementNonzeroTyped(raster.As[uint32](image), delta)
	case raster.I32:
		incrementNonzeroTyped(raster.As[int32](image), delta)
	case raster.F32:
		incrementNonzeroTyped(raster.As[float32](image), delta)
	case raster.F64:
		incrementNonzeroTyped(raster.As[float64](image), delta)
	default:
		return fmt.Errorf("%w: increment-nonzero type %s", dvid.ErrTypeMismatch, image.Descriptor().ElemType)
	}
	return nil
}

func incrementNonzeroTyped[T interface {
	~uint8 | ~uint16 | ~uint32 | ~int32 | ~float32 | ~float64
}](data []T, delta float64) {
	for i, x := range data {
		if x != 0 {
			data[i] = T(float64(x) + delta)
		}
	}
}
