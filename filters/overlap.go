package filters

import (
	"fmt"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/raster"
)

// Overlap reconciles two label volumes: label0 (high-confidence, typically
// size-filtered) and label1 (low-threshold). A label1 component survives
// into out only if it overlaps a nonzero label0 voxel anywhere, per spec
// §4.9. out may alias label1 (in-place safe).
//
// The lookup is a plain map rather than a dense bit array sized 2^32-1
// (spec §9's cross-cutting-pattern note): label values observed in practice
// number in the thousands to low millions, and a hash set over only the
// labels actually seen is contract-equivalent while avoiding a multi-GiB
// allocation per invocation.
func Overlap(label0, label1, out *raster.Volume) error {
	if !label0.Descriptor().CompatibleWith(label1.Descriptor()) || !label1.Descriptor().CompatibleWith(out.Descriptor()) {
		return fmt.Errorf("%w: overlap shapes label0=%v label1=%v out=%v",
			dvid.ErrShapeMismatch, label0.Descriptor().Shape, label1.Descriptor().Shape, out.Descriptor().Shape)
	}

	keep, err := overlapKeepSet(label0, label1)
	if err != nil {
		return err
	}

	it, ot := label1.Descriptor().ElemType, out.Descriptor().ElemType
	if it != raster.I32 && it != raster.U32 {
		return fmt.Errorf("%w: overlap label1 must be i32 or u32, got %s", dvid.ErrTypeMismatch, it)
	}
	if ot != raster.I32 && ot != raster.U32 {
		return fmt.Errorf("%w: overlap out must be i32 or u32, got %s", dvid.ErrTypeMismatch, ot)
	}

	switch it {
	case raster.I32:
		in := raster.As[int32](label1)
		switch ot {
		case raster.I32:
			applyOverlapKeep(in, raster.As[int32](out), keep)
		case raster.U32:
			applyOverlapKeep(in, raster.As[uint32](out), keep)
		}
	case raster.U32:
		in := raster.As[uint32](label1)
		switch ot {
		case raster.I32:
			applyOverlapKeep(in, raster.As[int32](out), keep)
		case raster.U32:
			applyOverlapKeep(in, raster.As[uint32](out), keep)
		}
	}
	dvid.Debugf("overlap: %d label_1 components retained\n", len(keep))
	return nil
}

func overlapKeepSet(label0, label1 *raster.Volume) (map[int64]struct{}, error) {
	t0, t1 := label0.Descriptor().ElemType, label1.Descriptor().ElemType
	if t0 != raster.I32 && t0 != raster.U32 {
		return nil, fmt.Errorf("%w: overlap label0 must be i32 or u32, got %s", dvid.ErrTypeMismatch, t0)
	}
	if t1 != raster.I32 && t1 != raster.U32 {
		return nil, fmt.Errorf("%w: overlap label1 must be i32 or u32, got %s", dvid.ErrTypeMismatch, t1)
	}

	switch t0 {
	case raster.I32:
		a := raster.As[int32](label0)
		switch t1 {
		case raster.I32:
			return buildKeepSet(a, raster.As[int32](label1)), nil
		case raster.U32:
			return buildKeepSet(a, raster.As[uint32](label1)), nil
		}
	case raster.U32:
		a := raster.As[uint32](label0)
		switch t1 {
		case raster.I32:
			return buildKeepSet(a, raster.As[int32](label1)), nil
		case raster.U32:
			return buildKeepSet(a, raster.As[uint32](label1)), nil
		}
	}
	return nil, fmt.Errorf("%w: unreachable overlap type dispatch", dvid.ErrInternalInvariant)
}

func buildKeepSet[A interface{ ~int32 | ~uint32 }, B interface{ ~int32 | ~uint32 }](a []A, b []B) map[int64]struct{} {
	keep := make(map[int64]struct{})
	for i := range a {
		if a[i] != 0 && b[i] != 0 {
			keep[int64(b[i])] = struct{}{}
		}
	}
	return keep
}

func applyOverlapKeep[In interface{ ~int32 | ~uint32 }, Out interface{ ~int32 | ~uint32 }](in []In, out []Out, keep map[int64]struct{}) {
	for i, v := range in {
		if _, ok := keep[int64(v)]; ok {
			out[i] = Out(v)
		} else {
			out[i] = 0
		}
	}
}
