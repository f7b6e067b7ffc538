package filters

import (
	"fmt"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/raster"
)

// SubtractBackgroundVolume subtracts a precomputed background volume from
// image, slice by slice, scaled by the ratio of the two volumes' overall
// means and clamped at zero. This is the mean-ratio variant supplemented
// from original_source's BackgroundSubtract (as distinct from the
// rolling-ball subtractor in package rollingball, which rolls its own
// background envelope rather than accepting one).
//
// ZShift, when non-zero, reads slice z of background from slice z+ZShift of
// the source background volume; out-of-range shifted slices are left as
// zero contribution, matching the original's try/except-continue.
func SubtractBackgroundVolume(image, background, out *raster.Volume, zShift int64) error {
	if !image.Descriptor().CompatibleWith(background.Descriptor()) || !image.Descriptor().CompatibleWith(out.Descriptor()) {
		return fmt.Errorf("%w: subtract-background-volume image %v background %v out %v",
			dvid.ErrShapeMismatch, image.Descriptor().Shape, background.Descriptor().Shape, out.Descriptor().Shape)
	}

	it, bt, ot := image.Descriptor().ElemType, background.Descriptor().ElemType, out.Descriptor().ElemType
	if it != ot {
		return fmt.Errorf("%w: subtract-background-volume image type %s != out type %s", dvid.ErrTypeMismatch, it, ot)
	}
	if it != bt {
		return fmt.Errorf("%w: subtract-background-volume image type %s != background type %s", dvid.ErrTypeMismatch, it, bt)
	}

	shape := image.Descriptor().Shape
	zSize := shape[1] * shape[2]

	switch it {
	case raster.U8:
		return subtractVolumeTyped(image, background, out, zSize, zShift, raster.As[uint8], func(v uint8) float64 { return float64(v) }, func(f float64) uint8 {
			if f < 0 {
				return 0
			}
			if f > 255 {
				return 255
			}
			return uint8(f)
		})
	case raster.U16:
		return subtractVolumeTyped(image, background, out, zSize, zShift, raster.As[uint16], func(v uint16) float64 { return float64(v) }, func(f float64) uint16 {
			if f < 0 {
				return 0
			}
			if f > 65535 {
				return 65535
			}
			return uint16(f)
		})
	case raster.F32:
		return subtractVolumeTyped(image, background, out, zSize, zShift, raster.As[float32], func(v float32) float64 { return float64(v) }, func(f float64) float32 {
			if f < 0 {
				return 0
			}
			return float32(f)
		})
	default:
		return fmt.Errorf("%w: subtract-background-volume type %s", dvid.ErrTypeMismatch, it)
	}
}

func subtractVolumeTyped[T interface {
	~uint8 | ~uint16 | ~float32
}](image, background, out *raster.Volume, zSize, zShift int64,
	as func(*raster.Volume) []T, toFloat func(T) float64, clamp func(float64) T) error {

	img := as(image)
	bkg := as(background)
	dst := as(out)

	var imgSum, bkgSum float64
	for _, v := range img {
		imgSum += toFloat(v)
	}
	for _, v := range bkg {
		bkgSum += toFloat(v)
	}
	if len(bkg) == 0 || bkgSum == 0 {
		copy(dst, img)
		return nil
	}
	ratio := (imgSum / float64(len(img))) / (bkgSum / float64(len(bkg)))

	nz := int64(len(img)) / zSize
	for z := int64(0); z < nz; z++ {
		srcZ := z + zShift
		start := z * zSize
		end := start + zSize
		if srcZ < 0 || srcZ >= nz {
			copy(dst[start:end], img[start:end])
			continue
		}
		bStart := srcZ * zSize
		for i := int64(0); i < zSize; i++ {
			sub := toFloat(img[start+i]) - toFloat(bkg[bStart+i])*ratio
			dst[start+i] = clamp(sub)
		}
	}
	return nil
}
