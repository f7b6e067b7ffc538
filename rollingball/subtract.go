package rollingball

import (
	"fmt"
	"math"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/raster"
)

// Options configures one background-subtraction run.
type Options struct {
	// Radius is the requested rolling-ball radius in pixels.
	Radius float64
	// PreBlur applies a 3x3 mean blur to each plane before rolling the
	// ball beneath it.
	PreBlur bool
}

type numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~int32 | ~float32 | ~float64
}

// Subtract rolls a ball of the requested radius beneath every Z slice of
// image and writes image minus the resulting background, clamped to
// [0, MAX(inputType)], into out. image and out must share element type
// and shape.
func Subtract(image, out *raster.Volume, opts Options) error {
	timedLog := dvid.NewTimeLog()

	if !image.Descriptor().CompatibleWith(out.Descriptor()) {
		return fmt.Errorf("%w: rolling-ball image %v vs out %v", dvid.ErrShapeMismatch, image.Descriptor().Shape, out.Descriptor().Shape)
	}
	it, ot := image.Descriptor().ElemType, out.Descriptor().ElemType
	if it != ot {
		return fmt.Errorf("%w: rolling-ball image type %s != out type %s", dvid.ErrTypeMismatch, it, ot)
	}
	shape := image.Descriptor().Shape
	ball := BuildBall(opts.Radius)

	var err error
	switch it {
	case raster.U8:
		err = subtractTyped(raster.As[uint8](image), raster.As[uint8](out), shape, ball, opts, clampU8)
	case raster.U16:
		err = subtractTyped(raster.As[uint16](image), raster.As[uint16](out), shape, ball, opts, clampU16)
	case raster.U32:
		err = subtractTyped(raster.As[uint32](image), raster.As[uint32](out), shape, ball, opts, clampU32)
	case raster.I32:
		err = subtractTyped(raster.As[int32](image), raster.As[int32](out), shape, ball, opts, clampI32)
	case raster.F32:
		err = subtractTyped(raster.As[float32](image), raster.As[float32](out), shape, ball, opts, clampF32)
	case raster.F64:
		err = subtractTyped(raster.As[float64](image), raster.As[float64](out), shape, ball, opts, clampF64)
	default:
		return fmt.Errorf("%w: rolling-ball type %s", dvid.ErrTypeMismatch, it)
	}
	if err != nil {
		return err
	}
	timedLog.Infof("rolling-ball subtraction of %d slices, radius %.1f\n", shape[0], opts.Radius)
	return nil
}

func subtractTyped[T numeric](image, out []T, shape [3]int64, ball Ball, opts Options, clamp func(float64) T) error {
	h, w := int(shape[1]), int(shape[2])
	planeSize := h * w
	nz := int(shape[0])

	for z := 0; z < nz; z++ {
		base := z * planeSize
		plane := make([]float64, planeSize)
		for i := 0; i < planeSize; i++ {
			plane[i] = float64(image[base+i])
		}

		working := plane
		if opts.PreBlur {
			working = blur3x3(plane, h, w)
		}
		bg := computeBackground(working, h, w, ball)

		for i := 0; i < planeSize; i++ {
			v := plane[i] - math.Floor(bg[i]+0.5)
			out[base+i] = clamp(v)
		}
	}
	return nil
}

func computeBackground(plane []float64, h, w int, ball Ball) []float64 {
	if ball.Shrink <= 1 {
		return Roll(plane, h, w, ball)
	}
	shrunk, sh, sw := Shrink(plane, h, w, ball.Shrink)
	rolled := Roll(shrunk, sh, sw, ball)
	return Enlarge(rolled, sh, sw, h, w, ball.Shrink)
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampU16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

func clampU32(v float64) uint32 {
	if v < 0 {
		return 0
	}
	if v > 4294967295 {
		return 4294967295
	}
	return uint32(v)
}

func clampI32(v float64) int32 {
	if v < 0 {
		return 0
	}
	if v > 2147483647 {
		return 2147483647
	}
	return int32(v)
}

func clampF32(v float64) float32 {
	if v < 0 {
		return 0
	}
	return float32(v)
}

func clampF64(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
