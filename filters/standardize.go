package filters

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/raster"
)

// Standardize applies population (I - mean) / std to image, writing the
// result to out as f32, per spec §4.2. out must be F32 and shape-compatible
// with image. Pass 3 (the write) is optionally data-parallel across
// independent Z-slabs, per spec §5.
func Standardize(image, out *raster.Volume) error {
	if !image.Descriptor().CompatibleWith(out.Descriptor()) {
		return fmt.Errorf("%w: standardize image %v vs out %v", dvid.ErrShapeMismatch, image.Descriptor().Shape, out.Descriptor().Shape)
	}
	if out.Descriptor().ElemType != raster.F32 {
		return fmt.Errorf("%w: standardize output must be f32, got %s", dvid.ErrTypeMismatch, out.Descriptor().ElemType)
	}

	switch image.Descriptor().ElemType {
	case raster.U8:
		return standardizeTyped(raster.As[uint8](image), raster.As[float32](out), image.Descriptor().Shape)
	case raster.U16:
		return standardizeTyped(raster.As[uint16](image), raster.As[float32](out), image.Descriptor().Shape)
	case raster.U32:
		return standardizeTyped(raster.As[uint32](image), raster.As[float32](out), image.Descriptor().Shape)
	case raster.I32:
		return standardizeTyped(raster.As[int32](image), raster.As[float32](out), image.Descriptor().Shape)
	case raster.F32:
		return standardizeTyped(raster.As[float32](image), raster.As[float32](out), image.Descriptor().Shape)
	case raster.F64:
		return standardizeTyped(raster.As[float64](image), raster.As[float32](out), image.Descriptor().Shape)
	default:
		return fmt.Errorf("%w: standardize input type %s", dvid.ErrTypeMismatch, image.Descriptor().ElemType)
	}
}

func standardizeTyped[T interface {
	~uint8 | ~uint16 | ~uint32 | ~int32 | ~float32 | ~float64
}](in []T, out []float32, shape [3]int64) error {
	n := float64(len(in))
	if n == 0 {
		return nil
	}

	// Pass 1: accumulate sum, mean = sum / N.
	var sum float64
	for _, x := range in {
		sum += float64(x)
	}
	mean := sum / n

	// Pass 2: accumulate sum of squared deviations, std = sqrt(sum / N).
	var sqSum float64
	for _, x := range in {
		d := float64(x) - mean
		sqSum += d * d
	}
	std := math.Sqrt(sqSum / n)
	if std == 0 {
		std = 1
	}

	// Pass 3: write (x - mean) / std as f32, optionally parallel over
	// independent Z-slabs.
	zSize := shape[1] * shape[2]
	if zSize <= 0 || shape[0] <= 1 {
		writeStandardized(in, out, mean, std, 0, len(in))
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if int64(workers) > shape[0] {
		workers = int(shape[0])
	}
	slabsPerWorker := (shape[0] + int64(workers) - 1) / int64(workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		zStart := int64(w) * slabsPerWorker
		zEnd := zStart + slabsPerWorker
		if zEnd > shape[0] {
			zEnd = shape[0]
		}
		if zStart >= zEnd {
			continue
		}
		start := int(zStart * zSize)
		end := int(zEnd * zSize)
		g.Go(func() error {
			writeStandardized(in, out, mean, std, start, end)
			return nil
		})
	}
	return g.Wait()
}

func writeStandardized[T interface {
	~uint8 | ~uint16 | ~uint32 | ~int32 | ~float32 | ~float64
}](in []T, out []float32, mean, std float64, start, end int) {
	for i := start; i < end; i++ {
		out[i] = float32((float64(in[i]) - mean) / std)
	}
}
