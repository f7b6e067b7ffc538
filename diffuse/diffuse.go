// Package diffuse implements the mask-constrained isotropic diffusion
// flooder (spec §4.8): seeds are set to full concentration and iteratively
// blended with their neighborhood mean, spreading outward from tissue
// boundaries until values fall below threshold. It is grounded in
// original_source's
// bq3d/image_filters/filters/diffusion_correction/diffuse.py, whose
// _diffuse Cython core drives the same shared priority-queue discipline as
// the watershed in package watershed.
package diffuse

import (
	"fmt"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/pqueue"
	"github.com/gandhilab/volumecore/raster"
)

// maskClaimed marks a voxel as pushed but not yet settled, an in-band
// "in queue" flag distinct from the 0 (background) and 1 (untouched
// tissue) states. Cleanup rewrites every maskClaimed entry back to 1
// before returning, per spec §4.8: the mark must not leak into the
// caller's mask.
const maskClaimed = 2

// Options configures one diffusion run.
type Options struct {
	// Threshold is the minimum accepted blended value; a candidate below
	// it is discarded rather than written or expanded from.
	Threshold float64
	// K scales the neighbor-mean contribution to the blended value.
	K float64
	// Iterations repeats the full flood this many times, each pass
	// reseeding the same seed list. Supplemented from the original's
	// iterations parameter; spec §4.8 describes a single pass
	// (Iterations == 1).
	Iterations int
}

// Run floods image (an f32 volume) from seeds along structure, wherever
// mask allows, per spec §4.8. mask entries must be 0 (background, already
// saturated), 1 (untouched tissue), or unused; Run uses 2 internally as a
// transient in-queue marker and restores it to 1 before returning.
func Run(image *raster.Volume, mask []uint8, seeds []int, structure []int, opts Options) error {
	if image.Descriptor().ElemType != raster.F32 {
		return fmt.Errorf("%w: diffuse image must be f32, got %s", dvid.ErrTypeMismatch, image.Descriptor().ElemType)
	}
	if int64(len(mask)) != image.Descriptor().Shape.Prod() {
		return fmt.Errorf("%w: diffuse mask has %d entries, volume has %d voxels", dvid.ErrShapeMismatch, len(mask), image.Descriptor().Shape.Prod())
	}

	img := raster.As[float32](image)

	// Concentration is assumed maximal outside tissue.
	for i, m := range mask {
		if m == 0 {
			img[i] = 1
		}
	}

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = 1
	}
	for i := 0; i < iterations; i++ {
		if err := runOnce(img, mask, seeds, structure, opts.Threshold, opts.K); err != nil {
			return err
		}
	}
	return nil
}

func runOnce(img []float32, mask []uint8, seeds []int, structure []int, threshold, k float64) error {
	n := len(img)
	q := pqueue.NewQueue(len(seeds) * 4)

	for _, s := range seeds {
		if s < 0 || s >= n {
			return fmt.Errorf("%w: diffuse seed %d, volume has %d voxels", dvid.ErrSeedOutOfRange, s, n)
		}
		img[s] = 1
		q.Push(pqueue.Heapitem{Value: 1, Age: 0, Index: s, Source: s})
	}

	var age int64
	for q.Len() > 0 {
		elem := q.Pop()

		var sum float64
		for _, off := range structure {
			nb := elem.Index + off
			if nb < 0 || nb >= n {
				continue
			}
			sum += float64(img[nb])
		}
		mean := sum / float64(len(structure))
		value := (mean*k + float64(img[elem.Index])) / 2

		if value < threshold {
			continue
		}
		img[elem.Index] = float32(value)

		for _, off := range structure {
			nb := elem.Index + off
			if nb < 0 || nb >= n {
				continue
			}
			if mask[nb] != 1 {
				continue
			}
			mask[nb] = maskClaimed
			age++
			q.Push(pqueue.Heapitem{Value: value, Age: age, Index: nb, Source: elem.Source})
		}
	}

	for i, m := range mask {
		if m == maskClaimed {
			mask[i] = 1
		}
	}
	return nil
}
