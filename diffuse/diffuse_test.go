package diffuse

import (
	"path/filepath"
	"testing"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/neighbor"
	"github.com/gandhilab/volumecore/raster"
)

func newF32Volume(t *testing.T, name string, shape dvid.Point3d) *raster.Volume {
	t.Helper()
	desc := raster.Descriptor{Filename: filepath.Join(t.TempDir(), name), Shape: shape, ElemType: raster.F32}
	v, err := raster.Open(desc, raster.Create)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

// TestRunMonotonicDecay checks spec §8's diffusion invariant: after
// flooding, the maximum image value equals the seed value (1), and no mask
// entry is left in the claimed state.
func TestRunMonotonicDecay(t *testing.T) {
	shape := dvid.Point3d{1, 1, 7}
	img := newF32Volume(t, "img.raw", shape)
	mask := []uint8{1, 1, 1, 1, 1, 1, 1}
	structure := neighbor.Build(shape, neighbor.Faces).Offsets

	if err := Run(img, mask, []int{3}, structure, Options{Threshold: 0.01, K: 1}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data := raster.As[float32](img)
	var max float32
	for _, v := range data {
		if v > max {
			max = v
		}
	}
	if max != 1 {
		t.Errorf("max value = %v, want 1 (data=%v)", max, data)
	}
	for i, m := range mask {
		if m == maskClaimed {
			t.Errorf("mask[%d] left in claimed state after cleanup", i)
		}
	}
}

func TestRunRejectsNonF32(t *testing.T) {
	shape := dvid.Point3d{2, 1, 1}
	desc := raster.Descriptor{Filename: filepath.Join(t.TempDir(), "img.raw"), Shape: shape, ElemType: raster.U8}
	img, err := raster.Open(desc, raster.Create)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer img.Close()

	err = Run(img, []uint8{1, 1}, []int{0}, []int{1, -1}, Options{Threshold: 0, K: 1})
	if err == nil {
		t.Fatal("expected a type error for a non-f32 image")
	}
}

func TestSeedsFromMaskContours(t *testing.T) {
	shape := dvid.Point3d{1, 3, 3}
	mask := []uint8{
		0, 1, 0,
		1, 1, 1,
		0, 1, 0,
	}
	seeds := SeedsFromMaskContours(mask, shape)
	if len(seeds) == 0 {
		t.Fatal("expected at least one boundary seed")
	}
	// The center voxel (index 4) is surrounded on all four sides by
	// foreground, so it is not a boundary voxel.
	for _, s := range seeds {
		if s == 4 {
			t.Errorf("center voxel should not be classified as a boundary seed")
		}
	}
}

func TestPadForDiffusion(t *testing.T) {
	shape := dvid.Point3d{2, 2, 2}
	src := newF32Volume(t, "src.raw", shape)
	data := raster.As[float32](src)
	for i := range data {
		data[i] = float32(i + 1)
	}

	dst, err := PadForDiffusion(src, filepath.Join(t.TempDir(), "padded.raw"))
	if err != nil {
		t.Fatalf("PadForDiffusion: %v", err)
	}
	defer dst.Close()

	if dst.Descriptor().Shape != (dvid.Point3d{4, 4, 4}) {
		t.Fatalf("padded shape = %v, want (4,4,4)", dst.Descriptor().Shape)
	}
	padded := raster.As[float32](dst)
	strides := dst.Descriptor().Shape.Strides()
	center := 1*strides[0] + 1*strides[1] + 1
	if padded[center] != 1 {
		t.Errorf("padded[interior origin] = %v, want 1", padded[center])
	}
	if padded[0] != 0 {
		t.Errorf("padded border voxel = %v, want 0", padded[0])
	}
}
