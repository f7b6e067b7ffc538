package filters

import (
	"path/filepath"
	"testing"

	"github.com/gandhilab/volumecore/raster"
)

func newVolume(t *testing.T, name string, shape [3]int64, et raster.ElemType) *raster.Volume {
	t.Helper()
	desc := raster.Descriptor{Filename: filepath.Join(t.TempDir(), name), Shape: shape, ElemType: et}
	v, err := raster.Open(desc, raster.Create)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

// TestThresholdExample reproduces spec §8's 2x2x2 threshold scenario:
// [[[0,1],[2,3]],[[4,5],[6,7]]] with v=4 against a u8 output produces
// [[[0,0],[0,0]],[[255,255],[255,255]]].
func TestThresholdExample(t *testing.T) {
	shape := [3]int64{2, 2, 2}
	img := newVolume(t, "img.raw", shape, raster.U8)
	out := newVolume(t, "out.raw", shape, raster.U8)

	copy(raster.As[uint8](img), []uint8{0, 1, 2, 3, 4, 5, 6, 7})
	if err := Threshold(img, out, 4); err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	want := []uint8{0, 0, 0, 0, 255, 255, 255, 255}
	got := raster.As[uint8](out)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("out[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestThresholdBijective(t *testing.T) {
	shape := [3]int64{1, 1, 4}
	img := newVolume(t, "img.raw", shape, raster.U16)
	out := newVolume(t, "out.raw", shape, raster.U16)
	copy(raster.As[uint16](img), []uint16{10, 20, 30, 40})

	if err := Threshold(img, out, 25); err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	in := raster.As[uint16](img)
	got := raster.As[uint16](out)
	for i, v := range got {
		if v != 0 && v != 65535 {
			t.Errorf("out[%d] = %d, want 0 or MAX", i, v)
		}
		if (v == 0) != (in[i] < 25) {
			t.Errorf("out[%d] = %d for input %d: want 0 exactly when input < 25", i, v, in[i])
		}
	}
}

func TestMinThreshold(t *testing.T) {
	shape := [3]int64{1, 1, 4}
	img := newVolume(t, "img.raw", shape, raster.U8)
	copy(raster.As[uint8](img), []uint8{1, 5, 10, 2})

	if err := MinThreshold(img, 5); err != nil {
		t.Fatalf("MinThreshold: %v", err)
	}
	want := []uint8{0, 5, 10, 0}
	got := raster.As[uint8](img)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("img[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestIncrementNonzero(t *testing.T) {
	shape := [3]int64{1, 1, 4}
	img := newVolume(t, "img.raw", shape, raster.U8)
	copy(raster.As[uint8](img), []uint8{0, 5, 0, 10})

	if err := IncrementNonzero(img, 2); err != nil {
		t.Fatalf("IncrementNonzero: %v", err)
	}
	want := []uint8{0, 7, 0, 12}
	got := raster.As[uint8](img)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("img[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestStandardizeMoments(t *testing.T) {
	shape := [3]int64{1, 2, 2}
	img := newVolume(t, "img.raw", shape, raster.U8)
	out := newVolume(t, "out.raw", shape, raster.F32)
	copy(raster.As[uint8](img), []uint8{2, 4, 4, 8})

	if err := Standardize(img, out); err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	got := raster.As[float32](out)
	var sum, sumSq float64
	for _, v := range got {
		sum += float64(v)
		sumSq += float64(v) * float64(v)
	}
	n := float64(len(got))
	mean := sum / n
	if mean > 1e-3 || mean < -1e-3 {
		t.Errorf("standardized mean = %v, want ~0", mean)
	}
	variance := sumSq/n - mean*mean
	if variance < 0.9 || variance > 1.1 {
		t.Errorf("standardized variance = %v, want ~1", variance)
	}
}

func TestSizeFilterExample(t *testing.T) {
	shape := [3]int64{1, 1, 6}
	img := newVolume(t, "img.raw", shape, raster.I32)
	out := newVolume(t, "out.raw", shape, raster.I32)
	// label 1 has 4 voxels, label 2 has 2 voxels.
	copy(raster.As[int32](img), []int32{1, 1, 1, 1, 2, 2})

	total, kept, err := SizeFilter(img, out, 3, 10)
	if err != nil {
		t.Fatalf("SizeFilter: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if _, ok := kept[1]; !ok {
		t.Error("label 1 (size 4) should be kept")
	}
	if _, ok := kept[2]; ok {
		t.Error("label 2 (size 2) should be dropped")
	}
	got := raster.As[int32](out)
	want := []int32{1, 1, 1, 1, 0, 0}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("out[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestSizeFilterIdempotent(t *testing.T) {
	shape := [3]int64{1, 1, 6}
	img := newVolume(t, "img.raw", shape, raster.I32)
	out1 := newVolume(t, "out1.raw", shape, raster.I32)
	out2 := newVolume(t, "out2.raw", shape, raster.I32)
	copy(raster.As[int32](img), []int32{1, 1, 1, 1, 2, 2})

	if _, _, err := SizeFilter(img, out1, 3, 10); err != nil {
		t.Fatalf("first SizeFilter: %v", err)
	}
	if _, _, err := SizeFilter(out1, out2, 3, 10); err != nil {
		t.Fatalf("second SizeFilter: %v", err)
	}
	a, b := raster.As[int32](out1), raster.As[int32](out2)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("out1[%d]=%d != out2[%d]=%d, size-filter should be idempotent", i, a[i], i, b[i])
		}
	}
}

func TestLabelBySize(t *testing.T) {
	shape := [3]int64{1, 1, 4}
	img := newVolume(t, "img.raw", shape, raster.I32)
	out := newVolume(t, "out.raw", shape, raster.I32)
	copy(raster.As[int32](img), []int32{7, 7, 7, 0})

	_, counts, err := LabelBySize(img, out)
	if err != nil {
		t.Fatalf("LabelBySize: %v", err)
	}
	if counts[7] != 3 {
		t.Fatalf("counts[7] = %d, want 3", counts[7])
	}
	got := raster.As[int32](out)
	want := []int32{3, 3, 3, 0}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("out[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestNonzeroCoordsRoundTrip(t *testing.T) {
	shape := [3]int64{1, 1, 6}
	img := newVolume(t, "img.raw", shape, raster.U8)
	copy(raster.As[uint8](img), []uint8{0, 5, 0, 0, 9, 0})

	path := filepath.Join(t.TempDir(), "coords.bin")
	cf, err := NonzeroCoords(img, path)
	if err != nil {
		t.Fatalf("NonzeroCoords: %v", err)
	}
	if cf.Count != 2 {
		t.Fatalf("Count = %d, want 2", cf.Count)
	}

	coords, err := ReadCoords(path)
	if err != nil {
		t.Fatalf("ReadCoords: %v", err)
	}
	if len(coords) != 2 || coords[0] != 1 || coords[1] != 4 {
		t.Fatalf("coords = %v, want [1 4]", coords)
	}

	rebuilt := newVolume(t, "rebuilt.raw", shape, raster.U8)
	if err := RebuildFromCoords(coords, rebuilt); err != nil {
		t.Fatalf("RebuildFromCoords: %v", err)
	}
	want := []uint8{0, 1, 0, 0, 1, 0}
	got := raster.As[uint8](rebuilt)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("rebuilt[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestOverlapExample(t *testing.T) {
	shape := [3]int64{1, 1, 4}
	label0 := newVolume(t, "label0.raw", shape, raster.I32)
	label1 := newVolume(t, "label1.raw", shape, raster.I32)
	out := newVolume(t, "out.raw", shape, raster.I32)

	copy(raster.As[int32](label0), []int32{1, 1, 0, 0})
	copy(raster.As[int32](label1), []int32{2, 2, 3, 3})

	if err := Overlap(label0, label1, out); err != nil {
		t.Fatalf("Overlap: %v", err)
	}
	want := []int32{2, 2, 0, 0}
	got := raster.As[int32](out)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("out[%d] = %d, want %d", i, got[i], w)
		}
	}
}

// TestOverlapKeepsWholeRegion pins the region-keep semantics for a label
// that only partially overlaps label0: once any voxel of a label1 region
// overlaps a nonzero label0 voxel, every voxel carrying that label value
// survives, not just the overlapping voxel itself. Label 7 here occupies
// index 0 (overlapping) and index 2 (not overlapping) and is kept at
// both; label 8 never overlaps and is dropped entirely (see DESIGN.md
// for why this diverges from the literal worked example).
func TestOverlapKeepsWholeRegion(t *testing.T) {
	shape := [3]int64{1, 1, 4}
	label0 := newVolume(t, "label0.raw", shape, raster.I32)
	label1 := newVolume(t, "label1.raw", shape, raster.I32)
	out := newVolume(t, "out.raw", shape, raster.I32)

	copy(raster.As[int32](label0), []int32{1, 1, 0, 0})
	copy(raster.As[int32](label1), []int32{7, 0, 7, 8})

	if err := Overlap(label0, label1, out); err != nil {
		t.Fatalf("Overlap: %v", err)
	}
	want := []int32{7, 0, 7, 0}
	got := raster.As[int32](out)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("out[%d] = %d, want %d", i, got[i], w)
		}
	}
}
