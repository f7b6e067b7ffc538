package rollingball

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/gandhilab/volumecore/raster"
)

// TestSubtractConstantImage reproduces spec §8's scenario: a constant
// image of value 100 with radius 10 should roll a background of ~100
// everywhere, leaving a subtracted result of ~0.
func TestSubtractConstantImage(t *testing.T) {
	shape := [3]int64{1, 16, 16}
	desc := raster.Descriptor{Filename: filepath.Join(t.TempDir(), "img.raw"), Shape: shape, ElemType: raster.U8}
	img, err := raster.Open(desc, raster.Create)
	if err != nil {
		t.Fatalf("open image: %v", err)
	}
	defer img.Close()
	outDesc := desc
	outDesc.Filename = filepath.Join(t.TempDir(), "out.raw")
	out, err := raster.Open(outDesc, raster.Create)
	if err != nil {
		t.Fatalf("open out: %v", err)
	}
	defer out.Close()

	data := raster.As[uint8](img)
	for i := range data {
		data[i] = 100
	}

	if err := Subtract(img, out, Options{Radius: 10}); err != nil {
		t.Fatalf("Subtract: %v", err)
	}

	result := raster.As[uint8](out)
	for i, v := range result {
		if v > 2 {
			t.Fatalf("out[%d] = %d, want approximately 0 for a flat image", i, v)
		}
	}
}

func TestRollMonotonicity(t *testing.T) {
	h, w := 20, 20
	plane := make([]float64, h*w)
	for i := range plane {
		plane[i] = float64((i%7)*10 + 5)
	}
	ball := BuildBall(5)
	bg := Roll(plane, h, w, ball)
	for i, v := range bg {
		if v > plane[i]+1e-9 {
			t.Errorf("background[%d] = %v > original %v, violates monotonicity", i, v, plane[i])
		}
	}
}

func TestShrinkIsMinPool(t *testing.T) {
	h, w := 4, 4
	plane := []float64{
		1, 2, 5, 6,
		3, 4, 7, 8,
		9, 10, 13, 14,
		11, 12, 15, 16,
	}
	out, sh, sw := Shrink(plane, h, w, 2)
	if sh != 2 || sw != 2 {
		t.Fatalf("shrunk dims = (%d,%d), want (2,2)", sh, sw)
	}
	want := []float64{1, 5, 9, 13}
	for i, wantVal := range want {
		if out[i] != wantVal {
			t.Errorf("out[%d] = %v, want %v", i, out[i], wantVal)
		}
	}
}

func TestEnlargeRoundTripFlat(t *testing.T) {
	sh, sw, s := 4, 4, 4
	h, w := 16, 16
	shrunk := make([]float64, sh*sw)
	for i := range shrunk {
		shrunk[i] = 42
	}
	out := Enlarge(shrunk, sh, sw, h, w, s)
	for i, v := range out {
		if math.Abs(v-42) > 1e-9 {
			t.Errorf("out[%d] = %v, want 42 for a flat shrunken plane", i, v)
		}
	}
}
