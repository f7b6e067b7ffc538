package filters

import (
	"testing"

	"github.com/gandhilab/volumecore/raster"
)

func TestSubtractBackgroundVolumeRatio(t *testing.T) {
	shape := [3]int64{1, 1, 4}
	img := newVolume(t, "img.raw", shape, raster.U8)
	bkg := newVolume(t, "bkg.raw", shape, raster.U8)
	out := newVolume(t, "out.raw", shape, raster.U8)

	copy(raster.As[uint8](img), []uint8{20, 20, 20, 20})
	copy(raster.As[uint8](bkg), []uint8{10, 10, 10, 10})

	if err := SubtractBackgroundVolume(img, bkg, out, 0); err != nil {
		t.Fatalf("SubtractBackgroundVolume: %v", err)
	}
	// image mean 20, background mean 10, ratio = 2, so subtraction is
	// 20 - 10*2 = 0 everywhere.
	for i, v := range raster.As[uint8](out) {
		if v != 0 {
			t.Errorf("out[%d] = %d, want 0", i, v)
		}
	}
}

func TestSubtractBackgroundVolumeZShiftOutOfRange(t *testing.T) {
	shape := [3]int64{3, 1, 2}
	img := newVolume(t, "img.raw", shape, raster.U8)
	bkg := newVolume(t, "bkg.raw", shape, raster.U8)
	out := newVolume(t, "out.raw", shape, raster.U8)

	copy(raster.As[uint8](img), []uint8{10, 10, 20, 20, 30, 30})
	copy(raster.As[uint8](bkg), []uint8{5, 5, 5, 5, 5, 5})

	// Shifting by 5 pushes every slice's source out of range; each slice
	// should fall back to a verbatim copy of image rather than subtracting.
	if err := SubtractBackgroundVolume(img, bkg, out, 5); err != nil {
		t.Fatalf("SubtractBackgroundVolume: %v", err)
	}
	got := raster.As[uint8](out)
	want := raster.As[uint8](img)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("out[%d] = %d, want unchanged %d", i, got[i], want[i])
		}
	}
}

func TestSubtractBackgroundVolumeZeroBackgroundCopiesImage(t *testing.T) {
	shape := [3]int64{1, 1, 3}
	img := newVolume(t, "img.raw", shape, raster.U8)
	bkg := newVolume(t, "bkg.raw", shape, raster.U8)
	out := newVolume(t, "out.raw", shape, raster.U8)

	copy(raster.As[uint8](img), []uint8{1, 2, 3})

	if err := SubtractBackgroundVolume(img, bkg, out, 0); err != nil {
		t.Fatalf("SubtractBackgroundVolume: %v", err)
	}
	got := raster.As[uint8](out)
	want := []uint8{1, 2, 3}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("out[%d] = %d, want %d", i, got[i], w)
		}
	}
}
