package rollingball

import "math"

// enlargeTable holds the per-axis index/weight pair used to bilinearly
// interpolate a shrunken axis back to its original length, per spec
// §4.4's sIdx/weight formulas.
type enlargeTable struct {
	idx    []int
	weight []float64
}

// buildEnlargeTable computes sIdx[i] and weight[i] for i in [0, origLen),
// mapping into a shrunken axis of length shrunkLen by factor s. sIdx is
// clamped to [0, shrunkLen-2] so the interpolation's "+1" neighbor never
// reads past the shrunken axis -- the bound the source's enlarge pass
// left to shrink-factor arithmetic (see the flagged edge case) is
// asserted here directly.
func buildEnlargeTable(origLen, shrunkLen, s int) enlargeTable {
	t := enlargeTable{idx: make([]int, origLen), weight: make([]float64, origLen)}
	maxIdx := shrunkLen - 2
	if maxIdx < 0 {
		maxIdx = 0
	}
	for i := 0; i < origLen; i++ {
		si := int(math.Floor((float64(i) - float64(s)/2) / float64(s)))
		if si < 0 {
			si = 0
		}
		if si > maxIdx {
			si = maxIdx
		}
		t.idx[i] = si
		t.weight[i] = 1.0 - ((float64(i)+0.5)/float64(s) - (float64(si) + 0.5))
	}
	return t
}

// Enlarge bilinearly interpolates shrunk (sh rows by sw columns) back up
// to h rows by w columns.
func Enlarge(shrunk []float64, sh, sw, h, w, s int) []float64 {
	yt := buildEnlargeTable(h, sh, s)
	xt := buildEnlargeTable(w, sw, s)

	out := make([]float64, h*w)
	for y := 0; y < h; y++ {
		y0 := yt.idx[y]
		y1 := minInt(y0+1, sh-1)
		wy := yt.weight[y]
		row0, row1 := y0*sw, y1*sw
		for x := 0; x < w; x++ {
			x0 := xt.idx[x]
			x1 := minInt(x0+1, sw-1)
			wx := xt.weight[x]

			top := wx*shrunk[row0+x0] + (1-wx)*shrunk[row0+x1]
			bot := wx*shrunk[row1+x0] + (1-wx)*shrunk[row1+x1]
			out[y*w+x] = wy*top + (1-wy)*bot
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
