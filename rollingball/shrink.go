package rollingball

import "math"

// Shrink min-pools plane (h rows by w columns) by factor s: output pixel
// (y, x) takes the minimum over the s*s input block, preserving the
// background envelope's lower hull rather than blurring it away. It
// returns the shrunken plane and its dimensions, which are ceil(h/s) by
// ceil(w/s).
func Shrink(plane []float64, h, w, s int) ([]float64, int, int) {
	if s <= 1 {
		out := make([]float64, len(plane))
		copy(out, plane)
		return out, h, w
	}

	sh := (h + s - 1) / s
	sw := (w + s - 1) / s
	out := make([]float64, sh*sw)

	for sy := 0; sy < sh; sy++ {
		for sx := 0; sx < sw; sx++ {
			min := math.Inf(1)
			for dy := 0; dy < s; dy++ {
				yy := sy*s + dy
				if yy >= h {
					continue
				}
				base := yy * w
				for dx := 0; dx < s; dx++ {
					xx := sx*s + dx
					if xx >= w {
						continue
					}
					if v := plane[base+xx]; v < min {
						min = v
					}
				}
			}
			out[sy*sw+sx] = min
		}
	}
	return out, sh, sw
}
