package rollingball

// blur3x3 applies a 3x3 mean blur with edge-clamped borders, supplemented
// from original_source's RollingBackgroundSubtract, which runs
// cv2.blur(im, (3, 3)) on each slice before rolling the ball beneath it
// to damp shot noise that would otherwise pit the background estimate.
func blur3x3(plane []float64, h, w int) []float64 {
	out := make([]float64, len(plane))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for dy := -1; dy <= 1; dy++ {
				yy := clampInt(y+dy, 0, h-1)
				for dx := -1; dx <= 1; dx++ {
					xx := clampInt(x+dx, 0, w-1)
					sum += plane[yy*w+xx]
				}
			}
			out[y*w+x] = sum / 9
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
