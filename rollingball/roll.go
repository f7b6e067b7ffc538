package rollingball

import "math"

// Roll computes the background envelope reachable by rolling ball beneath
// plane (h rows by w columns), per spec §4.4. It maintains a rolling cache
// of ball.Width full rows so that only a thin band of the image needs to
// be held alongside the working buffer, then for every position of the
// ball's center takes the maximum height its surface can reach without
// poking through the image.
func Roll(plane []float64, h, w int, ball Ball) []float64 {
	hw := ball.HalfWidth
	bw := ball.Width
	zBall := ball.Data

	cache := make([]float64, w*bw)
	pixels := make([]float64, len(plane))
	copy(pixels, plane)

	for y := -hw; y < h+hw; y++ {
		writeRow := mod(y+hw, bw)
		readRow := y + hw
		if readRow < h {
			copy(cache[writeRow*w:writeRow*w+w], pixels[readRow*w:readRow*w+w])
			for x := 0; x < w; x++ {
				pixels[readRow*w+x] = math.Inf(-1)
			}
		}

		y0 := y - hw
		if y0 < 0 {
			y0 = 0
		}
		yBall0 := y0 - y + hw
		yend := y + hw
		if yend >= h {
			yend = h - 1
		}

		for x := -hw; x < w+hw; x++ {
			x0 := x - hw
			if x0 < 0 {
				x0 = 0
			}
			xBall0 := x0 - x + hw
			xend := x + hw
			if xend >= w {
				xend = w - 1
			}
			if y0 > yend || x0 > xend {
				continue
			}

			z := math.Inf(1)
			for yp, yBall := y0, yBall0; yp <= yend; yp, yBall = yp+1, yBall+1 {
				cacheRow := mod(yp, bw) * w
				bp := xBall0 + yBall*bw
				for xp := x0; xp <= xend; xp++ {
					if red := cache[cacheRow+xp] - zBall[bp]; red < z {
						z = red
					}
					bp++
				}
			}
			for yp, yBall := y0, yBall0; yp <= yend; yp, yBall = yp+1, yBall+1 {
				base := yp * w
				bp := xBall0 + yBall*bw
				for xp := x0; xp <= xend; xp++ {
					if added := z + zBall[bp]; added > pixels[base+xp] {
						pixels[base+xp] = added
					}
					bp++
				}
			}
		}
	}
	return pixels
}

func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
