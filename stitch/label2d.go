package stitch

// label2D assigns 8-connected component labels to a single Y*X binary
// slice using a two-pass union-find scan: forward pass merges each
// foreground pixel with any already-labeled west/north/northwest/northeast
// neighbor, second pass flattens union-find roots into compact ids
// numbered in first-appearance raster order. This is the union-find
// two-pass labeller the connected-components stitcher's slice routine is
// explicitly permitted to use in place of an external 2D labeller.
func label2D(mask []uint8, y, x int64) ([]int32, int32) {
	n := len(mask)
	xi := int(x)
	yi := int(y)

	labels := make([]int32, n)
	parent := []int32{0} // parent[0] is an unused sentinel; labels start at 1

	newLabel := func() int32 {
		id := int32(len(parent))
		parent = append(parent, id)
		return id
	}
	var find func(int32) int32
	find = func(l int32) int32 {
		for parent[l] != l {
			l = parent[l]
		}
		return l
	}
	union := func(a, b int32) int32 {
		ra, rb := find(a), find(b)
		if ra == rb {
			return ra
		}
		if ra < rb {
			parent[rb] = ra
			return ra
		}
		parent[ra] = rb
		return rb
	}

	for iy := 0; iy < yi; iy++ {
		for ix := 0; ix < xi; ix++ {
			idx := iy*xi + ix
			if mask[idx] == 0 {
				continue
			}
			var best int32
			consider := func(nidx int) {
				if labels[nidx] == 0 {
					return
				}
				l := find(labels[nidx])
				switch {
				case best == 0:
					best = l
				case l != best:
					best = union(best, l)
				}
			}
			if ix > 0 {
				consider(idx - 1)
			}
			if iy > 0 {
				consider(idx - xi)
				if ix > 0 {
					consider(idx - xi - 1)
				}
				if ix < xi-1 {
					consider(idx - xi + 1)
				}
			}
			if best == 0 {
				best = newLabel()
			}
			labels[idx] = best
		}
	}

	remap := make(map[int32]int32)
	var count int32
	out := make([]int32, n)
	for i, l := range labels {
		if l == 0 {
			continue
		}
		root := find(l)
		nl, ok := remap[root]
		if !ok {
			count++
			nl = count
			remap[root] = nl
		}
		out[i] = nl
	}
	return out, count
}
