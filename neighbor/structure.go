// Package neighbor builds the neighborhood descriptors (spec §3's
// "structure[]") that the watershed and diffusion flooders traverse: a set
// of raveled offsets to a voxel's neighbors, sorted by Euclidean distance
// from the center, plus the interior mask that keeps the inner loop from
// ever stepping off the edge of the volume.
//
// This is grounded in original_source's
// bq3d/image_filters/filters/helpers/structure_element.py, specifically
// structure_element_binary and _offsets_to_raveled_neighbors, reworked from
// scipy's generate_binary_structure into a small Go-native connectivity
// table since this pack carries no scipy-equivalent dependency.
package neighbor

import (
	"sort"

	"github.com/gandhilab/volumecore/dvid"
)

// Connectivity selects how many orthogonal steps define a neighbor, mirroring
// scipy's generate_binary_structure rank argument: 1 is 6-connectivity
// (face neighbors only), 2 is 18-connectivity (face + edge), 3 is
// 26-connectivity (face + edge + corner).
type Connectivity int

const (
	Faces Connectivity = 1
	Edges Connectivity = 2
	Full  Connectivity = 3
)

// Structure holds the offsets and strides needed to walk a volume's
// neighborhood in raveled space.
type Structure struct {
	Offsets []int      // raveled offsets to each neighbor, nearest first
	Strides [3]int64   // per-axis raveled step size, outermost (Z) first
	Shape   dvid.Point3d
}

// Build computes the raveled neighbor offsets for the given shape and
// connectivity, sorted by squared Euclidean distance from the center, per
// _offsets_to_raveled_neighbors.
func Build(shape dvid.Point3d, conn Connectivity) Structure {
	strides := shape.Strides()

	type off struct {
		raveled int
		dist2   int64
	}
	var offs []off
	for dz := int64(-1); dz <= 1; dz++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dx := int64(-1); dx <= 1; dx++ {
				if dz == 0 && dy == 0 && dx == 0 {
					continue
				}
				steps := absi(dz) + absi(dy) + absi(dx)
				if int64(conn) < steps {
					continue
				}
				raveled := int(dz*strides[0] + dy*strides[1] + dx*strides[2])
				offs = append(offs, off{raveled, dz*dz + dy*dy + dx*dx})
			}
		}
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i].dist2 < offs[j].dist2 })

	out := make([]int, len(offs))
	for i, o := range offs {
		out[i] = o.raveled
	}
	return Structure{Offsets: out, Strides: strides, Shape: shape}
}

func absi(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// InteriorMask returns a 0/1 mask (0 for background/border, 1 for a
// traversable interior voxel) sized shape.Prod(), with a 1-voxel border
// zeroed on every face so that Structure's offsets never index outside the
// volume, per spec §3's border-masking contract. Callers combine this with
// their own foreground mask (AND) before handing it to watershed or
// diffuse.
func InteriorMask(shape dvid.Point3d) []uint8 {
	z, y, x := shape[0], shape[1], shape[2]
	mask := make([]uint8, shape.Prod())
	strides := shape.Strides()
	for iz := int64(1); iz < z-1; iz++ {
		for iy := int64(1); iy < y-1; iy++ {
			base := iz*strides[0] + iy*strides[1]
			for ix := int64(1); ix < x-1; ix++ {
				mask[base+ix] = 1
			}
		}
	}
	return mask
}
