// Package assembly resolves a set of freshly materialized solids into the
// parts that get committed. A solid whose every boundary vertex lies inside
// another solid's bounding box is treated as material to remove: it is
// subtracted from that host and dropped from the set.
//
// Comparisons are made on integers. Bounding boxes and candidate vertices
// are truncated toward zero before the inclusive check, so a vertex a
// fraction of a millimetre outside a box can still count as inside it.
package assembly

import (
	"fmt"
	"math"

	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
	"github.com/rs/zerolog"
)

// Item is one materialized solid awaiting resolution.
type Item struct {
	Label  string
	Kind   string
	Solid  kernel.Solid
	CutOut bool
}

// Box is an integer axis-aligned bounding box.
type Box struct {
	Min, Max [3]int64
}

// TruncBox truncates a solid's bounding box toward zero.
func TruncBox(s kernel.Solid) Box {
	min, max := s.BoundingBox()
	var b Box
	for i := 0; i < 3; i++ {
		b.Min[i] = int64(math.Trunc(min[i]))
		b.Max[i] = int64(math.Trunc(max[i]))
	}
	return b
}

// Contains reports whether every vertex of s, truncated toward zero, lies
// within b on all three axes. Bounds are inclusive.
func (b Box) Contains(s kernel.Solid) bool {
	vs := s.Vertices()
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		p := [3]int64{int64(math.Trunc(v.X)), int64(math.Trunc(v.Y)), int64(math.Trunc(v.Z))}
		for i := 0; i < 3; i++ {
			if p[i] < b.Min[i] || p[i] > b.Max[i] {
				return false
			}
		}
	}
	return true
}

// Resolve runs the pairwise containment scan over items in order. For each
// host, every other surviving item contained in it is subtracted from it
// and removed. Cut-out items that are never consumed are dropped with a
// warning. Survivors keep their original order.
func Resolve(k kernel.Kernel, items []Item, log zerolog.Logger) ([]Item, error) {
	work := append([]Item(nil), items...)
	alive := make([]bool, len(work))
	for i := range alive {
		alive[i] = true
	}

	for i := range work {
		if !alive[i] {
			continue
		}
		box := TruncBox(work[i].Solid)
		for j := range work {
			if i == j || !alive[j] {
				continue
			}
			if !box.Contains(work[j].Solid) {
				continue
			}
			diff, err := k.Difference(work[i].Solid, work[j].Solid)
			if err != nil {
				return nil, fmt.Errorf("subtract %s from %s: %w", work[j].Label, work[i].Label, err)
			}
			log.Debug().
				Str("host", work[i].Label).
				Str("cut", work[j].Label).
				Msg("contained solid subtracted")
			work[i].Solid = diff
			alive[j] = false
			box = TruncBox(diff)
		}
	}

	out := make([]Item, 0, len(work))
	for i, it := range work {
		if !alive[i] {
			continue
		}
		if it.CutOut {
			log.Warn().Str("label", it.Label).Msg("cut-out solid not contained in any host, discarded")
			continue
		}
		out = append(out, it)
	}
	return out, nil
}
