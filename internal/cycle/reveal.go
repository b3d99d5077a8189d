package cycle

import (
	"github.com/syllabyte/brainprogress/internal/geometry"
)

// Reveal spreads progress over order: path i is revealed by
// clamp(progress/100*N - i, 0, 1). Draining therefore hides paths in the
// reverse of order.
func Reveal(progress float64, order []geometry.PathID) map[geometry.PathID]float64 {
	n := float64(len(order))
	p := min(max(progress, 0), 100)
	out := make(map[geometry.PathID]float64, len(order))
	for i, id := range order {
		out[id] = min(max(p/100*n-float64(i), 0), 1)
	}
	return out
}
