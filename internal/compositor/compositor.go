package compositor

import (
	"sort"

	"github.com/ivlev/videocanvas/internal/surface"
)

// Sorted returns objs ordered by ZIndex ascending. Objects with equal ZIndex
// keep their insertion order.
func Sorted(objs []*surface.Object) []*surface.Object {
	out := make([]*surface.Object, len(objs))
	copy(out, objs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// Reorder restacks every object on s to match the z-index of its element.
func Reorder(s surface.Surface) {
	s.SetOrder(Sorted(s.Objects()))
}
