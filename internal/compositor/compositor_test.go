package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivlev/videocanvas/internal/config"
	"github.com/ivlev/videocanvas/internal/surface"
)

func ids(objs []*surface.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.ID
	}
	return out
}

func TestReorderByZIndex(t *testing.T) {
	s := surface.NewMemory(config.CanvasProps{})
	s.Add(
		&surface.Object{ID: "c", ZIndex: 3},
		&surface.Object{ID: "a", ZIndex: 1},
		&surface.Object{ID: "b", ZIndex: 2},
	)

	Reorder(s)
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Objects()))
}

func TestSortedStable(t *testing.T) {
	objs := []*surface.Object{
		{ID: "first", ZIndex: 1},
		{ID: "top", ZIndex: 5},
		{ID: "second", ZIndex: 1},
		{ID: "bottom", ZIndex: -1},
		{ID: "third", ZIndex: 1},
	}

	got := Sorted(objs)
	assert.Equal(t, []string{"bottom", "first", "second", "third", "top"}, ids(got))
	// исходный срез не меняется
	assert.Equal(t, "first", objs[0].ID)
}

func TestSortedEmpty(t *testing.T) {
	assert.Empty(t, Sorted(nil))
}
