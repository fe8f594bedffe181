package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/videocanvas/internal/element"
)

func TestPutGetReturnsCopies(t *testing.T) {
	s := New()
	el := element.Element{ID: "r1", Type: element.TypeRect, Frame: &element.Frame{X: 1}}
	s.Put(el)

	el.Frame.X = 50 // исходник не должен протекать в реестр

	got, ok := s.Get("r1")
	require.True(t, ok)
	assert.Equal(t, 1.0, got.Frame.X)

	got.Frame.X = 77
	again, _ := s.Get("r1")
	assert.Equal(t, 1.0, again.Frame.X)

	_, ok = s.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestActiveFrameEffect(t *testing.T) {
	s := New()
	_, ok := s.ActiveFrameEffect("v1")
	assert.False(t, ok)

	s.SetActiveFrameEffect("v1", &element.FrameEffect{ID: "fe1"})
	fe, ok := s.ActiveFrameEffect("v1")
	require.True(t, ok)
	assert.Equal(t, "fe1", fe.ID)

	s.SetActiveFrameEffect("v1", nil)
	_, ok = s.ActiveFrameEffect("v1")
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	s := New()
	s.Put(element.Element{ID: "v1", Type: element.TypeVideo})
	s.SetActiveFrameEffect("v1", &element.FrameEffect{ID: "fe1"})
	before := s.Version()

	updated, ok := s.Update("v1", func(el *element.Element, active *element.FrameEffect) {
		require.NotNil(t, active)
		el.Props.X = 10
		active.Props.FramePosition = element.Point{X: 3, Y: 4}
	})
	require.True(t, ok)
	assert.Equal(t, 10.0, updated.Props.X)
	assert.Equal(t, before+1, s.Version())

	fe, _ := s.ActiveFrameEffect("v1")
	assert.Equal(t, element.Point{X: 3, Y: 4}, fe.Props.FramePosition)

	_, ok = s.Update("nope", func(*element.Element, *element.FrameEffect) {
		t.Fatal("must not be called")
	})
	assert.False(t, ok)
	assert.Equal(t, before+1, s.Version())
}

func TestUpdateConcurrent(t *testing.T) {
	s := New()
	s.Put(element.Element{ID: "r1"})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("r1", func(el *element.Element, _ *element.FrameEffect) {
				el.Props.X++
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get("r1")
	assert.Equal(t, 100.0, got.Props.X)
}

func TestReset(t *testing.T) {
	s := New()
	for i := 0; i < 3; i++ {
		s.Put(element.Element{ID: fmt.Sprintf("e%d", i)})
	}
	s.SetActiveFrameEffect("e0", &element.FrameEffect{ID: "x"})
	s.Reset()

	assert.Equal(t, 0, s.Len())
	_, ok := s.ActiveFrameEffect("e0")
	assert.False(t, ok)
}
