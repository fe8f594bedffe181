package composition

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/videocanvas/internal/config"
	"github.com/ivlev/videocanvas/internal/element"
	"github.com/ivlev/videocanvas/internal/geometry"
	"github.com/ivlev/videocanvas/internal/surface"
)

const sample = `
version: "1"
videoSize: {width: 1920, height: 1080}
canvasSize: {width: 960, height: 540}
seekTime: 2
caption:
  fill: "#ffffff"
  pos: {x: 960, y: 980}
elements:
  - id: rect
    type: rect
    zIndex: 1
    props: {x: 100, y: 100, width: 200, height: 100}
  - type: text
    zIndex: 2
    props: {x: 50, y: 50, text: Title}
  - id: clip
    type: video
    timelineType: scene
    s: 1
    props: {src: clip.mp4, playbackRate: 2}
    frameEffects:
      - id: zoom
        s: 0
        e: 4
        props:
          framePosition: {x: 0, y: 0}
          frameSize: [1920, 1080]
gestures:
  - element: rect
    left: 80
    top: 80
  - element: clip
    action: rotate
    angle: 15
`

func TestReadComposition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	c, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, geometry.Dimensions{Width: 1920, Height: 1080}, c.VideoSize)
	assert.Equal(t, 2.0, c.SeekTime)
	require.NotNil(t, c.Caption)
	assert.Equal(t, element.Point{X: 960, Y: 980}, *c.Caption.Pos)

	require.Len(t, c.Elements, 3)
	assert.Equal(t, 200.0, c.Elements[0].Props.Width)

	// пропущенный id заполняется UUID
	_, err = uuid.Parse(c.Elements[1].ID)
	assert.NoError(t, err)

	clip := c.Elements[2]
	assert.True(t, clip.IsScene())
	assert.Equal(t, 1.0, clip.StartTime)
	assert.Equal(t, 2.0, clip.Props.Rate())
	require.Len(t, clip.FrameEffects, 1)
	assert.Equal(t, [2]float64{1920, 1080}, clip.FrameEffects[0].Props.FrameSize)
	assert.Equal(t, 4.0, clip.FrameEffects[0].End)

	require.Len(t, c.Gestures, 2)
	assert.Equal(t, surface.ActionDrag, c.Gestures[0].Action)
	assert.Equal(t, 80.0, *c.Gestures[0].Left)
	assert.Nil(t, c.Gestures[0].Angle)
	assert.Equal(t, surface.ActionRotate, c.Gestures[1].Action)
}

func TestWriteReadRoundTrip(t *testing.T) {
	c := &Composition{
		VideoSize: geometry.Dimensions{Width: 1280, Height: 720},
		Elements: []element.Element{
			{ID: "a", Type: element.TypeRect, ZIndex: 1, Props: element.Props{X: 1, Y: 2, Width: 3, Height: 4}},
			{ID: "b", Type: element.TypeImage, Frame: &element.Frame{X: 5, Size: [2]float64{10, 20}}},
		},
	}
	path := GeneratePath(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, Write(c, path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, got.Version)
	assert.Equal(t, c.Elements, got.Elements)
}

func TestNormalizeErrors(t *testing.T) {
	c := &Composition{Elements: []element.Element{{ID: "x", Type: "sticker"}}}
	_, err := c.Normalize()
	assert.ErrorContains(t, err, "unknown element type")

	c = &Composition{Elements: []element.Element{
		{ID: "x", Type: element.TypeRect},
		{ID: "x", Type: element.TypeText},
	}}
	_, err = c.Normalize()
	assert.ErrorContains(t, err, "duplicate id")

	c = &Composition{Gestures: []Gesture{{Action: surface.ActionDrag}}}
	_, err = c.Normalize()
	assert.ErrorContains(t, err, "element is required")
}

func TestFindLatestComposition(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "composition_old.yaml")
	fresh := filepath.Join(dir, "composition_new.yml")
	require.NoError(t, os.WriteFile(old, []byte("version: 1"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("version: 1"), 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	latest, err := FindLatest(dir)
	require.NoError(t, err)
	assert.Equal(t, fresh, latest)

	assert.True(t, strings.HasPrefix(filepath.Base(GeneratePath(dir)), "composition_"))
}

func ptr(v float64) *float64 { return &v }

func TestReplay(t *testing.T) {
	s := surface.NewMemory(config.CanvasProps{})
	s.Add(&surface.Object{ID: "r", Kind: surface.KindRect, Left: 10, Top: 10, ScaleX: 1, ScaleY: 1})

	var events []surface.GestureEvent
	s.OnGestureEnd(func(ev surface.GestureEvent) { events = append(events, ev) })

	var skipped []string
	err := Replay(s, []Gesture{
		{Element: "r", Action: surface.ActionDrag, Left: ptr(30)},
		{Element: "ghost", Action: surface.ActionDrag},
		{Element: "r", Action: surface.ActionScale, ScaleX: ptr(2), ScaleY: ptr(3)},
	}, func(g Gesture, err error) {
		assert.ErrorIs(t, err, surface.ErrNotFound)
		skipped = append(skipped, g.Element)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ghost"}, skipped)
	require.Len(t, events, 2)
	assert.Equal(t, surface.Original{Left: 10, Top: 10}, events[0].Transform.Original)
	assert.Equal(t, 30.0, events[0].Target.Left)
	assert.Equal(t, 10.0, events[0].Target.Top)
	assert.Equal(t, 2.0, events[1].Target.ScaleX)

	// после Dispose объектов нет, жесты пропускаются
	require.NoError(t, s.Dispose())
	require.NoError(t, Replay(s, []Gesture{{Element: "r", Action: surface.ActionDrag}}, nil))
	assert.Len(t, events, 2)
}
