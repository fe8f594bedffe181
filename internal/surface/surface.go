// Package surface defines the contract of the editing surface the sync
// engine drives: object storage, rendering and the gesture-completed event.
// The real canvas library lives outside this module; Memory is a headless
// implementation used by the CLI and tests.
package surface

import (
	"github.com/ivlev/videocanvas/internal/config"
	"github.com/ivlev/videocanvas/internal/geometry"
)

// Kind is the on-surface object type.
type Kind string

const (
	KindRect       Kind = "rect"
	KindText       Kind = "text"
	KindCaption    Kind = "caption"
	KindGroup      Kind = "group"
	KindBackground Kind = "background"
)

// Object is a manipulable on-surface representation of an element.
// ID carries the identifier of the backing element.
type Object struct {
	ID     string
	Kind   Kind
	Left   float64
	Top    float64
	Width  float64
	Height float64
	Angle  float64
	ScaleX float64
	ScaleY float64
	ZIndex int

	Selectable bool
	Fill       string
	Text       string
	// MediaTime is the source timestamp shown by video objects
	MediaTime float64
}

// Action is the kind of gesture that completed.
type Action string

const (
	ActionDrag   Action = "drag"
	ActionScale  Action = "scale"
	ActionScaleX Action = "scaleX"
	ActionScaleY Action = "scaleY"
	ActionRotate Action = "rotate"
)

// Original is the object's position before the gesture started.
type Original struct {
	Left float64
	Top  float64
}

type Transform struct {
	Action   Action
	Original Original
}

// GestureEvent is emitted once when a drag/scale/rotate gesture ends.
// Target holds the object's final geometry.
type GestureEvent struct {
	Target    *Object
	Transform *Transform
}

type GestureHandler func(GestureEvent)

// Surface is the capability the engine consumes.
type Surface interface {
	Add(objs ...*Object)
	Objects() []*Object
	// SetOrder replaces the stacking order, bottom first
	SetOrder(objs []*Object)
	Clear()
	Render()
	// OnGestureEnd subscribes h and returns the function that removes it
	OnGestureEnd(h GestureHandler) (off func())
	Dispose() error
}

// Factory creates surfaces and reports their initial canvas metadata.
type Factory interface {
	Create(props config.CanvasProps) (Surface, geometry.CanvasMetadata, error)
}
