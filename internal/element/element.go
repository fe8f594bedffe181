// Package element describes composition elements as the editing surface sees
// them: a projection of the external composition model.
package element

import "fmt"

// Type is the closed set of element kinds.
type Type string

const (
	TypeVideo      Type = "video"
	TypeImage      Type = "image"
	TypeRect       Type = "rect"
	TypeText       Type = "text"
	TypeCaption    Type = "caption"
	TypeBackground Type = "background"
)

// TimelineScene marks elements that belong to a scene track. Scene video and
// image elements get a background object behind them.
const TimelineScene = "scene"

func (t Type) Valid() bool {
	switch t {
	case TypeVideo, TypeImage, TypeRect, TypeText, TypeCaption, TypeBackground:
		return true
	}
	return false
}

func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown element type %q", s)
	}
	return t, nil
}

type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Props holds geometric and type-specific properties. Fields that do not
// apply to a type stay zero.
type Props struct {
	X        float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y        float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Width    float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Height   float64 `yaml:"height,omitempty" json:"height,omitempty"`
	Rotation float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	Scale    float64 `yaml:"scale,omitempty" json:"scale,omitempty"`

	Src          string  `yaml:"src,omitempty" json:"src,omitempty"`
	PlaybackRate float64 `yaml:"playbackRate,omitempty" json:"playbackRate,omitempty"`
	Time         float64 `yaml:"time,omitempty" json:"time,omitempty"`

	Text       string  `yaml:"text,omitempty" json:"text,omitempty"`
	FontSize   float64 `yaml:"fontSize,omitempty" json:"fontSize,omitempty"`
	FontFamily string  `yaml:"fontFamily,omitempty" json:"fontFamily,omitempty"`
	Fill       string  `yaml:"fill,omitempty" json:"fill,omitempty"`

	// Pos is the caption anchor
	Pos *Point `yaml:"pos,omitempty" json:"pos,omitempty"`
}

// Rate returns the playback rate, defaulting to 1.
func (p Props) Rate() float64 {
	if p.PlaybackRate <= 0 {
		return 1
	}
	return p.PlaybackRate
}

// Frame is the visible region of a video or image element.
type Frame struct {
	X        float64    `yaml:"x" json:"x"`
	Y        float64    `yaml:"y" json:"y"`
	Size     [2]float64 `yaml:"size" json:"size"`
	Rotation float64    `yaml:"rotation,omitempty" json:"rotation,omitempty"`
}

type FrameEffectProps struct {
	FramePosition Point      `yaml:"framePosition" json:"framePosition"`
	FrameSize     [2]float64 `yaml:"frameSize" json:"frameSize"`
}

// FrameEffect overrides a video element's frame during [Start, End], both
// measured on the element's own media clock.
type FrameEffect struct {
	ID    string           `yaml:"id" json:"id"`
	Start float64          `yaml:"s" json:"s"`
	End   float64          `yaml:"e" json:"e"`
	Props FrameEffectProps `yaml:"props" json:"props"`
}

// Element is one timed, typed object of the composition.
type Element struct {
	ID           string        `yaml:"id" json:"id"`
	Type         Type          `yaml:"type" json:"type"`
	TimelineType string        `yaml:"timelineType,omitempty" json:"timelineType,omitempty"`
	StartTime    float64       `yaml:"s" json:"s"`
	EndTime      float64       `yaml:"e,omitempty" json:"e,omitempty"`
	ZIndex       int           `yaml:"zIndex" json:"zIndex"`
	Props        Props         `yaml:"props" json:"props"`
	Frame        *Frame        `yaml:"frame,omitempty" json:"frame,omitempty"`
	FrameEffects []FrameEffect `yaml:"frameEffects,omitempty" json:"frameEffects,omitempty"`
}

func (e *Element) IsScene() bool {
	return e.TimelineType == TimelineScene
}

// Clone returns a deep copy so that callers never share mutable state with
// the registry.
func (e Element) Clone() Element {
	out := e
	if e.Props.Pos != nil {
		pos := *e.Props.Pos
		out.Props.Pos = &pos
	}
	if e.Frame != nil {
		frame := *e.Frame
		out.Frame = &frame
	}
	if e.FrameEffects != nil {
		out.FrameEffects = make([]FrameEffect, len(e.FrameEffects))
		copy(out.FrameEffects, e.FrameEffects)
	}
	return out
}
