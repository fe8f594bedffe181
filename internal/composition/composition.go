// Package composition reads and writes composition files: the element list
// of a session plus an optional script of gestures to replay on the surface.
package composition

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ivlev/videocanvas/internal/element"
	"github.com/ivlev/videocanvas/internal/geometry"
	"github.com/ivlev/videocanvas/internal/objects"
	"github.com/ivlev/videocanvas/internal/surface"
)

const CurrentVersion = "1"

// Composition is a complete session snapshot
type Composition struct {
	Version    string                `yaml:"version"`
	VideoSize  geometry.Dimensions   `yaml:"videoSize"`
	CanvasSize geometry.Dimensions   `yaml:"canvasSize,omitempty"`
	SeekTime   float64               `yaml:"seekTime,omitempty"`
	Caption    *objects.CaptionProps `yaml:"caption,omitempty"`
	Elements   []element.Element     `yaml:"elements"`
	Gestures   []Gesture             `yaml:"gestures,omitempty"`
}

// Gesture is one scripted manipulation in surface pixels.
// Unset fields keep the object's current value.
type Gesture struct {
	Element string         `yaml:"element"`
	Action  surface.Action `yaml:"action"`
	Left    *float64       `yaml:"left,omitempty"`
	Top     *float64       `yaml:"top,omitempty"`
	ScaleX  *float64       `yaml:"scaleX,omitempty"`
	ScaleY  *float64       `yaml:"scaleY,omitempty"`
	Angle   *float64       `yaml:"angle,omitempty"`
}

// Normalize fills missing element ids with random UUIDs and checks types.
// It returns the ids it generated.
func (c *Composition) Normalize() ([]string, error) {
	if c.Version == "" {
		c.Version = CurrentVersion
	}

	var generated []string
	seen := make(map[string]bool, len(c.Elements))
	for i := range c.Elements {
		el := &c.Elements[i]
		if _, err := element.ParseType(string(el.Type)); err != nil {
			return generated, fmt.Errorf("element %d: %w", i, err)
		}
		if el.ID == "" {
			el.ID = uuid.NewString()
			generated = append(generated, el.ID)
		}
		if seen[el.ID] {
			return generated, fmt.Errorf("element %d: duplicate id %q", i, el.ID)
		}
		seen[el.ID] = true
	}

	for i, g := range c.Gestures {
		if g.Element == "" {
			return generated, fmt.Errorf("gesture %d: element is required", i)
		}
		if g.Action == "" {
			c.Gestures[i].Action = surface.ActionDrag
		}
	}
	return generated, nil
}

// Apply изменяет объект согласно жесту
func (g Gesture) Apply(obj *surface.Object) {
	if g.Left != nil {
		obj.Left = *g.Left
	}
	if g.Top != nil {
		obj.Top = *g.Top
	}
	if g.ScaleX != nil {
		obj.ScaleX = *g.ScaleX
	}
	if g.ScaleY != nil {
		obj.ScaleY = *g.ScaleY
	}
	if g.Angle != nil {
		obj.Angle = *g.Angle
	}
}

// Replay plays gestures on s in order. A gesture on an object that is not
// on the surface is reported through skipped and does not stop the replay.
func Replay(s *surface.Memory, gestures []Gesture, skipped func(Gesture, error)) error {
	for _, g := range gestures {
		err := s.Apply(g.Element, g.Action, g.Apply)
		switch {
		case err == nil:
		case errors.Is(err, surface.ErrNotFound):
			if skipped != nil {
				skipped(g, err)
			}
		default:
			return fmt.Errorf("жест %s/%s: %w", g.Element, g.Action, err)
		}
	}
	return nil
}
