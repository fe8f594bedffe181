package objects

import (
	"context"
	"fmt"

	"github.com/ivlev/videocanvas/internal/element"
	"github.com/ivlev/videocanvas/internal/geometry"
	"github.com/ivlev/videocanvas/internal/surface"
)

// CaptionProps: общие настройки оформления субтитров для пакета элементов
type CaptionProps struct {
	FontFamily string         `yaml:"fontFamily"`
	FontSize   float64        `yaml:"fontSize"`
	Fill       string         `yaml:"fill"`
	Stroke     string         `yaml:"stroke"`
	LineWidth  float64        `yaml:"lineWidth"`
	Pos        *element.Point `yaml:"pos"`
}

// Request: всё, что нужно материализатору для построения объекта
type Request struct {
	Element element.Element
	Index   int
	Canvas  geometry.CanvasMetadata

	// только для видео
	FrameEffect *element.FrameEffect
	SnapTime    float64

	// только для субтитров
	Caption *CaptionProps
}

// Materializer строит объект поверхности для элемента.
// Объект обязан нести идентификатор элемента.
type Materializer interface {
	Materialize(ctx context.Context, req Request) (*surface.Object, error)
}

type Func func(ctx context.Context, req Request) (*surface.Object, error)

func (f Func) Materialize(ctx context.Context, req Request) (*surface.Object, error) {
	return f(ctx, req)
}

// Set сопоставляет типам элементов их материализаторы.
// Background используется для подложки scene-элементов.
type Set struct {
	byType     map[element.Type]Materializer
	Background Materializer
}

func NewSet() *Set {
	return &Set{byType: make(map[element.Type]Materializer)}
}

func (s *Set) Register(t element.Type, m Materializer) *Set {
	s.byType[t] = m
	if t == element.TypeBackground {
		s.Background = m
	}
	return s
}

// For возвращает материализатор для типа
func (s *Set) For(t element.Type) (Materializer, error) {
	if m, ok := s.byType[t]; ok {
		return m, nil
	}
	if !t.Valid() {
		return nil, fmt.Errorf("unknown element type: %s", t)
	}
	return nil, fmt.Errorf("no materializer registered for %s", t)
}
