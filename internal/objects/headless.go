package objects

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/videocanvas/internal/element"
	"github.com/ivlev/videocanvas/internal/geometry"
	"github.com/ivlev/videocanvas/internal/media"
	"github.com/ivlev/videocanvas/internal/surface"
)

// Metadata: источник натуральных размеров медиа (обычно *media.Cache)
type Metadata interface {
	ImageDimensions(ctx context.Context, loc string) (geometry.Dimensions, error)
	VideoMeta(ctx context.Context, loc string) (media.VideoMeta, error)
}

var ErrNoSource = errors.New("element has no src")

// Headless собирает набор материализаторов, которые строят объекты без
// отрисовки. Размеры изображений и видео без явной геометрии берутся из meta.
func Headless(meta Metadata) *Set {
	return NewSet().
		Register(element.TypeRect, Func(rect)).
		Register(element.TypeText, Func(text)).
		Register(element.TypeCaption, Func(caption)).
		Register(element.TypeImage, Func(func(ctx context.Context, req Request) (*surface.Object, error) {
			return framed(ctx, req, func(ctx context.Context, src string) (geometry.Dimensions, error) {
				return meta.ImageDimensions(ctx, src)
			})
		})).
		Register(element.TypeVideo, Func(func(ctx context.Context, req Request) (*surface.Object, error) {
			obj, err := framed(ctx, req, func(ctx context.Context, src string) (geometry.Dimensions, error) {
				m, err := meta.VideoMeta(ctx, src)
				return geometry.Dimensions{Width: m.Width, Height: m.Height}, err
			})
			if err != nil {
				return nil, err
			}
			obj.MediaTime = req.SnapTime
			return obj, nil
		})).
		Register(element.TypeBackground, Func(background))
}

func base(req Request, kind surface.Kind) *surface.Object {
	el := req.Element
	left, top := geometry.ToSurfaceSpace(el.Props.X, el.Props.Y, req.Canvas)
	return &surface.Object{
		ID:         el.ID,
		Kind:       kind,
		Left:       left,
		Top:        top,
		Width:      el.Props.Width * req.Canvas.ScaleX,
		Height:     el.Props.Height * req.Canvas.ScaleY,
		Angle:      el.Props.Rotation,
		ScaleX:     1,
		ScaleY:     1,
		ZIndex:     el.ZIndex,
		Selectable: true,
		Fill:       el.Props.Fill,
	}
}

func rect(_ context.Context, req Request) (*surface.Object, error) {
	return base(req, surface.KindRect), nil
}

func text(_ context.Context, req Request) (*surface.Object, error) {
	obj := base(req, surface.KindText)
	obj.Text = req.Element.Props.Text
	return obj, nil
}

func caption(_ context.Context, req Request) (*surface.Object, error) {
	el := req.Element
	pos := el.Props.Pos
	if pos == nil && req.Caption != nil {
		pos = req.Caption.Pos
	}

	obj := base(req, surface.KindCaption)
	if pos != nil {
		obj.Left, obj.Top = geometry.ToSurfaceSpace(pos.X, pos.Y, req.Canvas)
	}
	obj.Text = el.Props.Text
	if obj.Fill == "" && req.Caption != nil {
		obj.Fill = req.Caption.Fill
	}
	return obj, nil
}

func background(_ context.Context, req Request) (*surface.Object, error) {
	fill := req.Element.Props.Fill
	if fill == "" {
		fill = "#000000"
	}
	return &surface.Object{
		ID:     req.Element.ID,
		Kind:   surface.KindBackground,
		Width:  req.Canvas.Width,
		Height: req.Canvas.Height,
		ScaleX: 1,
		ScaleY: 1,
		ZIndex: req.Element.ZIndex,
		Fill:   fill,
	}, nil
}

type naturalSize func(ctx context.Context, src string) (geometry.Dimensions, error)

// framed строит группу для видео/изображения. Геометрия в порядке приоритета:
// активный frame effect, frame элемента, явные props, натуральный размер
// вписанный в кадр видео.
func framed(ctx context.Context, req Request, natural naturalSize) (*surface.Object, error) {
	el := req.Element
	obj := base(req, surface.KindGroup)

	var x, y, w, h, angle float64
	switch {
	case req.FrameEffect != nil:
		fe := req.FrameEffect.Props
		x, y, w, h = fe.FramePosition.X, fe.FramePosition.Y, fe.FrameSize[0], fe.FrameSize[1]
		if el.Frame != nil {
			angle = el.Frame.Rotation
		}
	case el.Frame != nil:
		x, y, w, h, angle = el.Frame.X, el.Frame.Y, el.Frame.Size[0], el.Frame.Size[1], el.Frame.Rotation
	case el.Props.Width > 0 && el.Props.Height > 0:
		x, y, w, h, angle = el.Props.X, el.Props.Y, el.Props.Width, el.Props.Height, el.Props.Rotation
	default:
		if el.Props.Src == "" {
			return nil, fmt.Errorf("%s %s: %w", el.Type, el.ID, ErrNoSource)
		}
		size, err := natural(ctx, el.Props.Src)
		if err != nil {
			return nil, err
		}
		x, y, w, h = fit(size, videoSize(req.Canvas))
		angle = el.Props.Rotation
	}

	obj.Left, obj.Top = geometry.ToSurfaceSpace(x, y, req.Canvas)
	obj.Width = w * req.Canvas.ScaleX
	obj.Height = h * req.Canvas.ScaleY
	obj.Angle = angle
	return obj, nil
}

func videoSize(meta geometry.CanvasMetadata) geometry.Dimensions {
	if meta.ScaleX == 0 || meta.ScaleY == 0 {
		return geometry.Dimensions{Width: meta.Width, Height: meta.Height}
	}
	return geometry.Dimensions{Width: meta.Width / meta.ScaleX, Height: meta.Height / meta.ScaleY}
}

// fit вписывает size в frame с сохранением пропорций и центрирует
func fit(size, frame geometry.Dimensions) (x, y, w, h float64) {
	if size.Width <= 0 || size.Height <= 0 {
		return 0, 0, frame.Width, frame.Height
	}
	k := math.Min(frame.Width/size.Width, frame.Height/size.Height)
	w, h = size.Width*k, size.Height*k
	return (frame.Width - w) / 2, (frame.Height - h) / 2, w, h
}
