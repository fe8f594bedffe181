package engine

import (
	"github.com/ivlev/videocanvas/internal/element"
	"github.com/ivlev/videocanvas/internal/geometry"
	"github.com/ivlev/videocanvas/internal/surface"
)

// handleGestureEnd сводит завершённый жест обратно в реестр.
// Промежуточные кадры жеста сюда не приходят.
func (e *Engine) handleGestureEnd(ev surface.GestureEvent) {
	obj := ev.Target
	if obj == nil || ev.Transform == nil {
		return
	}
	// подложка сцены делит id с элементом, но его геометрию не задаёт
	if obj.Kind == surface.KindBackground {
		return
	}
	tr := ev.Transform

	// перетаскивание без смещения считается выбором объекта
	if tr.Action == surface.ActionDrag && obj.Left == tr.Original.Left && obj.Top == tr.Original.Top {
		el, ok := e.store.Get(obj.ID)
		if !ok {
			e.logger.Debug("selection of unknown element", "id", obj.ID)
			return
		}
		e.notify(OpItemSelected, el)
		return
	}

	switch tr.Action {
	case surface.ActionDrag, surface.ActionScale, surface.ActionScaleX, surface.ActionScaleY, surface.ActionRotate:
	default:
		return
	}

	meta, video := e.snapshot()
	x, y := geometry.ToVideoSpace(obj.Left, obj.Top, meta, video)

	el, ok := e.store.Update(obj.ID, func(el *element.Element, active *element.FrameEffect) {
		reconcile(el, active, obj, x, y)
	})
	if !ok {
		e.logger.Debug("gesture on unknown element", "id", obj.ID, "action", tr.Action)
		return
	}
	e.notify(OpItemUpdated, el)
}

// reconcile применяет итоговую геометрию объекта к элементу.
// x, y уже в пикселях видео.
func reconcile(el *element.Element, active *element.FrameEffect, obj *surface.Object, x, y float64) {
	sx, sy := scale(obj.ScaleX), scale(obj.ScaleY)

	switch {
	case el.Type == element.TypeCaption:
		el.Props.Pos = &element.Point{X: x, Y: y}

	case obj.Kind == surface.KindGroup && active != nil:
		active.Props.FrameSize = [2]float64{active.Props.FrameSize[0] * sx, active.Props.FrameSize[1] * sy}
		active.Props.FramePosition = element.Point{X: x, Y: y}
		for i := range el.FrameEffects {
			if el.FrameEffects[i].ID == active.ID {
				el.FrameEffects[i].Props = active.Props
			}
		}

	case obj.Kind == surface.KindGroup:
		frame := el.Frame
		if frame == nil {
			frame = &element.Frame{Size: [2]float64{el.Props.Width, el.Props.Height}}
		}
		frame.Rotation = obj.Angle
		frame.Size = [2]float64{frame.Size[0] * sx, frame.Size[1] * sy}
		frame.X, frame.Y = x, y
		el.Frame = frame

	case obj.Kind == surface.KindText:
		el.Props.Rotation = obj.Angle
		el.Props.X, el.Props.Y = x, y

	default:
		el.Props.Rotation = obj.Angle
		el.Props.X, el.Props.Y = x, y
		el.Props.Width *= sx
		el.Props.Height *= sy
	}
}

func scale(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
