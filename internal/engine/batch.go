package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/videocanvas/internal/compositor"
	"github.com/ivlev/videocanvas/internal/element"
	"github.com/ivlev/videocanvas/internal/geometry"
	"github.com/ivlev/videocanvas/internal/objects"
	"github.com/ivlev/videocanvas/internal/surface"
	"github.com/ivlev/videocanvas/internal/timeline"
)

var errSurfaceReplaced = errors.New("surface was rebuilt during materialization")

// Batch is one AddElements call.
type Batch struct {
	Elements []element.Element
	// SeekTime is the playback position used for frame effects and snap times
	SeekTime float64
	Caption  *objects.CaptionProps
	// ReplaceExisting clears the surface before anything is inserted
	ReplaceExisting bool
}

// Report lists what happened to each element of a batch.
type Report struct {
	Added  []string
	Failed map[string]error
}

func (r *Report) fail(id string, err error) {
	if r.Failed == nil {
		r.Failed = make(map[string]error)
	}
	r.Failed[id] = err
}

// materialized: результат построения одного элемента
type materialized struct {
	el      element.Element
	objs    []*surface.Object
	active  *element.FrameEffect
	isVideo bool
	err     error
}

// AddElements materializes the batch concurrently and inserts the results in
// input order. A failing element is logged and reported; the rest of the
// batch is unaffected. Before Build the call only emits an ErrNotBuilt warning.
func (e *Engine) AddElements(ctx context.Context, b Batch) Report {
	var report Report

	e.mu.Lock()
	if e.state != Ready {
		state := e.state
		e.mu.Unlock()
		e.warn(fmt.Errorf("add elements (%s): %w", state, ErrNotBuilt))
		return report
	}
	s := e.surface
	if b.ReplaceExisting {
		s.Clear()
	}
	e.mu.Unlock()

	meta, _ := e.snapshot()

	results := make([]materialized, len(b.Elements))
	var g errgroup.Group
	for i := range b.Elements {
		el := b.Elements[i]
		if el.ID == "" {
			e.logger.Warn("element without id skipped", "index", i, "type", el.Type)
			continue
		}
		g.Go(func() error {
			results[i] = e.materialize(ctx, i, el.Clone(), b, meta)
			// ошибки элемента не прерывают пакет
			return nil
		})
	}
	_ = g.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range results {
		if r.el.ID == "" {
			continue
		}
		if r.err == nil && (e.state != Ready || e.surface != s) {
			r.err = errSurfaceReplaced
		}
		if r.err != nil {
			e.logger.Warn("element not added", "id", r.el.ID, "type", r.el.Type, "err", r.err)
			report.fail(r.el.ID, r.err)
			continue
		}

		s.Add(r.objs...)
		s.Render()
		e.store.Put(r.el)
		if r.isVideo {
			e.store.SetActiveFrameEffect(r.el.ID, r.active)
		}
		compositor.Reorder(s)
		report.Added = append(report.Added, r.el.ID)
	}

	e.logger.Debug("batch added", "added", len(report.Added), "failed", len(report.Failed))
	return report
}

func (e *Engine) materialize(ctx context.Context, index int, el element.Element, b Batch, meta geometry.CanvasMetadata) materialized {
	res := materialized{el: el}

	m, err := e.objects.For(el.Type)
	if err != nil {
		res.err = err
		return res
	}

	req := objects.Request{Element: el, Index: index, Canvas: meta}
	switch el.Type {
	case element.TypeVideo:
		res.isVideo = true
		res.active = timeline.ActiveFrameEffect(&el, b.SeekTime)
		req.FrameEffect = res.active
		req.SnapTime = timeline.SnapTime(&el, b.SeekTime)
	case element.TypeCaption:
		req.Caption = b.Caption
	}

	primary, err := e.produce(ctx, m, req)
	if err != nil {
		res.err = err
		return res
	}

	if el.IsScene() && (el.Type == element.TypeVideo || el.Type == element.TypeImage) && e.objects.Background != nil {
		bg, err := e.produce(ctx, e.objects.Background, req)
		if err != nil {
			res.err = fmt.Errorf("background: %w", err)
			return res
		}
		bg.Selectable = false
		// подложка вставляется раньше основного объекта и при равном
		// z-index остаётся под ним
		res.objs = append(res.objs, bg)
	}
	res.objs = append(res.objs, primary)
	return res
}

func (e *Engine) produce(ctx context.Context, m objects.Materializer, req objects.Request) (*surface.Object, error) {
	obj, err := m.Materialize(ctx, req)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%s materializer returned no object", req.Element.Type)
	}
	if obj.ID != req.Element.ID {
		return nil, fmt.Errorf("object tagged %q, want %q", obj.ID, req.Element.ID)
	}
	obj.ZIndex = req.Element.ZIndex
	if obj.ScaleX == 0 {
		obj.ScaleX = 1
	}
	if obj.ScaleY == 0 {
		obj.ScaleY = 1
	}
	return obj, nil
}
