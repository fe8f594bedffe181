// Package engine keeps an editing surface and the composition's element
// registry consistent. It builds the surface, materializes elements onto it
// and folds finished gestures back into element state.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ivlev/videocanvas/internal/config"
	"github.com/ivlev/videocanvas/internal/element"
	"github.com/ivlev/videocanvas/internal/geometry"
	"github.com/ivlev/videocanvas/internal/objects"
	"github.com/ivlev/videocanvas/internal/registry"
	"github.com/ivlev/videocanvas/internal/surface"
)

// State of the engine lifecycle.
type State int

const (
	Uninitialized State = iota
	Ready
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Operation is the kind of notification sent after a gesture.
type Operation string

const (
	OpItemSelected Operation = "ITEM_SELECTED"
	OpItemUpdated  Operation = "ITEM_UPDATED"
)

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSurfaceReady is called after every successful Build with the new surface.
func WithSurfaceReady(fn func(surface.Surface)) Option {
	return func(e *Engine) { e.onSurfaceReady = fn }
}

// WithOperation receives selection and update notifications. The element is
// a copy of the registry entry.
func WithOperation(fn func(Operation, element.Element)) Option {
	return func(e *Engine) { e.onOperation = fn }
}

// WithWarning receives non-fatal misuse, such as AddElements before Build.
func WithWarning(fn func(error)) Option {
	return func(e *Engine) { e.onWarning = fn }
}

// Engine is one editor session: a surface, its element registry and the
// gesture subscription that ties them together.
type Engine struct {
	factory surface.Factory
	objects *objects.Set
	store   *registry.Store
	logger  *slog.Logger

	onSurfaceReady func(surface.Surface)
	onOperation    func(Operation, element.Element)
	onWarning      func(error)

	// mu guards the lifecycle and serializes every surface mutation
	mu      sync.Mutex
	state   State
	surface surface.Surface
	off     func()

	metaMu sync.RWMutex
	meta   geometry.CanvasMetadata
	video  geometry.Dimensions
}

func New(factory surface.Factory, set *objects.Set, opts ...Option) *Engine {
	e := &Engine{
		factory: factory,
		objects: set,
		store:   registry.New(),
		logger:  slog.Default(),
		meta:    geometry.InitialMetadata(),
		video:   geometry.Dimensions{Width: 1, Height: 1},
	}
	for _, o := range opts {
		o(e)
	}
	if e.objects == nil {
		e.objects = objects.NewSet()
	}
	return e
}

func validate(props config.CanvasProps) error {
	if props.Target == "" {
		return &ConfigError{Field: "target", Err: ErrMissingTarget}
	}
	if err := props.VideoSize.Validate(); err != nil {
		return &ConfigError{Field: "videoSize", Err: err}
	}
	if err := props.CanvasSize.Validate(); err != nil {
		return &ConfigError{Field: "canvasSize", Err: err}
	}
	return nil
}

// Build creates a fresh surface. A surface built earlier is unsubscribed and
// disposed first, so only one gesture listener is ever attached.
func (e *Engine) Build(props config.CanvasProps) error {
	if err := validate(props); err != nil {
		return err
	}
	props = props.WithDefaults()

	e.mu.Lock()
	e.releaseLocked()

	s, meta, err := e.factory.Create(props)
	if err != nil {
		e.state = Uninitialized
		e.mu.Unlock()
		return fmt.Errorf("создание поверхности: %w", err)
	}

	e.metaMu.Lock()
	e.meta = meta
	e.video = props.VideoSize
	e.metaMu.Unlock()

	e.surface = s
	e.off = s.OnGestureEnd(e.handleGestureEnd)
	e.state = Ready
	e.mu.Unlock()

	e.logger.Info("surface built",
		"target", props.Target,
		"canvas", fmt.Sprintf("%gx%g", meta.Width, meta.Height),
		"video", fmt.Sprintf("%gx%g", props.VideoSize.Width, props.VideoSize.Height),
		"scaleX", meta.ScaleX, "scaleY", meta.ScaleY)

	if e.onSurfaceReady != nil {
		e.onSurfaceReady(s)
	}
	return nil
}

// releaseLocked отписывает обработчик и освобождает поверхность
func (e *Engine) releaseLocked() {
	if e.off != nil {
		e.off()
		e.off = nil
	}
	if e.surface != nil {
		if err := e.surface.Dispose(); err != nil && !errors.Is(err, surface.ErrDisposed) {
			e.logger.Warn("surface dispose failed", "err", err)
		}
		e.surface = nil
	}
}

// OnVideoSizeChange stores the new video size and recomputes the scale
// factors. Zero sizes are ignored. Before the first Build only the stored
// size changes.
func (e *Engine) OnVideoSizeChange(d geometry.Dimensions) {
	if err := d.Validate(); err != nil {
		e.logger.Debug("video size ignored", "err", err)
		return
	}

	e.metaMu.Lock()
	defer e.metaMu.Unlock()
	e.video = d
	if e.meta.Width > 0 && e.meta.Height > 0 {
		e.meta = geometry.RecomputeScale(e.meta, d)
	}
}

// Dispose detaches the listener and releases the surface. Calling it again
// is a no-op; a later Build starts a new session on the same registry.
func (e *Engine) Dispose() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Disposed {
		return nil
	}
	e.releaseLocked()
	e.state = Disposed
	return nil
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Surface returns the current surface or nil.
func (e *Engine) Surface() surface.Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface
}

func (e *Engine) CanvasMetadata() geometry.CanvasMetadata {
	e.metaMu.RLock()
	defer e.metaMu.RUnlock()
	return e.meta
}

func (e *Engine) VideoSize() geometry.Dimensions {
	e.metaMu.RLock()
	defer e.metaMu.RUnlock()
	return e.video
}

func (e *Engine) snapshot() (geometry.CanvasMetadata, geometry.Dimensions) {
	e.metaMu.RLock()
	defer e.metaMu.RUnlock()
	return e.meta, e.video
}

// Element returns a copy of the registry entry.
func (e *Engine) Element(id string) (element.Element, bool) {
	return e.store.Get(id)
}

// ActiveFrameEffect returns the frame effect recorded for a video element.
func (e *Engine) ActiveFrameEffect(id string) (element.FrameEffect, bool) {
	return e.store.ActiveFrameEffect(id)
}

// Revision grows with every registry write.
func (e *Engine) Revision() uint64 {
	return e.store.Version()
}

func (e *Engine) warn(err error) {
	e.logger.Warn(err.Error())
	if e.onWarning != nil {
		e.onWarning(err)
	}
}

func (e *Engine) notify(op Operation, el element.Element) {
	if e.onOperation != nil {
		e.onOperation(op, el)
	}
}
