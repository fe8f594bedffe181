package surface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ivlev/videocanvas/internal/config"
	"github.com/ivlev/videocanvas/internal/geometry"
)

var (
	ErrDisposed = errors.New("surface disposed")
	ErrNotFound = errors.New("object not found")
)

var _ Surface = (*Memory)(nil)

// Memory хранит объекты и подписчиков в памяти, ничего не отрисовывая
type Memory struct {
	mu       sync.Mutex
	props    config.CanvasProps
	objects  []*Object
	handlers map[int]GestureHandler
	nextID   int
	renders  int
	disposed bool
}

func NewMemory(props config.CanvasProps) *Memory {
	return &Memory{
		props:    props,
		handlers: make(map[int]GestureHandler),
	}
}

func (m *Memory) Props() config.CanvasProps {
	return m.props
}

func (m *Memory) Add(objs ...*Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	m.objects = append(m.objects, objs...)
}

func (m *Memory) Objects() []*Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Object, len(m.objects))
	copy(out, m.objects)
	return out
}

func (m *Memory) SetOrder(objs []*Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	m.objects = append(m.objects[:0:0], objs...)
}

func (m *Memory) Clear() {
	m.mu.Lock()
	m.objects = nil
	m.mu.Unlock()
}

func (m *Memory) Render() {
	m.mu.Lock()
	m.renders++
	m.mu.Unlock()
}

func (m *Memory) Renders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renders
}

func (m *Memory) OnGestureEnd(h GestureHandler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.handlers, id)
			m.mu.Unlock()
		})
	}
}

// Handlers: число активных подписчиков
func (m *Memory) Handlers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

// Lookup находит интерактивный объект по идентификатору элемента
func (m *Memory) Lookup(id string) *Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.objects {
		if o.ID == id && o.Kind != KindBackground {
			return o
		}
	}
	return nil
}

// EndGesture рассылает событие завершения жеста всем подписчикам синхронно
func (m *Memory) EndGesture(ev GestureEvent) error {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return ErrDisposed
	}
	handlers := make([]GestureHandler, 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

// Drag перемещает объект и завершает жест перетаскивания
func (m *Memory) Drag(obj *Object, left, top float64) error {
	m.mu.Lock()
	orig := Original{Left: obj.Left, Top: obj.Top}
	obj.Left, obj.Top = left, top
	m.mu.Unlock()
	return m.EndGesture(GestureEvent{
		Target:    obj,
		Transform: &Transform{Action: ActionDrag, Original: orig},
	})
}

// Apply изменяет объект элемента id функцией fn и завершает жест action.
// Исходная позиция берётся до изменения.
func (m *Memory) Apply(id string, action Action, fn func(*Object)) error {
	obj := m.Lookup(id)
	if obj == nil {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	m.mu.Lock()
	orig := Original{Left: obj.Left, Top: obj.Top}
	fn(obj)
	m.mu.Unlock()
	return m.EndGesture(GestureEvent{
		Target:    obj,
		Transform: &Transform{Action: action, Original: orig},
	})
}

func (m *Memory) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

func (m *Memory) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}
	m.disposed = true
	m.objects = nil
	m.handlers = make(map[int]GestureHandler)
	return nil
}

// MemoryFactory создаёт Memory-поверхности и запоминает последнюю
type MemoryFactory struct {
	mu      sync.Mutex
	created []*Memory
}

func (f *MemoryFactory) Create(props config.CanvasProps) (Surface, geometry.CanvasMetadata, error) {
	if err := props.CanvasSize.Validate(); err != nil {
		return nil, geometry.CanvasMetadata{}, err
	}
	if err := props.VideoSize.Validate(); err != nil {
		return nil, geometry.CanvasMetadata{}, err
	}

	m := NewMemory(props)
	f.mu.Lock()
	f.created = append(f.created, m)
	f.mu.Unlock()
	return m, geometry.NewCanvasMetadata(props.CanvasSize, props.VideoSize), nil
}

// Last возвращает последнюю созданную поверхность или nil
func (f *MemoryFactory) Last() *Memory {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

func (f *MemoryFactory) Created() []*Memory {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Memory, len(f.created))
	copy(out, f.created)
	return out
}
