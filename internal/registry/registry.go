package registry

import (
	"sync"

	"github.com/ivlev/videocanvas/internal/element"
)

// Store: реестр элементов одной сессии редактора:
// id -> проекция элемента и id -> активный frame effect.
// Записи не удаляются; очистка только через Reset.
type Store struct {
	mu       sync.RWMutex
	elements map[string]element.Element
	frames   map[string]element.FrameEffect
	version  uint64
}

func New() *Store {
	return &Store{
		elements: make(map[string]element.Element),
		frames:   make(map[string]element.FrameEffect),
	}
}

// Get возвращает копию элемента
func (s *Store) Get(id string) (element.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.elements[id]
	if !ok {
		return element.Element{}, false
	}
	return el.Clone(), true
}

func (s *Store) Put(el element.Element) {
	s.mu.Lock()
	s.elements[el.ID] = el.Clone()
	s.version++
	s.mu.Unlock()
}

// SetActiveFrameEffect запоминает активный эффект; nil удаляет запись.
func (s *Store) SetActiveFrameEffect(id string, fe *element.FrameEffect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fe == nil {
		delete(s.frames, id)
		return
	}
	s.frames[id] = *fe
}

func (s *Store) ActiveFrameEffect(id string) (element.FrameEffect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fe, ok := s.frames[id]
	return fe, ok
}

// UpdateFunc получает изменяемую копию элемента и активный эффект (nil, если его нет).
// Изменения active сохраняются в карту активных эффектов.
type UpdateFunc func(el *element.Element, active *element.FrameEffect)

// Update выполняет read-modify-write под одной блокировкой.
// Возвращает обновлённую копию; false, если элемента нет.
func (s *Store) Update(id string, fn UpdateFunc) (element.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.elements[id]
	if !ok {
		return element.Element{}, false
	}
	el := cur.Clone()

	var active *element.FrameEffect
	if fe, ok := s.frames[id]; ok {
		active = &fe
	}

	fn(&el, active)

	s.elements[id] = el
	if active != nil {
		s.frames[id] = *active
	}
	s.version++
	return el.Clone(), true
}

// Version растёт на каждой записи элемента (Put/Update)
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.elements = make(map[string]element.Element)
	s.frames = make(map[string]element.FrameEffect)
	s.version++
	s.mu.Unlock()
}
