// Package editor implements the canvas editing session: a state machine
// over one template's component list, mutated by the canvas (select, drag,
// add, delete) and by the property inspector (validated patches). The
// session owns only in-memory state; persistence stays with the caller,
// which is told about every change through a synchronous callback.
package editor

import (
	"errors"
	"fmt"

	"credential-service/internal/layout"
	"credential-service/internal/models"
)

// State is the interaction state of the canvas.
type State int

const (
	Idle State = iota
	Selected
	Dragging
)

var (
	ErrNoSelection   = errors.New("no component selected")
	ErrNotDragging   = errors.New("no drag in progress")
	ErrUnknownTarget = errors.New("component not found")
)

// Session is single-user and single-goroutine by design: every interaction
// is a synchronous state transition, mirroring a UI event loop.
type Session struct {
	surface    models.Surface
	components []models.Component
	selectedID string
	state      State
	onChange   func([]models.Component)
	saving     bool
}

// NewSession opens an editing session over a component list. onChange is
// invoked synchronously after every mutation so the enclosing page can
// track unsaved state; it may be nil.
func NewSession(surface models.Surface, components []models.Component, onChange func([]models.Component)) *Session {
	own := make([]models.Component, len(components))
	copy(own, components)
	return &Session{
		surface:    surface,
		components: own,
		onChange:   onChange,
	}
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange(s.Components())
	}
}

// Components returns a copy of the current component list.
func (s *Session) Components() []models.Component {
	out := make([]models.Component, len(s.components))
	copy(out, s.components)
	return out
}

// State returns the current interaction state.
func (s *Session) State() State { return s.state }

// Surface returns the surface the session edits against.
func (s *Session) Surface() models.Surface { return s.surface }

// Selected returns the currently selected component.
func (s *Session) Selected() (models.Component, bool) {
	if s.selectedID == "" {
		return models.Component{}, false
	}
	return layout.Find(s.components, s.selectedID)
}

// Select transitions Idle or Selected to Selected on the given component.
func (s *Session) Select(id string) error {
	if _, ok := layout.Find(s.components, id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, id)
	}
	s.selectedID = id
	s.state = Selected
	return nil
}

// Deselect returns the canvas to Idle.
func (s *Session) Deselect() {
	s.selectedID = ""
	s.state = Idle
}

// AddComponent appends a new component of the given type at its default
// position and immediately selects it.
func (s *Session) AddComponent(t models.ComponentType) models.Component {
	c := s.clamp(layout.NewComponent(t))
	s.components = layout.Add(s.components, c)
	s.selectedID = c.ID
	s.state = Selected
	s.notify()
	return c
}

// StartDrag begins moving the selected component.
func (s *Session) StartDrag() error {
	if s.state != Selected {
		return ErrNoSelection
	}
	s.state = Dragging
	return nil
}

// DragTo moves the selected component while dragging, bounded to the
// surface. Intermediate positions are not reported as changes; only the
// drag-end commit is.
func (s *Session) DragTo(x, y int) error {
	if s.state != Dragging {
		return ErrNotDragging
	}
	return s.moveSelected(x, y, false)
}

// EndDrag commits the final absolute position and returns to Selected.
// Because the commit writes absolute coordinates, a drag-end event that
// fires twice replays to the same template.
func (s *Session) EndDrag(x, y int) error {
	if s.state != Dragging && s.state != Selected {
		return ErrNoSelection
	}
	if err := s.moveSelected(x, y, true); err != nil {
		return err
	}
	s.state = Selected
	return nil
}

func (s *Session) moveSelected(x, y int, commit bool) error {
	c, ok := s.Selected()
	if !ok {
		return ErrNoSelection
	}
	c.X = x
	c.Y = y
	c = s.clamp(c)
	s.components = layout.Update(s.components, c)
	if commit {
		s.notify()
	}
	return nil
}

// DeleteSelected removes the selected component and returns to Idle, which
// also clears the property inspector.
func (s *Session) DeleteSelected() error {
	if s.selectedID == "" {
		return ErrNoSelection
	}
	s.components = layout.Remove(s.components, s.selectedID)
	s.selectedID = ""
	s.state = Idle
	s.notify()
	return nil
}

// clamp keeps a component within the surface bounds. Components larger
// than the surface pin to the origin.
func (s *Session) clamp(c models.Component) models.Component {
	maxX := s.surface.Width - c.Width
	maxY := s.surface.Height - c.Height
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	if c.X < 0 {
		c.X = 0
	}
	if c.X > maxX {
		c.X = maxX
	}
	if c.Y < 0 {
		c.Y = 0
	}
	if c.Y > maxY {
		c.Y = maxY
	}
	return c
}

// BeginSave marks a save as in flight; it reports false when one already
// is, which is how the UI prevents overlapping saves of the same template.
func (s *Session) BeginSave() bool {
	if s.saving {
		return false
	}
	s.saving = true
	return true
}

// FinishSave clears the in-flight save flag.
func (s *Session) FinishSave() { s.saving = false }
