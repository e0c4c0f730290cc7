// Package switcher implements the switching session state machine and
// the controller that drives it from key events.
package switcher

import (
	"errors"
	"fmt"
	"log"

	"github.com/diegostafa/goto/internal/layout"
	"github.com/diegostafa/goto/internal/platform"
	"github.com/diegostafa/goto/internal/task"
)

// Session is one switching interaction, from first chord press to
// commit or cancel. It holds the window snapshot taken at open time;
// windows opened or closed afterwards do not affect it, except that
// stale handles fail soft on commit and kill.
type Session struct {
	backend   platform.Backend
	phase     Phase
	tasks     *task.List
	geometry  layout.Result
	selection int
	target    platform.Rect
	settings  layout.Settings
}

// NewSession creates an idle session bound to a backend.
func NewSession(backend platform.Backend, settings layout.Settings) *Session {
	return &Session{
		backend:  backend,
		phase:    PhaseIdle,
		settings: settings,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Selection returns the currently selected task index.
func (s *Session) Selection() int {
	return s.selection
}

// Tasks returns the session snapshot. Nil while idle.
func (s *Session) Tasks() *task.List {
	return s.tasks
}

// Geometry returns the layout computed for the current snapshot.
func (s *Session) Geometry() layout.Result {
	return s.geometry
}

// Open takes a window snapshot and moves Idle -> Browsing. The focused
// window is rotated to the back of the snapshot, so the default
// selection (index 0) is the previously focused window. An empty
// snapshot cancels immediately and the session stays Idle.
//
// Open while already Browsing is ignored: the chord that opened the
// session repeats as a Next event through a separate code path.
func (s *Session) Open() error {
	if s.phase != PhaseIdle {
		return nil
	}

	handles, err := s.backend.ListWindows()
	if err != nil {
		return fmt.Errorf("failed to enumerate windows: %w", err)
	}

	focused, err := s.backend.ActiveWindow()
	if err != nil {
		log.Printf("Switcher: could not resolve active window: %v", err)
		focused = 0
	}

	s.tasks = task.Build(handles, focused, s.backend.QueryMeta)
	if s.tasks.Empty() {
		log.Println("Switcher: no switchable windows, cancelling")
		s.phase = PhaseCancelling
		s.reset()
		return nil
	}

	target, err := s.backend.ScreenBounds()
	if err != nil {
		return fmt.Errorf("failed to get screen bounds: %w", err)
	}
	s.target = target

	s.selection = 0
	s.geometry = layout.Compute(s.tasks.Len(), s.target, s.settings)
	s.phase = PhaseBrowsing
	return nil
}

// Next advances the selection with modular wrap. Ignored unless Browsing.
func (s *Session) Next() {
	if s.phase != PhaseBrowsing {
		return
	}
	s.selection = (s.selection + 1) % s.tasks.Len()
}

// Prev retreats the selection with modular wrap. Ignored unless Browsing.
func (s *Session) Prev() {
	if s.phase != PhaseBrowsing {
		return
	}
	s.selection = (s.selection - 1 + s.tasks.Len()) % s.tasks.Len()
}

// Kill asks the selected window to close, drops it from the snapshot
// and clamps the selection. A vanished window is dropped silently.
// Emptying the snapshot cancels the session.
func (s *Session) Kill() {
	if s.phase != PhaseBrowsing {
		return
	}

	selected := s.tasks.At(s.selection)
	if err := s.backend.RequestClose(selected.Handle); err != nil {
		if !errors.Is(err, platform.ErrWindowGone) {
			log.Printf("Switcher: close request for window %d failed: %v", selected.Handle, err)
		}
	}

	s.tasks.Remove(s.selection)
	if s.tasks.Empty() {
		s.phase = PhaseCancelling
		s.reset()
		return
	}

	if s.selection > s.tasks.Len()-1 {
		s.selection = s.tasks.Len() - 1
	}
	s.geometry = layout.Compute(s.tasks.Len(), s.target, s.settings)
}

// Commit activates the selected window and returns the session to
// Idle. A stale handle is swallowed: the session still ends cleanly
// and no other window is activated in its place.
func (s *Session) Commit() {
	if s.phase != PhaseBrowsing {
		return
	}
	s.phase = PhaseCommitting

	selected := s.tasks.At(s.selection)
	if err := s.backend.Activate(selected.Handle); err != nil {
		if errors.Is(err, platform.ErrWindowGone) {
			log.Printf("Switcher: window %d vanished before commit", selected.Handle)
		} else {
			log.Printf("Switcher: failed to activate window %d: %v", selected.Handle, err)
		}
	}

	s.reset()
}

// Cancel tears the session down without activating anything.
func (s *Session) Cancel() {
	if s.phase != PhaseBrowsing {
		return
	}
	s.phase = PhaseCancelling
	s.reset()
}

func (s *Session) reset() {
	s.phase = PhaseIdle
	s.tasks = nil
	s.geometry = layout.Result{}
	s.selection = 0
}
