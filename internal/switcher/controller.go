package switcher

import (
	"log"
	"sync"
	"time"

	"github.com/diegostafa/goto/internal/layout"
	"github.com/diegostafa/goto/internal/platform"
	"github.com/diegostafa/goto/internal/task"
)

// Default timeout for a browsing session (in seconds)
const DefaultTimeout = 10

// Renderer presents a session to the user. The controller calls Render
// after every visible change and Hide on every path back to idle.
type Renderer interface {
	Render(geometry layout.Result, tasks []task.Task, selection int) error
	Hide()
}

// KeyboardGrabber scopes a modal keyboard grab to the browsing phase.
// Implementations may be nil-safe no-ops for tests and the picker.
type KeyboardGrabber interface {
	Grab() error
	Ungrab()
}

// Controller owns at most one live session and serializes all events
// onto it. Every mutation happens under the mutex; the event handlers
// are safe to call from X event callbacks and the IPC server alike.
type Controller struct {
	mu              sync.Mutex
	session         *Session
	renderer        Renderer
	grabber         KeyboardGrabber
	timeout         *time.Timer
	timeoutDuration time.Duration
}

// NewController creates a controller around a backend. renderer and
// grabber may be nil.
func NewController(backend platform.Backend, settings layout.Settings, renderer Renderer, grabber KeyboardGrabber, timeoutSeconds int) *Controller {
	timeout := DefaultTimeout
	if timeoutSeconds > 0 {
		timeout = timeoutSeconds
	}

	return &Controller{
		session:         NewSession(backend, settings),
		renderer:        renderer,
		grabber:         grabber,
		timeoutDuration: time.Duration(timeout) * time.Second,
	}
}

// IsActive returns true if a session is currently browsing.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Phase() == PhaseBrowsing
}

// Open starts a new session. Ignored while one is already live.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase() != PhaseIdle {
		return
	}

	log.Println("Switcher: opening session")

	if err := c.session.Open(); err != nil {
		log.Printf("Switcher: failed to open session: %v", err)
		return
	}
	if c.session.Phase() != PhaseBrowsing {
		// Empty snapshot, nothing to show.
		return
	}

	if c.grabber != nil {
		if err := c.grabber.Grab(); err != nil {
			log.Printf("Switcher: failed to grab keyboard: %v", err)
			c.session.Cancel()
			return
		}
	}

	c.render()
	c.startTimeout()
	log.Printf("Switcher: browsing %d windows", c.session.Tasks().Len())
}

// Next advances the selection.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase() != PhaseBrowsing {
		return
	}
	c.session.Next()
	c.render()
	c.startTimeout()
}

// Prev retreats the selection.
func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase() != PhaseBrowsing {
		return
	}
	c.session.Prev()
	c.render()
	c.startTimeout()
}

// Kill closes the selected window and keeps browsing, unless the
// snapshot empties, which cancels the session.
func (c *Controller) Kill() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase() != PhaseBrowsing {
		return
	}
	c.session.Kill()
	if c.session.Phase() != PhaseBrowsing {
		c.teardownLocked()
		return
	}
	c.render()
	c.startTimeout()
}

// Commit activates the selected window and ends the session.
func (c *Controller) Commit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase() != PhaseBrowsing {
		return
	}
	log.Println("Switcher: committing selection")
	c.session.Commit()
	c.teardownLocked()
}

// Cancel ends the session without activating anything.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase() != PhaseBrowsing {
		return
	}
	log.Println("Switcher: cancelled")
	c.session.Cancel()
	c.teardownLocked()
}

// Selection returns the current selection index, -1 while idle.
func (c *Controller) Selection() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase() != PhaseBrowsing {
		return -1
	}
	return c.session.Selection()
}

// Phase returns the live session phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Phase()
}

// UpdateSettings replaces the layout settings and timeout for future
// sessions. A live session keeps the geometry it opened with.
func (c *Controller) UpdateSettings(settings layout.Settings, timeoutSeconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.settings = settings

	timeout := DefaultTimeout
	if timeoutSeconds > 0 {
		timeout = timeoutSeconds
	}
	c.timeoutDuration = time.Duration(timeout) * time.Second
}

// teardownLocked releases everything scoped to the browsing phase.
// Runs on every path back to idle: commit, cancel, kill-to-empty and
// the defensive timeout.
func (c *Controller) teardownLocked() {
	if c.timeout != nil {
		c.timeout.Stop()
		c.timeout = nil
	}
	if c.grabber != nil {
		c.grabber.Ungrab()
	}
	if c.renderer != nil {
		c.renderer.Hide()
	}
}

func (c *Controller) render() {
	if c.renderer == nil {
		return
	}
	if err := c.renderer.Render(c.session.Geometry(), c.session.Tasks().Tasks(), c.session.Selection()); err != nil {
		log.Printf("Switcher: overlay render failed: %v", err)
	}
}

// startTimeout arms or rearms the auto-cancel timer. A missed modifier
// release event would otherwise leave the keyboard grabbed forever.
func (c *Controller) startTimeout() {
	if c.timeout != nil {
		c.timeout.Stop()
	}

	c.timeout = time.AfterFunc(c.timeoutDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.session.Phase() == PhaseBrowsing {
			log.Println("Switcher: timeout - auto-cancelling")
			c.session.Cancel()
			c.teardownLocked()
		}
	})
}
