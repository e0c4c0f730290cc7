// Package hotkeys owns both key surfaces of the switcher: the global
// chords that open a session, and the modal keyboard grab that routes
// every key to the session while it is browsing.
package hotkeys

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/diegostafa/goto/internal/platform"
)

const keysymEscape = 0xff1b

// Controller is the subset of the switcher controller the key layer
// drives.
type Controller interface {
	IsActive() bool
	Open()
	Next()
	Prev()
	Kill()
	Commit()
	Cancel()
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Bindings are the key sequences the switcher reacts to. Next and Prev
// are full keybind chords; Kill is a bare key pressed while the chord
// modifier is held; Modifier names the commit modifier (mod4, mod1,
// control or shift).
type Bindings struct {
	Next     string
	Prev     string
	Kill     string
	Modifier string
}

type chordBinding struct {
	mods     uint16
	keycodes []xproto.Keycode
}

// Handler registers the global chords and implements the modal
// keyboard grab the controller scopes to the browsing phase.
type Handler struct {
	xu         *xgbutil.XUtil
	root       xproto.Window
	controller Controller

	next         chordBinding
	prev         chordBinding
	kill         chordBinding
	modifierKeys []xproto.Keycode

	grabWindow         xproto.Window
	keyHandlerAttached bool
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler over an X11-capable backend.
func NewHandler(backend platform.Backend) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("backend does not expose X11 internals")
	}
	xu := accessor.XUtil()
	root := accessor.RootWindow()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{xu: xu, root: root}, nil
}

// SetController sets the switcher controller reference.
func (h *Handler) SetController(c Controller) {
	h.controller = c
}

// Register resolves the configured bindings and registers the global
// chords. The chord that opens a session also cycles it, so a repeated
// press while browsing advances the selection instead of reopening.
func (h *Handler) Register(bindings Bindings) error {
	if h.controller == nil {
		return fmt.Errorf("controller not set")
	}

	var err error
	if h.next, err = h.parseChord(bindings.Next); err != nil {
		return fmt.Errorf("invalid next binding %q: %w", bindings.Next, err)
	}
	if h.prev, err = h.parseChord(bindings.Prev); err != nil {
		return fmt.Errorf("invalid prev binding %q: %w", bindings.Prev, err)
	}
	if h.kill, err = h.parseChord(bindings.Kill); err != nil {
		return fmt.Errorf("invalid kill binding %q: %w", bindings.Kill, err)
	}
	h.modifierKeys = modifierKeycodes(h.xu, bindings.Modifier)
	if len(h.modifierKeys) == 0 {
		return fmt.Errorf("unknown commit modifier %q", bindings.Modifier)
	}

	if err := h.registerChord(bindings.Next, h.controller.Open); err != nil {
		return fmt.Errorf("failed to register next chord: %w", err)
	}
	if err := h.registerChord(bindings.Prev, func() {
		// Opening backwards lands on the default selection too; the
		// first visible difference appears on the following press.
		h.controller.Open()
	}); err != nil {
		return fmt.Errorf("failed to register prev chord: %w", err)
	}

	return nil
}

func (h *Handler) registerChord(sequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, sequence, true)
}

func (h *Handler) parseChord(sequence string) (chordBinding, error) {
	mods, keycodes, err := keybind.ParseString(h.xu, sequence)
	if err != nil {
		return chordBinding{}, err
	}
	if len(keycodes) == 0 {
		return chordBinding{}, fmt.Errorf("no keycode for sequence")
	}
	return chordBinding{mods: mods, keycodes: keycodes}, nil
}

// Grab takes the modal keyboard grab for a browsing session. Implements
// the controller's KeyboardGrabber.
func (h *Handler) Grab() error {
	if err := h.ensureGrabWindow(); err != nil {
		return err
	}

	grab := func() (*xproto.GrabKeyboardReply, error) {
		cookie := xproto.GrabKeyboard(
			h.xu.Conn(),
			false,                  // owner_events (report events to grab_window)
			h.root,                 // grab_window (must be viewable)
			xproto.TimeCurrentTime, // time
			xproto.GrabModeAsync,   // pointer_mode
			xproto.GrabModeAsync,   // keyboard_mode
		)
		return cookie.Reply()
	}

	reply, err := grab()
	if err != nil {
		return err
	}

	// The opening chord is a globally grabbed hotkey, so the keyboard
	// may already be grabbed by this client. Ungrab and retry.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(h.xu.Conn(), xproto.TimeCurrentTime)
		reply, err = grab()
		if err != nil {
			return err
		}
	}

	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}

	xevent.RedirectKeyEvents(h.xu, h.grabWindow)

	if !h.keyHandlerAttached {
		xevent.KeyPressFun(h.handleKeyPress).Connect(h.xu, h.grabWindow)
		xevent.KeyReleaseFun(h.handleKeyRelease).Connect(h.xu, h.grabWindow)
		h.keyHandlerAttached = true
	}

	log.Println("Hotkeys: keyboard grabbed")
	return nil
}

// Ungrab releases the modal keyboard grab.
func (h *Handler) Ungrab() {
	xproto.UngrabKeyboard(h.xu.Conn(), xproto.TimeCurrentTime)
	xevent.RedirectKeyEvents(h.xu, 0)

	if h.keyHandlerAttached && h.grabWindow != 0 {
		xevent.Detach(h.xu, h.grabWindow)
		h.keyHandlerAttached = false
	}

	log.Println("Hotkeys: keyboard released")
}

func (h *Handler) ensureGrabWindow() error {
	if h.grabWindow != 0 {
		return nil
	}

	conn := h.xu.Conn()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}

	// InputOnly window that never draws anything; used solely as a safe
	// target for key event callbacks while the keyboard is grabbed.
	err = xproto.CreateWindowChecked(
		conn,
		0, // depth (must be 0 for InputOnly)
		wid,
		h.root,
		0, 0, // x, y
		1, 1, // width, height
		0, // border_width
		xproto.WindowClassInputOnly,
		xproto.Visualid(0), // CopyFromParent
		xproto.CwEventMask,
		[]uint32{uint32(xproto.EventMaskKeyPress | xproto.EventMaskKeyRelease)},
	).Check()
	if err != nil {
		return err
	}

	xproto.MapWindow(conn, wid)

	h.grabWindow = wid
	return nil
}

// handleKeyPress routes keys to the session while the keyboard is grabbed
func (h *Handler) handleKeyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	if h.controller == nil || !h.controller.IsActive() {
		return
	}

	keysym := keybind.KeysymGet(xu, ev.Detail, 0)
	if keysym == keysymEscape {
		h.controller.Cancel()
		return
	}

	// Prev carries more modifiers than Next (usually Shift), so it is
	// matched first.
	switch {
	case matchesChord(ev.Detail, ev.State, h.prev):
		h.controller.Prev()
	case matchesChord(ev.Detail, ev.State, h.next):
		h.controller.Next()
	case matchesKey(ev.Detail, h.kill):
		h.controller.Kill()
	}
}

// handleKeyRelease commits the session when the chord modifier is let go
func (h *Handler) handleKeyRelease(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
	if h.controller == nil || !h.controller.IsActive() {
		return
	}

	for _, keycode := range h.modifierKeys {
		if ev.Detail == keycode {
			h.controller.Commit()
			return
		}
	}
}

// matchesChord matches keycode plus modifier state. Shift presence must
// agree exactly so Tab and Shift-Tab stay distinct; other held
// modifiers (the chord modifier itself, locks) are tolerated.
func matchesChord(detail xproto.Keycode, state uint16, binding chordBinding) bool {
	if !matchesKey(detail, binding) {
		return false
	}
	if state&binding.mods != binding.mods {
		return false
	}
	wantShift := binding.mods&xproto.ModMaskShift != 0
	haveShift := state&xproto.ModMaskShift != 0
	return wantShift == haveShift
}

func matchesKey(detail xproto.Keycode, binding chordBinding) bool {
	for _, keycode := range binding.keycodes {
		if detail == keycode {
			return true
		}
	}
	return false
}

// modifierKeycodes resolves a modifier name to the keycodes whose
// release commits the session.
func modifierKeycodes(xu *xgbutil.XUtil, modifier string) []xproto.Keycode {
	var names []string
	switch strings.ToLower(modifier) {
	case "mod4", "super":
		names = []string{"Super_L", "Super_R"}
	case "mod1", "alt":
		names = []string{"Alt_L", "Alt_R"}
	case "control", "ctrl":
		names = []string{"Control_L", "Control_R"}
	case "shift":
		names = []string{"Shift_L", "Shift_R"}
	default:
		return nil
	}

	var keycodes []xproto.Keycode
	for _, name := range names {
		keycodes = append(keycodes, keybind.StrToKeycodes(xu, name)...)
	}
	return keycodes
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
