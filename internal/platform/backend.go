package platform

import "errors"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// WindowMeta is an immutable snapshot of window metadata taken at
// enumeration time. It may go stale if the window closes afterwards.
type WindowMeta struct {
	Title     string
	Class     string
	Minimized bool
	Sticky    bool
	Bounds    Rect // zero value when geometry could not be resolved
}

// ErrWindowGone is returned when an operation references a window that no
// longer exists. Callers treat it as a soft removal, never a fatal error.
var ErrWindowGone = errors.New("window no longer exists")

// Backend abstracts window-system operations across platforms.
type Backend interface {
	// ListWindows returns switchable windows, most-recently-used first.
	ListWindows() ([]WindowID, error)
	// ActiveWindow returns the currently focused window, 0 if none.
	ActiveWindow() (WindowID, error)
	// QueryMeta returns a metadata snapshot for a window.
	QueryMeta(id WindowID) (WindowMeta, error)
	// Activate raises and focuses a window.
	Activate(id WindowID) error
	// RequestClose asks a window to close gracefully.
	RequestClose(id WindowID) error
	// ScreenBounds returns the rectangle the switcher overlay targets.
	ScreenBounds() (Rect, error)
}
