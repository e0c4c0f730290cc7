//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/diegostafa/goto/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// ListWindows returns normal application windows in most-recently-used
// order. EWMH stacking order is bottom-to-top, so the list is reversed.
func (b *LinuxBackend) ListWindows() ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientListStacking()
	if err != nil {
		return nil, err
	}

	windows := make([]WindowID, 0, len(clients))
	for i := len(clients) - 1; i >= 0; i-- {
		windowID := clients[i]
		if !conn.IsNormalWindow(windowID) {
			continue
		}
		windows = append(windows, WindowID(windowID))
	}

	return windows, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// QueryMeta returns a metadata snapshot for a window.
// Returns ErrWindowGone when the window has vanished.
func (b *LinuxBackend) QueryMeta(id WindowID) (WindowMeta, error) {
	conn, err := b.connection()
	if err != nil {
		return WindowMeta{}, err
	}

	windowID := xproto.Window(id)
	if !conn.WindowExists(windowID) {
		return WindowMeta{}, fmt.Errorf("query meta for window %d: %w", id, ErrWindowGone)
	}

	meta := WindowMeta{
		Title:     conn.WindowTitle(windowID),
		Class:     conn.WindowClass(windowID),
		Minimized: conn.IsHidden(windowID),
		Sticky:    conn.IsSticky(windowID),
	}

	if x, y, w, h, err := conn.WindowRect(windowID); err == nil {
		meta.Bounds = Rect{X: x, Y: y, Width: w, Height: h}
	}

	return meta, nil
}

// Activate raises and focuses a window via _NET_ACTIVE_WINDOW.
func (b *LinuxBackend) Activate(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	windowID := xproto.Window(id)
	if !conn.WindowExists(windowID) {
		return fmt.Errorf("activate window %d: %w", id, ErrWindowGone)
	}

	if err := conn.FocusWindow(windowID); err != nil {
		return fmt.Errorf("activate window %d: %w", id, ErrWindowGone)
	}
	return nil
}

// RequestClose requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) RequestClose(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	windowID := xproto.Window(id)
	if !conn.WindowExists(windowID) {
		return fmt.Errorf("close window %d: %w", id, ErrWindowGone)
	}

	if err := conn.RequestClose(windowID); err != nil {
		return fmt.Errorf("close window %d: %w", id, ErrWindowGone)
	}
	return nil
}

// ScreenBounds returns the root screen geometry.
func (b *LinuxBackend) ScreenBounds() (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	w, h := conn.ScreenRect()
	return Rect{X: 0, Y: 0, Width: w, Height: h}, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
