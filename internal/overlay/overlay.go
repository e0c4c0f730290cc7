// Package overlay draws the switcher panel with X11 override-redirect
// windows, bypassing the window manager so the panel never enters the
// client list it is rendering.
package overlay

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/diegostafa/goto/internal/layout"
	"github.com/diegostafa/goto/internal/task"
)

const (
	textPaddingX       = 6
	textCharWidth      = 7
	textBaselineOffset = 4
)

// Style carries the presentation settings the overlay honors. Colors
// are 24-bit RGB pixels. The core never interprets any of this.
type Style struct {
	Background         uint32
	Border             uint32
	TaskBackground     uint32
	TaskForeground     uint32
	SelectedBackground uint32
	SelectedForeground uint32
	SelectedBorder     uint32
	Marker             string
	BorderWidth        int
}

// slotWindow is one selectable task cell inside the panel.
type slotWindow struct {
	win    xproto.Window
	mapped bool
}

// Manager implements the switcher Renderer over X11. Windows are
// created lazily on first render and reused across sessions; Hide
// unmaps them, Cleanup destroys them.
type Manager struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	style Style

	panel       xproto.Window
	panelMapped bool
	slots       []*slotWindow

	gc       xproto.Gcontext
	font     xproto.Font
	textOK   bool
	textInit bool
}

// NewManager creates an overlay manager. Rendering resources are
// allocated on first use.
func NewManager(xu *xgbutil.XUtil, root xproto.Window, style Style) *Manager {
	return &Manager{
		xu:    xu,
		root:  root,
		style: style,
	}
}

// SetStyle replaces the presentation settings for future renders.
func (m *Manager) SetStyle(style Style) {
	m.style = style
}

// Render draws the panel and one cell per task, highlighting the
// selection. Safe to call for every session change; windows are reused.
func (m *Manager) Render(geometry layout.Result, tasks []task.Task, selection int) error {
	if len(geometry.Slots) != len(tasks) {
		return fmt.Errorf("slot/task length mismatch: %d vs %d", len(geometry.Slots), len(tasks))
	}
	if len(tasks) == 0 {
		m.Hide()
		return nil
	}

	if err := m.ensurePanel(); err != nil {
		return err
	}
	if err := m.ensureSlots(len(tasks)); err != nil {
		return err
	}

	conn := m.xu.Conn()

	panel := geometry.PanelBounds
	m.updateWindow(m.panel, panel.X, panel.Y, panel.Width, panel.Height, m.style.Background, m.style.Border)
	xproto.MapWindow(conn, m.panel)
	m.panelMapped = true

	for i, slot := range geometry.Slots {
		cell := m.slots[i]
		selected := i == selection

		bg, fg, border := m.style.TaskBackground, m.style.TaskForeground, m.style.Border
		if selected {
			bg, fg, border = m.style.SelectedBackground, m.style.SelectedForeground, m.style.SelectedBorder
		}

		m.updateWindow(cell.win, slot.X, slot.Y, slot.Width, slot.Height, bg, border)
		xproto.MapWindow(conn, cell.win)
		cell.mapped = true

		label := tasks[i].Meta.Title
		if label == "" {
			label = tasks[i].Meta.Class
		}
		if selected && m.style.Marker != "" {
			label = m.style.Marker + " " + label
		}
		m.drawLabel(cell.win, label, slot.Width, slot.Height, fg, bg)
	}

	// Surplus cells from a previous, larger session stay unmapped.
	for i := len(tasks); i < len(m.slots); i++ {
		m.hideSlot(m.slots[i])
	}

	return nil
}

// Hide unmaps every overlay window without destroying it.
func (m *Manager) Hide() {
	if m.xu == nil {
		return
	}
	if m.panelMapped {
		xproto.UnmapWindow(m.xu.Conn(), m.panel)
		m.panelMapped = false
	}
	for _, cell := range m.slots {
		m.hideSlot(cell)
	}
}

// Cleanup destroys all overlay windows and text resources.
func (m *Manager) Cleanup() {
	if m.xu == nil {
		return
	}
	conn := m.xu.Conn()

	for _, cell := range m.slots {
		if cell.win != 0 {
			xproto.DestroyWindow(conn, cell.win)
		}
	}
	m.slots = nil

	if m.panel != 0 {
		xproto.DestroyWindow(conn, m.panel)
		m.panel = 0
		m.panelMapped = false
	}

	if m.gc != 0 {
		xproto.FreeGC(conn, m.gc)
		m.gc = 0
	}
	if m.font != 0 {
		xproto.CloseFont(conn, m.font)
		m.font = 0
	}
	m.textOK = false
	m.textInit = false
}

func (m *Manager) hideSlot(cell *slotWindow) {
	if !cell.mapped {
		return
	}
	xproto.UnmapWindow(m.xu.Conn(), cell.win)
	cell.mapped = false
}

func (m *Manager) ensurePanel() error {
	if m.panel != 0 {
		return nil
	}
	win, err := m.createOverrideRedirectWindow()
	if err != nil {
		return err
	}
	m.panel = win
	return nil
}

func (m *Manager) ensureSlots(count int) error {
	for len(m.slots) < count {
		win, err := m.createOverrideRedirectWindow()
		if err != nil {
			return err
		}
		m.slots = append(m.slots, &slotWindow{win: win})
	}
	return nil
}

// createOverrideRedirectWindow creates a window the window manager
// will not reparent or list.
func (m *Manager) createOverrideRedirectWindow() (xproto.Window, error) {
	conn := m.xu.Conn()
	screen := m.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		m.root,
		0, 0, // x, y (set on render)
		1, 1, // width, height (set on render)
		uint16(m.style.BorderWidth),
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		// Value list order follows the bit positions of the mask.
		// CwBackPixel comes before CwOverrideRedirect, so it is first.
		[]uint32{0, 1},
	).Check()
	if err != nil {
		return 0, err
	}

	return wid, nil
}

// updateWindow moves, resizes and recolors a window, keeping it on top.
func (m *Manager) updateWindow(wid xproto.Window, x, y, width, height int, bg, border uint32) {
	conn := m.xu.Conn()

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	xproto.ConfigureWindow(
		conn,
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove,
		},
	)

	xproto.ChangeWindowAttributes(
		conn,
		wid,
		xproto.CwBackPixel|xproto.CwBorderPixel,
		[]uint32{bg, border},
	)

	xproto.ClearArea(conn, false, wid, 0, 0, 0, 0)
}

func (m *Manager) drawLabel(wid xproto.Window, label string, width, height int, fg, bg uint32) {
	if label == "" {
		return
	}
	if !m.ensureTextResources() {
		return
	}

	maxChars := (width - 2*textPaddingX) / textCharWidth
	if maxChars < 1 {
		return
	}
	if len(label) > maxChars {
		label = label[:maxChars]
	}
	if len(label) > 255 {
		label = label[:255]
	}

	conn := m.xu.Conn()
	xproto.ChangeGC(
		conn,
		m.gc,
		xproto.GcForeground|xproto.GcBackground,
		[]uint32{fg, bg},
	)

	baseline := height/2 + textBaselineOffset
	xproto.ImageText8(
		conn,
		byte(len(label)),
		xproto.Drawable(wid),
		m.gc,
		int16(textPaddingX),
		int16(baseline),
		label,
	)
}

// ensureTextResources opens a core font and a shared GC. When no core
// font is available, labels are skipped and the panel renders bare.
func (m *Manager) ensureTextResources() bool {
	if m.textInit {
		return m.textOK
	}
	m.textInit = true

	conn := m.xu.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return false
	}

	fontNames := []string{"fixed", "9x15", "8x13", "6x13"}
	opened := false
	for _, fontName := range fontNames {
		if xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		return false
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		return false
	}

	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(m.panel),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{
			m.style.TaskForeground,
			m.style.TaskBackground,
			uint32(font),
			0, // graphics_exposures=false
		},
	).Check()
	if err != nil {
		xproto.FreeGC(conn, gc)
		xproto.CloseFont(conn, font)
		return false
	}

	m.font = font
	m.gc = gc
	m.textOK = true
	return true
}
