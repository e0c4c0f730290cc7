// Package layout computes overlay geometry from a task count and a
// target rectangle. All functions are pure and cheap enough to rerun
// after every session change.
package layout

import "github.com/diegostafa/goto/internal/platform"

// Settings are the geometry knobs the layout engine honors. Everything
// else in the config (colors, fonts, markers) is presentation-only and
// never reaches this package.
type Settings struct {
	WidthPercent    int // panel width as a percentage of the target width
	LocationPercent int // panel top edge as a percentage of the target height
	TaskHeight      int // slot height in pixels
	Gap             int // pixels between adjacent slots
}

// Result is the computed geometry for one session frame. Slots is
// parallel to the task list it was computed for.
type Result struct {
	PanelBounds platform.Rect
	Slots       []platform.Rect
}

// Compute lays out count slots in a single horizontal row inside target.
//
// The panel is horizontally centered at WidthPercent of the target
// width, with its top edge at LocationPercent of the target height.
// Gaps appear only between slots: slot widths always sum to exactly
// panelWidth - (count-1)*gap, with the integer remainder going to the
// last slot. count == 0 yields a zero-size result the caller must not
// render.
func Compute(count int, target platform.Rect, settings Settings) Result {
	if count <= 0 {
		return Result{}
	}

	panelWidth := target.Width * settings.WidthPercent / 100
	panelHeight := settings.TaskHeight + 2*settings.Gap
	panelX := target.X + (target.Width-panelWidth)/2
	panelY := target.Y + target.Height*settings.LocationPercent/100

	panel := platform.Rect{
		X:      panelX,
		Y:      panelY,
		Width:  panelWidth,
		Height: panelHeight,
	}

	usable := panelWidth - (count-1)*settings.Gap
	if usable < count {
		usable = count // degenerate panel, keep every slot at least 1px
	}
	baseWidth := usable / count
	remainder := usable - baseWidth*count

	slotY := panelY + (panelHeight-settings.TaskHeight)/2
	slots := make([]platform.Rect, count)
	x := panelX
	for i := 0; i < count; i++ {
		width := baseWidth
		if i == count-1 {
			width += remainder
		}
		slots[i] = platform.Rect{
			X:      x,
			Y:      slotY,
			Width:  width,
			Height: settings.TaskHeight,
		}
		x += width + settings.Gap
	}

	return Result{PanelBounds: panel, Slots: slots}
}
