package layout

import (
	"testing"

	"github.com/diegostafa/goto/internal/platform"
)

func TestComputeExactWidths(t *testing.T) {
	target := platform.Rect{X: 0, Y: 0, Width: 1000, Height: 100}
	settings := Settings{WidthPercent: 40, LocationPercent: 0, TaskHeight: 30, Gap: 4}

	result := Compute(3, target, settings)

	if result.PanelBounds.Width != 400 {
		t.Errorf("expected panel width 400, got %d", result.PanelBounds.Width)
	}
	if result.PanelBounds.X != 300 {
		t.Errorf("expected panel centered at x=300, got %d", result.PanelBounds.X)
	}

	sum := 0
	for _, slot := range result.Slots {
		sum += slot.Width
	}
	want := 400 - 2*settings.Gap
	if sum != want {
		t.Errorf("expected slot widths to sum to %d, got %d", want, sum)
	}
}

func TestComputeNoDriftAnyCount(t *testing.T) {
	target := platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	settings := Settings{WidthPercent: 70, LocationPercent: 50, TaskHeight: 40, Gap: 5}

	for count := 1; count <= 40; count++ {
		result := Compute(count, target, settings)

		if len(result.Slots) != count {
			t.Fatalf("count=%d: expected %d slots, got %d", count, count, len(result.Slots))
		}

		sum := 0
		for _, slot := range result.Slots {
			sum += slot.Width
		}
		want := result.PanelBounds.Width - (count-1)*settings.Gap
		if sum != want {
			t.Errorf("count=%d: slot widths sum to %d, want %d", count, sum, want)
		}

		// Adjacent slots must be separated by exactly one gap.
		for i := 1; i < count; i++ {
			prev := result.Slots[i-1]
			gap := result.Slots[i].X - (prev.X + prev.Width)
			if gap != settings.Gap {
				t.Errorf("count=%d: gap between slot %d and %d is %d, want %d",
					count, i-1, i, gap, settings.Gap)
			}
		}

		first := result.Slots[0]
		last := result.Slots[count-1]
		if first.X != result.PanelBounds.X {
			t.Errorf("count=%d: first slot starts at %d, panel at %d",
				count, first.X, result.PanelBounds.X)
		}
		if end := last.X + last.Width; end != result.PanelBounds.X+result.PanelBounds.Width {
			t.Errorf("count=%d: last slot ends at %d, panel ends at %d",
				count, end, result.PanelBounds.X+result.PanelBounds.Width)
		}
	}
}

func TestComputeZeroCount(t *testing.T) {
	target := platform.Rect{Width: 1000, Height: 1000}
	result := Compute(0, target, Settings{WidthPercent: 50, TaskHeight: 30})

	if result.PanelBounds != (platform.Rect{}) {
		t.Errorf("expected zero panel for zero count, got %+v", result.PanelBounds)
	}
	if len(result.Slots) != 0 {
		t.Errorf("expected no slots for zero count, got %d", len(result.Slots))
	}
}

func TestComputeSingleSlotFillsPanel(t *testing.T) {
	target := platform.Rect{Width: 800, Height: 600}
	settings := Settings{WidthPercent: 50, LocationPercent: 25, TaskHeight: 30, Gap: 6}

	result := Compute(1, target, settings)

	if len(result.Slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(result.Slots))
	}
	if result.Slots[0].Width != result.PanelBounds.Width {
		t.Errorf("expected single slot to span the panel: slot=%d panel=%d",
			result.Slots[0].Width, result.PanelBounds.Width)
	}
}

func TestComputeVerticalPlacement(t *testing.T) {
	target := platform.Rect{X: 100, Y: 200, Width: 1000, Height: 1000}
	settings := Settings{WidthPercent: 40, LocationPercent: 30, TaskHeight: 40, Gap: 10}

	result := Compute(2, target, settings)

	wantPanelY := 200 + 1000*30/100
	if result.PanelBounds.Y != wantPanelY {
		t.Errorf("expected panel y=%d, got %d", wantPanelY, result.PanelBounds.Y)
	}

	wantSlotY := wantPanelY + settings.Gap
	for i, slot := range result.Slots {
		if slot.Y != wantSlotY {
			t.Errorf("slot %d at y=%d, want %d", i, slot.Y, wantSlotY)
		}
		if slot.Height != settings.TaskHeight {
			t.Errorf("slot %d height %d, want %d", i, slot.Height, settings.TaskHeight)
		}
	}
}

func TestComputeRespectsTargetOffset(t *testing.T) {
	target := platform.Rect{X: 1920, Y: 0, Width: 1000, Height: 500}
	settings := Settings{WidthPercent: 50, LocationPercent: 0, TaskHeight: 30, Gap: 0}

	result := Compute(2, target, settings)

	if result.PanelBounds.X != 1920+250 {
		t.Errorf("expected panel offset into target monitor, got x=%d", result.PanelBounds.X)
	}
}
