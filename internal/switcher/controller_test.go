package switcher

import (
	"errors"
	"testing"

	"github.com/diegostafa/goto/internal/layout"
	"github.com/diegostafa/goto/internal/platform"
	"github.com/diegostafa/goto/internal/task"
)

type fakeRenderer struct {
	renders    int
	hides      int
	selections []int
	lastCount  int
	failRender bool
}

func (r *fakeRenderer) Render(geometry layout.Result, tasks []task.Task, selection int) error {
	r.renders++
	r.selections = append(r.selections, selection)
	r.lastCount = len(tasks)
	if r.failRender {
		return errors.New("render failed")
	}
	return nil
}

func (r *fakeRenderer) Hide() {
	r.hides++
}

type fakeGrabber struct {
	grabs   int
	ungrabs int
	fail    bool
}

func (g *fakeGrabber) Grab() error {
	if g.fail {
		return errors.New("grab denied")
	}
	g.grabs++
	return nil
}

func (g *fakeGrabber) Ungrab() {
	g.ungrabs++
}

func newTestController(backend *fakeBackend) (*Controller, *fakeRenderer, *fakeGrabber) {
	renderer := &fakeRenderer{}
	grabber := &fakeGrabber{}
	return NewController(backend, testSettings, renderer, grabber, 0), renderer, grabber
}

func TestControllerEndToEnd(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{1, 2, 3}, 1)
	c, renderer, grabber := newTestController(backend)

	c.Open()
	if !c.IsActive() {
		t.Fatal("expected active session after open")
	}

	// Snapshot after rotation: [2, 3, 1]. next, prev, prev wraps the
	// selection from 0 to 2, which holds window 1.
	c.Next()
	c.Prev()
	c.Prev()
	c.Commit()

	if c.IsActive() {
		t.Error("expected idle after commit")
	}
	if len(backend.activated) != 1 || backend.activated[0] != 1 {
		t.Errorf("expected exactly window 1 activated, got %v", backend.activated)
	}
	if grabber.grabs != 1 || grabber.ungrabs != 1 {
		t.Errorf("expected one grab/ungrab pair, got %d/%d", grabber.grabs, grabber.ungrabs)
	}
	if renderer.hides != 1 {
		t.Errorf("expected one hide on teardown, got %d", renderer.hides)
	}
}

func TestControllerRendersEveryVisibleChange(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{1, 2, 3}, 1)
	c, renderer, _ := newTestController(backend)

	c.Open()
	c.Next()
	c.Prev()

	if renderer.renders != 3 {
		t.Errorf("expected 3 renders (open + 2 moves), got %d", renderer.renders)
	}
	want := []int{0, 1, 0}
	for i, sel := range want {
		if renderer.selections[i] != sel {
			t.Errorf("render %d carried selection %d, want %d", i, renderer.selections[i], sel)
		}
	}

	c.Cancel()
}

func TestControllerReentrantOpenIgnored(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{1, 2, 3}, 1)
	c, renderer, grabber := newTestController(backend)

	c.Open()
	c.Next()
	c.Open()

	if got := c.Selection(); got != 1 {
		t.Errorf("re-entrant open disturbed selection: %d", got)
	}
	if grabber.grabs != 1 {
		t.Errorf("re-entrant open grabbed again: %d grabs", grabber.grabs)
	}
	if renderer.renders != 2 {
		t.Errorf("re-entrant open re-rendered: %d renders", renderer.renders)
	}

	c.Cancel()
}

func TestControllerCancelReleasesGrab(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{1, 2}, 1)
	c, renderer, grabber := newTestController(backend)

	c.Open()
	c.Cancel()

	if grabber.ungrabs != 1 {
		t.Errorf("expected grab released on cancel, got %d ungrabs", grabber.ungrabs)
	}
	if renderer.hides != 1 {
		t.Errorf("expected overlay hidden on cancel, got %d hides", renderer.hides)
	}
	if len(backend.activated) != 0 {
		t.Errorf("cancel activated a window: %v", backend.activated)
	}
}

func TestControllerKillToEmptyTearsDown(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{5}, 0)
	c, renderer, grabber := newTestController(backend)

	c.Open()
	c.Kill()

	if c.IsActive() {
		t.Error("expected idle after killing the last window")
	}
	if grabber.ungrabs != 1 {
		t.Errorf("expected grab released, got %d ungrabs", grabber.ungrabs)
	}
	if renderer.hides != 1 {
		t.Errorf("expected overlay hidden, got %d hides", renderer.hides)
	}
}

func TestControllerKillKeepsBrowsing(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{1, 2, 3}, 1)
	c, renderer, _ := newTestController(backend)

	c.Open()
	c.Kill()

	if !c.IsActive() {
		t.Fatal("expected still browsing after kill with windows left")
	}
	if renderer.lastCount != 2 {
		t.Errorf("expected re-render with 2 tasks, got %d", renderer.lastCount)
	}

	c.Cancel()
}

func TestControllerEmptySnapshotStaysIdle(t *testing.T) {
	backend := newFakeBackend(nil, 0)
	c, renderer, grabber := newTestController(backend)

	c.Open()

	if c.IsActive() {
		t.Error("expected no session for empty snapshot")
	}
	if grabber.grabs != 0 {
		t.Errorf("expected no grab for empty snapshot, got %d", grabber.grabs)
	}
	if renderer.renders != 0 {
		t.Errorf("expected no render for empty snapshot, got %d", renderer.renders)
	}
}

func TestControllerGrabFailureCancelsSession(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{1, 2}, 1)
	renderer := &fakeRenderer{}
	grabber := &fakeGrabber{fail: true}
	c := NewController(backend, testSettings, renderer, grabber, 0)

	c.Open()

	if c.IsActive() {
		t.Error("expected session cancelled when keyboard grab fails")
	}
}

func TestControllerStaleCommitFailsSoft(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{1, 2, 3}, 1)
	c, _, grabber := newTestController(backend)

	c.Open()
	backend.gone[2] = true // the selected window vanishes mid-session
	c.Commit()

	if c.IsActive() {
		t.Error("expected idle after stale commit")
	}
	if len(backend.activated) != 0 {
		t.Errorf("expected no substitute activation, got %v", backend.activated)
	}
	if grabber.ungrabs != 1 {
		t.Errorf("expected grab released after stale commit, got %d", grabber.ungrabs)
	}
}

func TestControllerEventsIgnoredWhileIdle(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{1, 2}, 1)
	c, renderer, _ := newTestController(backend)

	c.Next()
	c.Prev()
	c.Kill()
	c.Commit()
	c.Cancel()

	if renderer.renders != 0 || renderer.hides != 0 {
		t.Errorf("idle events reached the renderer: %d renders, %d hides",
			renderer.renders, renderer.hides)
	}
	if got := c.Selection(); got != -1 {
		t.Errorf("expected selection -1 while idle, got %d", got)
	}
}

func TestControllerRenderFailureNonFatal(t *testing.T) {
	backend := newFakeBackend([]platform.WindowID{1, 2}, 1)
	renderer := &fakeRenderer{failRender: true}
	c := NewController(backend, testSettings, renderer, nil, 0)

	c.Open()

	if !c.IsActive() {
		t.Error("expected session to survive a render failure")
	}

	c.Cancel()
}
