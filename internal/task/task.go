// Package task builds and maintains the ordered window snapshot a
// switching session operates on.
package task

import (
	"log"

	"github.com/diegostafa/goto/internal/platform"
)

// Task is one switchable window in a session snapshot.
type Task struct {
	Handle  platform.WindowID
	Meta    platform.WindowMeta
	Ordinal int // position in the snapshot, 0-based
}

// List is an ordered window snapshot, most-recently-used first after
// rotation. Handles are unique within a list.
type List struct {
	tasks []Task
}

// MetaLookup resolves metadata for a window handle. Returning an error
// drops the handle from the snapshot.
type MetaLookup func(platform.WindowID) (platform.WindowMeta, error)

// Build creates a snapshot from handles in most-recently-used order.
//
// Handles whose metadata lookup fails are skipped. When the focused
// window leads the input it is rotated to the back, so index 0 is the
// previously focused window and makes a natural default selection.
func Build(handles []platform.WindowID, focused platform.WindowID, lookup MetaLookup) *List {
	resolved := make([]Task, 0, len(handles))
	seen := make(map[platform.WindowID]bool, len(handles))

	for _, handle := range handles {
		if seen[handle] {
			continue
		}
		seen[handle] = true

		meta, err := lookup(handle)
		if err != nil {
			log.Printf("Task snapshot: skipping window %d: %v", handle, err)
			continue
		}
		resolved = append(resolved, Task{Handle: handle, Meta: meta})
	}

	if len(resolved) > 1 && resolved[0].Handle == focused {
		resolved = append(resolved[1:], resolved[0])
	}

	for i := range resolved {
		resolved[i].Ordinal = i
	}

	return &List{tasks: resolved}
}

// Len returns the number of tasks in the snapshot.
func (l *List) Len() int {
	return len(l.tasks)
}

// Empty reports whether the snapshot holds no tasks.
func (l *List) Empty() bool {
	return len(l.tasks) == 0
}

// At returns the task at index i. Panics on out-of-range, matching
// slice semantics; callers index only with validated selections.
func (l *List) At(i int) Task {
	return l.tasks[i]
}

// Tasks returns the snapshot as a slice. The slice is shared; callers
// must not mutate it.
func (l *List) Tasks() []Task {
	return l.tasks
}

// Remove deletes the task at index i and renumbers ordinals.
// Out-of-range indices are ignored.
func (l *List) Remove(i int) {
	if i < 0 || i >= len(l.tasks) {
		return
	}
	l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
	for j := range l.tasks {
		l.tasks[j].Ordinal = j
	}
}
