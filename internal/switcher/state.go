package switcher

// Phase represents the current phase of a switching session
type Phase int

const (
	// PhaseIdle means no session is active
	PhaseIdle Phase = iota
	// PhaseBrowsing means a session is open and the user is cycling the selection
	PhaseBrowsing
	// PhaseCommitting means the selected window is being activated
	PhaseCommitting
	// PhaseCancelling means the session is being torn down without activation
	PhaseCancelling
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBrowsing:
		return "browsing"
	case PhaseCommitting:
		return "committing"
	case PhaseCancelling:
		return "cancelling"
	default:
		return "unknown"
	}
}

// Event is an input the session state machine reacts to.
type Event int

const (
	EventOpen Event = iota
	EventNext
	EventPrev
	EventKill
	EventCommit
	EventCancel
)

// String returns the string representation of the event
func (e Event) String() string {
	switch e {
	case EventOpen:
		return "open"
	case EventNext:
		return "next"
	case EventPrev:
		return "prev"
	case EventKill:
		return "kill"
	case EventCommit:
		return "commit"
	case EventCancel:
		return "cancel"
	default:
		return "unknown"
	}
}
