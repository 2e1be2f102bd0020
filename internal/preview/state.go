package preview

// Kind is the phase of the preview state machine.
type Kind int

const (
	Idle Kind = iota
	Loading
	Loaded
	Empty
	Failed
)

const (
	StatusIdle    = "select a character"
	StatusLoading = "loading…"
	StatusEmpty   = "no preview available"
	StatusFailed  = "load failed"
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller. URL is the icon URL of the latest
// request; Status is the text drawn when no image is shown.
type State struct {
	Kind   Kind   `json:"kind"`
	URL    string `json:"url,omitempty"`
	Status string `json:"status,omitempty"`
}

func (s State) Loaded() bool { return s.Kind == Loaded }

func stateFor(k Kind, url string) State {
	st := State{Kind: k, URL: url}
	switch k {
	case Idle:
		st.Status = StatusIdle
	case Loading:
		st.Status = StatusLoading
	case Empty:
		st.Status = StatusEmpty
		st.URL = ""
	case Failed:
		st.Status = StatusFailed
	}
	return st
}
