package pipeline

// State is the loop lifecycle.
type State int

const (
	// Idle means Run has not been called.
	Idle State = iota
	// Running means frames are being processed.
	Running
	// Stopping means the loop is releasing the sensor and renderer.
	Stopping
	// Stopped means Run has returned.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
