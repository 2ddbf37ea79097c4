package node

import "fmt"

// State is the lifecycle state of a Controller.
type State int32

const (
	// Unloaded is the state before the scope was claimed.
	Unloaded State = iota
	// Loaded means the definition and component are resolved but anchors are not built yet.
	Loaded
	// Ready means the controller is built and has not run.
	Ready
	// Executing means a run is in progress.
	Executing
	// Idle means the last run finished.
	Idle
	// Errored means the last run failed.
	Errored
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Ready:
		return "ready"
	case Executing:
		return "executing"
	case Idle:
		return "idle"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
