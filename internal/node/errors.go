package node

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequiredInput is returned by Exec before process is called.
	ErrMissingRequiredInput = errors.New("missing required input")
	// ErrProcessFailed wraps errors and panics raised by a process function.
	ErrProcessFailed = errors.New("process failed")
)

// NodeError wraps a failure during construction or execution of one node.
type NodeError struct {
	NodeID  string
	Op      string
	Details map[string]any
	Err     error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q: %s: %v", e.NodeID, e.Op, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
