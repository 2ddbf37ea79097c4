package node

import (
	"fmt"
	"strings"
)

// ProcessErrorPolicy decides what Exec does when process fails.
type ProcessErrorPolicy int

const (
	// Degrade logs the failure and continues as if process returned nothing.
	Degrade ProcessErrorPolicy = iota
	// Propagate resets the outputs and returns the failure.
	Propagate
)

func (p ProcessErrorPolicy) String() string {
	if p == Propagate {
		return "propagate"
	}
	return "degrade"
}

// ParseProcessErrorPolicy accepts "degrade" (or "") and "propagate".
func ParseProcessErrorPolicy(s string) (ProcessErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "degrade":
		return Degrade, nil
	case "propagate":
		return Propagate, nil
	default:
		return Degrade, fmt.Errorf("unknown process error policy %q", s)
	}
}

type options struct {
	processErrors ProcessErrorPolicy
	foldPolicy    bool
	theme         string
	savedInputs   map[string]any
}

// Option configures Parse.
type Option func(*options)

// WithProcessErrors sets the process error policy. The default is Degrade.
func WithProcessErrors(p ProcessErrorPolicy) Option {
	return func(o *options) { o.processErrors = p }
}

// WithFoldPolicy sets the fold policy of every anchor.
func WithFoldPolicy(fold bool) Option {
	return func(o *options) { o.foldPolicy = fold }
}

// WithTheme sets the theme of every anchor.
func WithTheme(theme string) Option {
	return func(o *options) { o.theme = theme }
}

// WithSavedInputs restores inputs persisted from an earlier session.
func WithSavedInputs(in map[string]any) Option {
	return func(o *options) { o.savedInputs = copyMap(in) }
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
