package schema

import (
	"fmt"
	"strings"
)

// IssueKind classifies a schema finding.
type IssueKind string

const (
	MissingProp    IssueKind = "missing_prop"
	TypeMismatch   IssueKind = "type_mismatch"
	InvalidDefault IssueKind = "invalid_default"
	MissingEmit    IssueKind = "missing_emit"
)

// Issue is one finding about one port.
type Issue struct {
	Kind       IssueKind
	Port       string
	Message    string
	Suggestion string
}

func (i Issue) String() string {
	if i.Suggestion == "" {
		return fmt.Sprintf("%s [%s]: %s", i.Port, i.Kind, i.Message)
	}
	return fmt.Sprintf("%s [%s]: %s (%s)", i.Port, i.Kind, i.Message, i.Suggestion)
}

// ValidationError bundles the findings for one component.
type ValidationError struct {
	Component string
	Issues    []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("schema validation failed for component %q: %s", e.Component, strings.Join(parts, "; "))
}
