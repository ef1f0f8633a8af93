package tools

import (
	"fmt"
	"strings"
)

// DuplicateToolError is returned when a tool name is already registered.
// Registration is first-wins: the existing tool stays.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// ToolNotFoundError is returned when a command names a tool the registry
// does not know.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

// InvalidParametersError is returned when command params fail schema
// validation. Issues holds one human-readable line per violation.
type InvalidParametersError struct {
	Tool   string
	Issues []string
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("invalid parameters for tool %q: %s", e.Tool, strings.Join(e.Issues, "; "))
}

// FinishSignal is the sentinel error the finish tool returns to end a run.
// It is not a failure: the loop unwraps it with errors.As and turns the
// carried answer into the run's terminal result.
type FinishSignal struct {
	Answer string
}

func (e *FinishSignal) Error() string {
	return fmt.Sprintf("finish: %s", e.Answer)
}
