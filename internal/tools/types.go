package tools

import (
	"context"
	"log/slog"

	"github.com/taskforge/taskforge/internal/session"
)

// Tool is the interface all tools must implement. Parameters returns the
// JSON Schema the registry validates raw command params against before
// Execute is invoked; Execute receives the validated params and returns a
// tool-defined payload which the loop stringifies into the transcript.
//
// Tools must treat everything reachable from the context as read-mostly;
// the session working context is the one designated mutation point.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// TaskQueue lets tools enqueue sub-tasks without knowing the broker.
type TaskQueue interface {
	Enqueue(ctx context.Context, prompt, sessionID string) (jobID string, err error)
}

// RunContext is the per-run execution context handed to every tool
// invocation through the context.
type RunContext struct {
	JobID   string
	Log     *slog.Logger
	Session *session.Session
	Tasks   TaskQueue

	// ReportProgress surfaces long-tool progress to the event channel.
	ReportProgress func(current, total int, unit string)
	// StreamContent streams intermediate tool output to the event channel.
	StreamContent func(content string)
}

type contextKey string

const runContextKey contextKey = "taskforge_run_context"

// WithRunContext returns a new context carrying the run context.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey, rc)
}

// RunContextFrom extracts the run context. Returns an empty RunContext
// with a default logger if none is set, so tools never nil-check.
func RunContextFrom(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runContextKey).(*RunContext); ok && rc != nil {
		return rc
	}
	return &RunContext{Log: slog.Default()}
}
