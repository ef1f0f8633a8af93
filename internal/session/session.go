// Package session holds the conversation transcript for one agent session.
// The history is strictly append-only: the loop and tools add entries, and
// nothing in this package ever reorders or deletes them. Context-window
// trimming is an external concern and deliberately has no API here.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message roles. Tool entries exist only in the transcript; they are
// remapped before the history is sent to an LLM (see ProjectForLLM).
const (
	RoleUser  = "user"
	RoleModel = "model"
	RoleTool  = "tool"
)

// Message is a single transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the unit of conversation state shared across runs. The job
// worker loads it before a run and the loop mutates History and
// WorkingContext in place; at most one run per session is active at a time
// (enforced by the scheduler).
type Session struct {
	ID             string            `json:"id"`
	History        []Message         `json:"history"`
	WorkingContext map[string]string `json:"workingContext,omitempty"`

	mu sync.Mutex
}

func New(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:             id,
		WorkingContext: make(map[string]string),
	}
}

func (s *Session) push(role, content string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.mu.Lock()
	s.History = append(s.History, msg)
	s.mu.Unlock()
	return msg
}

// PushUser appends a user-role entry (the triggering objective, or a
// corrective message fed back to the model).
func (s *Session) PushUser(content string) Message { return s.push(RoleUser, content) }

// PushModel appends the raw LLM text verbatim, parseable or not.
func (s *Session) PushModel(content string) Message { return s.push(RoleModel, content) }

// PushToolResult appends a tool-role entry (stringified result or error).
func (s *Session) PushToolResult(content string) Message { return s.push(RoleTool, content) }

// Len returns the current history length.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.History)
}

// Snapshot returns a copy of the history slice.
func (s *Session) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.History))
	copy(out, s.History)
	return out
}

// SetContext records a key in the working context scratchpad. Tools use
// this for cross-iteration hints (last tool used, current file).
func (s *Session) SetContext(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WorkingContext == nil {
		s.WorkingContext = make(map[string]string)
	}
	s.WorkingContext[key] = value
}

// Context reads a working-context key.
func (s *Session) Context(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.WorkingContext[key]
}

// ContextSnapshot returns a copy of the working context.
func (s *Session) ContextSnapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.WorkingContext))
	for k, v := range s.WorkingContext {
		out[k] = v
	}
	return out
}
