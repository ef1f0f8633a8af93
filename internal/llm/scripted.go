package llm

import (
	"context"
	"sync"
)

// Scripted replays a fixed sequence of responses. Used by tests and by
// `taskforge run --dry-run` to exercise the loop without a live provider.
type Scripted struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
}

func NewScripted(responses ...string) *Scripted {
	return &Scripted{responses: responses}
}

// FailWith makes call number n (0-based) return err instead of a response.
func (s *Scripted) FailWith(n int, err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.errs) <= n {
		s.errs = append(s.errs, nil)
	}
	s.errs[n] = err
	return s
}

func (s *Scripted) Name() string { return "scripted" }

// Calls returns how many times GetResponse has been invoked.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Scripted) GetResponse(_ context.Context, _ []Content, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.calls
	s.calls++
	if n < len(s.errs) && s.errs[n] != nil {
		return "", s.errs[n]
	}
	if n < len(s.responses) {
		return s.responses[n], nil
	}
	// Past the end of the script, keep replaying the last response.
	if len(s.responses) > 0 {
		return s.responses[len(s.responses)-1], nil
	}
	return "", nil
}
