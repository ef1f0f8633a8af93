// Package jobs gives the loop and the worker access to job-queue
// metadata. The broker itself is external; this package only reads and
// writes the job records and the pending list the broker exposes.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the queue-level lifecycle of a job.
type Status string

const (
	StatusPending     Status = "pending"
	StatusActive      Status = "active"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

// Job is one queued agent objective.
type Job struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Prompt    string    `json:"prompt"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewJob creates a pending job for a prompt.
func NewJob(prompt, sessionID string) *Job {
	return &Job{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Prompt:    prompt,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
}

// ErrNotFound is returned when a job id is unknown.
var ErrNotFound = errors.New("job not found")

// Store reads and writes job records. The loop only ever calls IsFailed
// (the queue-level cancellation source); the worker owns the rest.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	SetStatus(ctx context.Context, id string, status Status) error
	IsFailed(ctx context.Context, id string) (bool, error)
}

// Queue hands pending jobs to worker consumers.
type Queue interface {
	Enqueue(ctx context.Context, job *Job) error
	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (*Job, error)
}

// MemoryStore is the in-process Store and Queue used by tests and the
// one-shot `run` command.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Job
	pending chan *Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Job),
		pending: make(chan *Job, 64),
	}
}

func (m *MemoryStore) Create(_ context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.records[job.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *MemoryStore) SetStatus(_ context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	return nil
}

func (m *MemoryStore) IsFailed(ctx context.Context, id string) (bool, error) {
	job, err := m.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return job.Status == StatusFailed, nil
}

func (m *MemoryStore) Enqueue(ctx context.Context, job *Job) error {
	if err := m.Create(ctx, job); err != nil {
		return err
	}
	select {
	case m.pending <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MemoryStore) Dequeue(ctx context.Context) (*Job, error) {
	select {
	case job := <-m.pending:
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
