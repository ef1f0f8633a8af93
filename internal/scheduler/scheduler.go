// Package scheduler serializes agent runs per session. A session's
// history is a single append-only transcript, so two concurrent runs on
// it would interleave turns; the scheduler guarantees at most one
// active run per session and queues the rest FIFO.
package scheduler

import (
	"context"
	"sync"

	"github.com/taskforge/taskforge/internal/agent"
	"github.com/taskforge/taskforge/internal/jobs"
)

// DropPolicy decides what happens when a session queue is full.
type DropPolicy string

const (
	DropOld DropPolicy = "old" // evict the oldest queued job
	DropNew DropPolicy = "new" // reject the incoming job
)

// Config tunes the per-session queues.
type Config struct {
	Cap  int        `json:"cap" yaml:"cap"`
	Drop DropPolicy `json:"drop" yaml:"drop"`
}

func DefaultConfig() Config {
	return Config{Cap: 10, Drop: DropOld}
}

// RunFunc executes one job to completion. The scheduler calls it when
// the job reaches the front of its session's queue.
type RunFunc func(ctx context.Context, job *jobs.Job) *agent.RunResult

// Outcome is delivered on the channel Schedule returns. Exactly one
// Outcome arrives per scheduled job, then the channel closes.
type Outcome struct {
	Result *agent.RunResult
	Err    error
}

type pendingJob struct {
	job      *jobs.Job
	resultCh chan Outcome
}

// sessionQueue holds one session's pending jobs. Guarded by the
// scheduler's mutex, not its own: queue operations are short and the
// shared lock keeps the eviction paths simple.
type sessionQueue struct {
	pending []*pendingJob
	active  bool
}

// Scheduler fans jobs out to per-session queues.
type Scheduler struct {
	mu       sync.Mutex
	sessions map[string]*sessionQueue
	cfg      Config
	runFn    RunFunc
}

func New(cfg Config, runFn RunFunc) *Scheduler {
	if cfg.Cap <= 0 {
		cfg.Cap = DefaultConfig().Cap
	}
	if cfg.Drop == "" {
		cfg.Drop = DropOld
	}
	return &Scheduler{
		sessions: make(map[string]*sessionQueue),
		cfg:      cfg,
		runFn:    runFn,
	}
}

// Schedule submits a job. If its session is idle the run starts
// immediately; otherwise the job waits its turn. The returned channel
// receives the outcome when the run completes (or the job is dropped).
func (s *Scheduler) Schedule(ctx context.Context, job *jobs.Job) <-chan Outcome {
	p := &pendingJob{job: job, resultCh: make(chan Outcome, 1)}

	s.mu.Lock()
	defer s.mu.Unlock()

	sq := s.sessions[job.SessionID]
	if sq == nil {
		sq = &sessionQueue{}
		s.sessions[job.SessionID] = sq
	}

	if len(sq.pending) >= s.cfg.Cap {
		if !s.evict(sq, p) {
			return p.resultCh
		}
	} else {
		sq.pending = append(sq.pending, p)
	}

	if !sq.active {
		s.startNext(ctx, job.SessionID, sq)
	}
	return p.resultCh
}

// evict applies the drop policy to a full queue. Returns false when the
// incoming job itself was rejected. Caller holds s.mu.
func (s *Scheduler) evict(sq *sessionQueue, incoming *pendingJob) bool {
	if s.cfg.Drop == DropNew {
		incoming.resultCh <- Outcome{Err: ErrQueueFull}
		close(incoming.resultCh)
		return false
	}
	old := sq.pending[0]
	sq.pending = sq.pending[1:]
	old.resultCh <- Outcome{Err: ErrQueueDropped}
	close(old.resultCh)
	sq.pending = append(sq.pending, incoming)
	return true
}

// startNext dequeues the session's head job and runs it in its own
// goroutine. Caller holds s.mu.
func (s *Scheduler) startNext(ctx context.Context, sessionID string, sq *sessionQueue) {
	if len(sq.pending) == 0 {
		return
	}
	p := sq.pending[0]
	sq.pending = sq.pending[1:]
	sq.active = true

	go func() {
		result := s.runFn(ctx, p.job)
		p.resultCh <- Outcome{Result: result}
		close(p.resultCh)

		s.mu.Lock()
		sq.active = false
		if len(sq.pending) > 0 {
			s.startNext(ctx, sessionID, sq)
		} else {
			delete(s.sessions, sessionID)
		}
		s.mu.Unlock()
	}()
}

// Active reports whether a run is executing for the session.
func (s *Scheduler) Active(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sq := s.sessions[sessionID]
	return sq != nil && sq.active
}

// QueueLen reports how many jobs are waiting behind the active run.
func (s *Scheduler) QueueLen(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sq := s.sessions[sessionID]
	if sq == nil {
		return 0
	}
	return len(sq.pending)
}
