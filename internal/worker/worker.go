// Package worker consumes jobs from the queue and drives agent runs.
// It owns the consumer pool; run ordering within a session belongs to
// the scheduler and loop semantics to the agent package.
package worker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taskforge/taskforge/internal/agent"
	"github.com/taskforge/taskforge/internal/bus"
	"github.com/taskforge/taskforge/internal/jobs"
	"github.com/taskforge/taskforge/internal/llm"
	"github.com/taskforge/taskforge/internal/scheduler"
	"github.com/taskforge/taskforge/internal/store"
	"github.com/taskforge/taskforge/internal/tools"
)

// Options wires a worker. All fields are required except Concurrency
// (defaults to 4) and SchedulerCfg (defaults to scheduler.DefaultConfig).
type Options struct {
	Queue        jobs.Queue
	Store        jobs.Store
	Sessions     store.SessionStore
	Registry     *tools.Registry
	Provider     llm.Provider
	Transport    bus.Transport
	Concurrency  int
	Agent        agent.Config
	SchedulerCfg scheduler.Config
}

// Worker pulls pending jobs and executes them. Concurrency is bounded
// by the consumer pool; same-session jobs are additionally serialized
// by the scheduler, so raising Concurrency never interleaves a session.
type Worker struct {
	opts  Options
	sched *scheduler.Scheduler
	log   *slog.Logger
}

func New(opts Options) *Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	w := &Worker{
		opts: opts,
		log:  slog.Default().With("component", "worker"),
	}
	w.sched = scheduler.New(opts.SchedulerCfg, w.execute)
	return w
}

// Run blocks consuming jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("worker started", "concurrency", w.opts.Concurrency)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.opts.Concurrency; i++ {
		g.Go(func() error {
			return w.consume(ctx)
		})
	}
	return g.Wait()
}

func (w *Worker) consume(ctx context.Context) error {
	for {
		job, err := w.opts.Queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error("dequeue failed", "error", err)
			continue
		}
		outcome := <-w.sched.Schedule(ctx, job)
		if outcome.Err != nil {
			w.log.Warn("job not run", "job_id", job.ID, "error", outcome.Err)
			w.setStatus(ctx, job.ID, jobs.StatusFailed)
		}
	}
}

// execute is the scheduler's RunFunc: it owns one job from activation
// through the terminal status write.
func (w *Worker) execute(ctx context.Context, job *jobs.Job) *agent.RunResult {
	log := w.log.With("job_id", job.ID, "session_id", job.SessionID)
	w.setStatus(ctx, job.ID, jobs.StatusActive)

	sess, err := w.opts.Sessions.GetOrCreate(ctx, job.SessionID)
	if err != nil {
		log.Error("session load failed", "error", err)
		w.setStatus(ctx, job.ID, jobs.StatusFailed)
		return &agent.RunResult{Status: agent.StatusError, Answer: "Error: " + err.Error()}
	}
	sess.PushUser(job.Prompt)

	loop := agent.New(job, sess, w.opts.Registry, w.opts.Provider, w.opts.Transport,
		w.opts.Store, enqueuer{w.opts.Queue}, w.opts.Agent)
	result := loop.Run(ctx)

	if err := w.opts.Sessions.Save(ctx, sess); err != nil {
		log.Error("session save failed", "error", err)
	}
	w.setStatus(ctx, job.ID, jobStatusFor(result.Status))
	log.Info("job finished", "status", result.Status)
	return result
}

func (w *Worker) setStatus(ctx context.Context, jobID string, status jobs.Status) {
	if err := w.opts.Store.SetStatus(ctx, jobID, status); err != nil {
		w.log.Warn("status update failed", "job_id", jobID, "status", status, "error", err)
	}
}

func jobStatusFor(status agent.Status) jobs.Status {
	switch status {
	case agent.StatusCompleted:
		return jobs.StatusCompleted
	case agent.StatusInterrupted:
		return jobs.StatusInterrupted
	default:
		return jobs.StatusFailed
	}
}

// enqueuer lets tools spawn sub-tasks through the same queue the worker
// consumes from.
type enqueuer struct {
	queue jobs.Queue
}

func (e enqueuer) Enqueue(ctx context.Context, prompt, sessionID string) (string, error) {
	job := jobs.NewJob(prompt, sessionID)
	if err := e.queue.Enqueue(ctx, job); err != nil {
		return "", err
	}
	return job.ID, nil
}
