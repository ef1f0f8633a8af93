package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/taskforge/taskforge/internal/bus"
	"github.com/taskforge/taskforge/internal/jobs"
	"github.com/taskforge/taskforge/internal/llm"
	"github.com/taskforge/taskforge/internal/session"
	"github.com/taskforge/taskforge/internal/tools"
	"github.com/taskforge/taskforge/internal/tools/builtin"
)

// Terminal notices. These are user-visible strings, not internal error
// text; keep them short and stable.
const (
	noticeInterrupted   = "Agent execution interrupted."
	noticeMaxIterations = "Agent reached maximum iterations without a final answer."
	noticeLoopDetected  = "Agent stuck in a loop."
	noticeUnsure        = "I'm not sure how to proceed."
)

// maxMalformedStrikes is how many consecutive unusable model turns
// (empty or unparsable) the loop corrects before giving up.
const maxMalformedStrikes = 3

const recoveryHint = "Please analyze the error and try a different approach. You can use another tool, or try to fix the problem with the previous tool."

// Config tunes one run. Zero values get defaults from Default().
type Config struct {
	// MaxIterations caps the number of model calls per run.
	MaxIterations int
	// ToolTimeout bounds a single tool execution. Zero disables the
	// bound; tools then run until they return or the run context ends.
	ToolTimeout time.Duration
	// ContextWindow is the provider's context size in tokens, used only
	// to warn when the prompt approaches it. Zero disables the warning.
	ContextWindow int
}

// Default returns the stock loop configuration.
func Default() Config {
	return Config{
		MaxIterations: 10,
		ToolTimeout:   60 * time.Second,
		ContextWindow: 128000,
	}
}

func (c Config) withDefaults() Config {
	d := Default()
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.ContextWindow < 0 {
		c.ContextWindow = 0
	}
	return c
}

// Loop drives one job to a terminal result. It owns no goroutines
// beyond the interrupt listener and is single-use: construct, Run, drop.
type Loop struct {
	job       *jobs.Job
	session   *session.Session
	registry  *tools.Registry
	provider  llm.Provider
	transport bus.Transport
	store     jobs.Store
	tasks     tools.TaskQueue
	cfg       Config
	log       *slog.Logger

	interrupted atomic.Bool
}

// New wires a loop for one job. transport and store may not be nil;
// tasks may be nil when no sub-task broker is available.
func New(job *jobs.Job, sess *session.Session, registry *tools.Registry, provider llm.Provider, transport bus.Transport, store jobs.Store, tasks tools.TaskQueue, cfg Config) *Loop {
	return &Loop{
		job:       job,
		session:   sess,
		registry:  registry,
		provider:  provider,
		transport: transport,
		store:     store,
		tasks:     tasks,
		cfg:       cfg.withDefaults(),
		log:       slog.Default().With("job_id", job.ID, "session_id", sess.ID),
	}
}

// Run executes the loop until a terminal condition. It never returns an
// error: every failure mode, including a panicking tool, is folded into
// a RunResult so one bad run cannot take the worker down.
func (l *Loop) Run(ctx context.Context) (result *RunResult) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("run panicked", "panic", r)
			result = &RunResult{Status: StatusError, Answer: fmt.Sprintf("Error: %v", r)}
		}
	}()

	stopListening := l.listenForInterrupt(ctx)
	defer stopListening()

	detector := &stallDetector{}
	iterations := 0
	malformed := 0
	eventsCh := bus.EventsChannel(l.job.ID)

	for {
		if stop := l.checkStop(ctx); stop != nil {
			return stop
		}

		iterations++
		if iterations > l.cfg.MaxIterations {
			l.log.Warn("iteration budget exhausted", "max", l.cfg.MaxIterations)
			return &RunResult{Status: StatusMaxIterations, Answer: noticeMaxIterations}
		}
		iterLog := l.log.With("iteration", iterations)

		systemPrompt := BuildSystemPrompt(l.session, l.registry)
		history := l.session.ProjectForLLM()
		l.warnContextUsage(iterLog, systemPrompt, history)

		raw, err := l.provider.GetResponse(ctx, history, systemPrompt)
		if err != nil {
			iterLog.Error("provider call failed", "error", err)
			return &RunResult{Status: StatusError, Answer: fmt.Sprintf("Error: %v", err)}
		}

		if strings.TrimSpace(raw) == "" {
			malformed++
			if malformed >= maxMalformedStrikes {
				return &RunResult{Status: StatusError, Answer: "Error: model kept returning unusable responses."}
			}
			iterLog.Warn("empty model response")
			l.session.PushUser("Error: the model did not return a string response. Respond with a single JSON object containing thought, command, or answer.")
			continue
		}

		l.session.PushModel(raw)

		parsed, err := Parse(raw)
		if err != nil {
			malformed++
			if malformed >= maxMalformedStrikes {
				return &RunResult{Status: StatusError, Answer: "Error: model kept returning unusable responses."}
			}
			iterLog.Warn("unparsable model response", "error", err)
			l.session.PushUser(fmt.Sprintf("Your last response could not be parsed (%v). It was: %s\nRespond with a single JSON object containing thought, command, or answer.", err, clip(raw, 500)))
			continue
		}
		malformed = 0

		if parsed.Thought != "" {
			iterLog.Info("agent thought", "thought", parsed.Thought)
			bus.PublishJSON(ctx, l.transport, eventsCh, bus.NewThoughtEvent(parsed.Thought))
		}

		// An answer ends the run even when a command rides along with it.
		if parsed.Answer != "" {
			iterLog.Info("agent answered")
			bus.PublishJSON(ctx, l.transport, eventsCh, bus.NewResponseEvent(parsed.Answer))
			return &RunResult{Status: StatusCompleted, Answer: parsed.Answer}
		}

		if parsed.Command == nil {
			iterLog.Warn("response carried neither answer nor command")
			return &RunResult{Status: StatusUnsure, Answer: noticeUnsure}
		}

		if detector.Observe(parsed.Command) {
			iterLog.Warn("identical command repeated, aborting", "tool", parsed.Command.Name)
			return &RunResult{Status: StatusLoopDetected, Answer: noticeLoopDetected}
		}

		if done := l.dispatch(ctx, iterLog, parsed.Command); done != nil {
			return done
		}
	}
}

// dispatch runs one command. A nil return means the loop continues; a
// non-nil return is the run's terminal result (only the finish signal
// produces one here — tool errors are recoverable).
func (l *Loop) dispatch(ctx context.Context, log *slog.Logger, cmd *Command) *RunResult {
	eventsCh := bus.EventsChannel(l.job.ID)

	// A bare finish with no params means "done, nothing to add".
	if cmd.Name == "finish" && len(cmd.Params) == 0 {
		cmd.Params = map[string]interface{}{"response": builtin.DefaultFinishResponse}
	}

	bus.PublishJSON(ctx, l.transport, eventsCh, bus.NewToolStartEvent(cmd.Name, cmd.Params))

	execCtx := tools.WithRunContext(ctx, &tools.RunContext{
		JobID:   l.job.ID,
		Log:     log.With("tool", cmd.Name),
		Session: l.session,
		Tasks:   l.tasks,
		ReportProgress: func(current, total int, unit string) {
			bus.PublishJSON(ctx, l.transport, eventsCh, bus.NewToolResultEvent(cmd.Name, map[string]interface{}{
				"progress": current, "total": total, "unit": unit,
			}))
		},
		StreamContent: func(content string) {
			bus.PublishJSON(ctx, l.transport, eventsCh, bus.NewThoughtEvent(content))
		},
	})
	if l.cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(execCtx, l.cfg.ToolTimeout)
		defer cancel()
	}

	result, err := l.registry.Execute(execCtx, cmd.Name, cmd.Params)
	if err != nil {
		var finish *tools.FinishSignal
		if errors.As(err, &finish) {
			log.Info("finish signalled", "answer", finish.Answer)
			bus.PublishJSON(ctx, l.transport, eventsCh, bus.NewResponseEvent(finish.Answer))
			return &RunResult{Status: StatusCompleted, Answer: finish.Answer}
		}
		errMsg := fmt.Sprintf("Error executing tool %s: %v", cmd.Name, err)
		log.Warn("tool failed", "error", err)
		l.session.PushToolResult(errMsg + " " + recoveryHint)
		bus.PublishJSON(ctx, l.transport, eventsCh, bus.NewToolResultEvent(cmd.Name, map[string]interface{}{
			"error": errMsg,
			"hint":  recoveryHint,
		}))
		return nil
	}

	l.recordAction(cmd)
	l.session.PushToolResult("Tool result: " + SummarizeResult(result))
	bus.PublishJSON(ctx, l.transport, eventsCh, bus.NewToolResultEvent(cmd.Name, result))
	return nil
}

// recordAction maintains the working context the prompt surfaces: the
// last tool that ran and, for file-editing tools, the file in play.
func (l *Loop) recordAction(cmd *Command) {
	l.session.SetContext("lastAction", cmd.Name)
	switch cmd.Name {
	case "writeFile", "editFile", "readFile":
		if path, ok := cmd.Params["path"].(string); ok && path != "" {
			l.session.SetContext("currentFile", path)
		}
	}
}

// checkStop evaluates the cooperative stop sources before each
// iteration: the interrupt flag, run-context cancellation, and the
// job's queue-level status. Store read errors are logged and ignored —
// a flaky metadata read must not kill a healthy run.
func (l *Loop) checkStop(ctx context.Context) *RunResult {
	if l.interrupted.Load() || ctx.Err() != nil {
		l.log.Warn("run interrupted")
		return &RunResult{Status: StatusInterrupted, Answer: noticeInterrupted}
	}
	failed, err := l.store.IsFailed(ctx, l.job.ID)
	if err != nil {
		l.log.Warn("job status check failed", "error", err)
		return nil
	}
	if failed {
		l.log.Warn("job marked failed externally")
		return &RunResult{Status: StatusInterrupted, Answer: noticeInterrupted}
	}
	return nil
}

// listenForInterrupt subscribes to the job's interrupt channel. Any
// message sets the flag; the loop notices it before the next iteration.
// Subscription failure is non-fatal: the run proceeds uninterruptible.
// The returned func releases the subscription; Run defers it so the
// listener never outlives its run.
func (l *Loop) listenForInterrupt(ctx context.Context) func() {
	sub, err := l.transport.Subscribe(ctx, bus.InterruptChannel(l.job.ID))
	if err != nil {
		l.log.Error("interrupt subscription failed", "error", err)
		return func() {}
	}
	go func() {
		select {
		case _, ok := <-sub.Messages():
			if ok {
				l.log.Warn("interrupt requested")
				l.interrupted.Store(true)
			}
		case <-ctx.Done():
		}
	}()
	return func() { sub.Close() }
}

func (l *Loop) warnContextUsage(log *slog.Logger, systemPrompt string, history []llm.Content) {
	if l.cfg.ContextWindow <= 0 {
		return
	}
	total := EstimateTokens(systemPrompt)
	for _, c := range history {
		total += EstimateTokens(c.Text())
	}
	if total > l.cfg.ContextWindow*8/10 {
		log.Warn("context usage high", "approx_tokens", total, "window", l.cfg.ContextWindow)
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
