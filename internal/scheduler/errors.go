package scheduler

import "errors"

var (
	// ErrQueueFull is returned when a job is rejected because the session
	// queue is full (drop=new policy).
	ErrQueueFull = errors.New("session queue is full")

	// ErrQueueDropped is returned when a queued job is evicted to make
	// room for a newer one (drop=old policy).
	ErrQueueDropped = errors.New("job dropped from queue")
)
