package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingListKey = "taskforge:jobs:pending"
	jobKeyPrefix   = "taskforge:job:"
	jobTTL         = 24 * time.Hour
	dequeueBlock   = 5 * time.Second
)

// RedisStore keeps job records as Redis hashes and the pending queue as
// a list, the layout the rest of the deployment (UI, SSE bridge) reads.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(id string) string { return jobKeyPrefix + id }

func (s *RedisStore) Create(ctx context.Context, job *Job) error {
	key := jobKey(job.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"id":        job.ID,
		"sessionId": job.SessionID,
		"prompt":    job.Prompt,
		"status":    string(job.Status),
		"createdAt": job.CreatedAt.UnixMilli(),
	})
	pipe.Expire(ctx, key, jobTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Job, error) {
	fields, err := s.client.HGetAll(ctx, jobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	job := &Job{
		ID:        fields["id"],
		SessionID: fields["sessionId"],
		Prompt:    fields["prompt"],
		Status:    Status(fields["status"]),
	}
	var millis int64
	if _, err := fmt.Sscanf(fields["createdAt"], "%d", &millis); err == nil {
		job.CreatedAt = time.UnixMilli(millis)
	}
	return job, nil
}

func (s *RedisStore) SetStatus(ctx context.Context, id string, status Status) error {
	n, err := s.client.Exists(ctx, jobKey(id)).Result()
	if err != nil {
		return fmt.Errorf("set status %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return s.client.HSet(ctx, jobKey(id), "status", string(status)).Err()
}

func (s *RedisStore) IsFailed(ctx context.Context, id string) (bool, error) {
	status, err := s.client.HGet(ctx, jobKey(id), "status").Result()
	if errors.Is(err, redis.Nil) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("is failed %s: %w", id, err)
	}
	return Status(status) == StatusFailed, nil
}

func (s *RedisStore) Enqueue(ctx context.Context, job *Job) error {
	if err := s.Create(ctx, job); err != nil {
		return err
	}
	return s.client.LPush(ctx, pendingListKey, job.ID).Err()
}

// Dequeue blocks (in bounded slices, so ctx cancellation is honored)
// until a pending job id can be popped and resolved.
func (s *RedisStore) Dequeue(ctx context.Context) (*Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vals, err := s.client.BRPop(ctx, dequeueBlock, pendingListKey).Result()
		if errors.Is(err, redis.Nil) {
			continue // timed out, poll again
		}
		if err != nil {
			return nil, fmt.Errorf("dequeue: %w", err)
		}
		// vals is [key, value]
		job, err := s.Get(ctx, vals[1])
		if errors.Is(err, ErrNotFound) {
			continue // record expired under us, skip
		}
		if err != nil {
			return nil, err
		}
		return job, nil
	}
}
