package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskforge/taskforge/internal/session"
)

const sessionKeyPrefix = "taskforge:session:"

// sessionTTL keeps abandoned sessions from accumulating forever. Every
// save refreshes it, so active sessions never expire mid-conversation.
const sessionTTL = 7 * 24 * time.Hour

// RedisSessionStore serializes sessions to JSON values in Redis. It is
// the backend workers share when more than one process serves jobs.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (r *RedisSessionStore) GetOrCreate(ctx context.Context, id string) (*session.Session, error) {
	if id != "" {
		sess, err := r.Get(ctx, id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return session.New(id), nil
}

func (r *RedisSessionStore) Save(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+sess.ID, data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}
