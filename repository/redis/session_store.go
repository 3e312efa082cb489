// Package redis provides a redis-backed session store so relay instances
// can share one session table. A per-invocation in-memory map silently
// loses session continuity across instances; this backend is the answer
// for multi-instance or serverless deployments.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/wallbox/relay/domain"
	"github.com/wallbox/relay/repository"
)

type sessionStore struct {
	client  *redislib.Client
	prefix  string
	timeout time.Duration
}

// NewSessionStore creates a redis-backed session store. Each record lives
// under a sliding TTL equal to the idle timeout, so redis itself performs
// the eviction the in-memory store needs a sweep for.
func NewSessionStore(client *redislib.Client, timeout time.Duration) repository.SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &sessionStore{
		client:  client,
		prefix:  "relay:session:",
		timeout: timeout,
	}
}

func (s *sessionStore) Resolve(ctx context.Context, id string) (*domain.ClientSession, bool, error) {
	if id != "" {
		sess, err := s.get(ctx, id)
		if err != nil && err != redislib.Nil {
			return nil, false, err
		}
		if err == nil {
			sess.LastAccess = time.Now()
			if err := s.save(ctx, sess); err != nil {
				return nil, false, err
			}
			return sess, false, nil
		}
	}

	sess := &domain.ClientSession{
		ID:         uuid.NewString(),
		Cookies:    make(map[string]string),
		LastAccess: time.Now(),
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

func (s *sessionStore) MergeCookies(ctx context.Context, id string, cookies map[string]string) error {
	sess, err := s.get(ctx, id)
	if err == redislib.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	for name, value := range cookies {
		sess.Cookies[name] = value
	}
	sess.LastAccess = time.Now()
	return s.save(ctx, sess)
}

func (s *sessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// Sweep is a no-op: record TTLs already evict idle sessions.
func (s *sessionStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *sessionStore) get(ctx context.Context, id string) (*domain.ClientSession, error) {
	result, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		return nil, err
	}
	var sess domain.ClientSession
	if err := json.Unmarshal([]byte(result), &sess); err != nil {
		return nil, err
	}
	if sess.Cookies == nil {
		sess.Cookies = make(map[string]string)
	}
	return &sess, nil
}

func (s *sessionStore) save(ctx context.Context, sess *domain.ClientSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sess.ID), payload, s.timeout).Err()
}

func (s *sessionStore) key(id string) string {
	return s.prefix + id
}
