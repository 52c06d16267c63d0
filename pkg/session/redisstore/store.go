// Package redisstore persists sessions in Redis, one key per session.
// Expiry is carried by the key TTL, so Touch is a single PEXPIRE.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/webseed/pkg/session"
)

const DefaultPrefix = "sess:"

// Store implements session.Store on top of a Redis client.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

type Option func(*Store)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) Get(ctx context.Context, id string) (session.Record, error) {
	var (
		get *redis.StringCmd
		ttl *redis.DurationCmd
	)
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, s.key(id))
		ttl = p.PTTL(ctx, s.key(id))
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return session.Record{}, session.ErrSessionNotFound
	}
	if err != nil {
		return session.Record{}, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(get.Val()), &data); err != nil {
		return session.Record{}, err
	}

	rec := session.Record{ID: id, Data: data}
	if d := ttl.Val(); d > 0 {
		rec.Expires = s.now().Add(d)
	}
	return rec, nil
}

func (s *Store) Set(ctx context.Context, rec session.Record) error {
	if rec.ID == "" {
		return session.ErrInvalidSession
	}

	ttl := rec.Expires.Sub(s.now())
	if ttl <= 0 {
		return s.Destroy(ctx, rec.ID)
	}

	data := rec.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.key(rec.ID), raw, ttl).Err()
}

func (s *Store) Touch(ctx context.Context, id string, expires time.Time) error {
	ttl := expires.Sub(s.now())
	if ttl <= 0 {
		return s.Destroy(ctx, id)
	}

	ok, err := s.client.PExpire(ctx, s.key(id), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Destroy(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
