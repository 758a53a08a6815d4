// Package otp keeps the one-time codes issued by send-otp in Redis.
// Each email has at most one live code; a new code replaces the old one.
package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/common"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

type Store interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume deletes the code of email when it matches code. A missing,
	// expired or different code yields common.ErrorInvalidCredentials and
	// keeps the stored code.
	Consume(ctx context.Context, email, code string) error
}

type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func key(email string) string { return keyPrefix + email }

func (s *RedisStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, email, code string) error {
	stored, err := s.client.Get(ctx, key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.ErrorInvalidCredentials
		}
		return fmt.Errorf("redis get: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return common.ErrorInvalidCredentials
	}

	if err := s.client.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
