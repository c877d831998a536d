package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

const redisKeyPrefix = "countdown:blob:"

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) domain.BlobStore {
	return &redisStore{
		client: client,
	}
}

func (s *redisStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	val, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get %s: %w", ErrRedisConnection, key, err)
	}

	return val, nil
}

// Save overwrites the blob without expiry.
func (s *redisStore) Save(ctx context.Context, key string, blob []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := s.client.Set(ctx, redisKeyPrefix+key, blob, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrRedisConnection, key, err)
	}

	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisConnection, err)
	}
	return nil
}
