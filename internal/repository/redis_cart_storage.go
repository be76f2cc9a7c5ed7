package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisCartStorage struct {
	client *redis.Client
	key    string
}

func NewRedisCartStorage(client *redis.Client, key string) (*RedisCartStorage, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &RedisCartStorage{
		client: client,
		key:    key,
	}, nil
}

func (s *RedisCartStorage) Load(ctx context.Context) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("client.Get: %w", err)
	}

	return value, true, nil
}

func (s *RedisCartStorage) Save(ctx context.Context, blob []byte) error {
	if blob == nil {
		return fmt.Errorf("blob is nil")
	}

	if err := s.client.Set(ctx, s.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}
