package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each list as a JSON string value.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]domain.Record, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.Record{}, nil
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decodeRecords(data)
}

func (s *RedisStore) Save(ctx context.Context, key string, records []domain.Record) error {
	payload, err := encodeRecords(records)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the client is shared with the lock and closed by its owner.
func (s *RedisStore) Close() error { return nil }

var _ RecordStore = (*RedisStore)(nil)
