package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/summon/internal/store"
)

// Store hands out blobs kept in Redis string keys.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Blob returns the document stored at key. A zero ttl keeps it forever.
func (s *Store) Blob(key string, ttl time.Duration) *Blob {
	return &Blob{client: s.client, key: key, ttl: ttl}
}

// Flush removes every summon key.
func (s *Store) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush keys: %w", err)
	}
	return nil
}

// Blob is a document stored under a single Redis key.
type Blob struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (b *Blob) Read(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", b.key, err)
	}
	return data, nil
}

func (b *Blob) Write(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, b.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", b.key, err)
	}
	return nil
}

var _ store.Blob = (*Blob)(nil)
