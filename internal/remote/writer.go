package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
)

// Writer is the capability the sync engine pushes records through. The
// remote store is a flat namespace of child keys under one root.
type Writer interface {
	// Ready reports whether the underlying connection was initialized.
	Ready() bool
	// Put writes a record under the given child key.
	Put(ctx context.Context, key string, rec models.RemoteRecord) error
	// GenerateKey returns a fresh unique child key.
	GenerateKey(ctx context.Context) (string, error)
	// Clear removes every record under the root.
	Clear(ctx context.Context) error
}

// RedisWriter stores records as JSON fields of one Redis hash.
type RedisWriter struct {
	client  *redis.Client
	rootKey string
}

// NewRedisWriter constructs a RedisWriter rooted at rootKey.
func NewRedisWriter(client *redis.Client, rootKey string) *RedisWriter {
	if rootKey == "" {
		rootKey = "yoga_classes"
	}
	return &RedisWriter{client: client, rootKey: rootKey}
}

// Ready implements Writer.
func (w *RedisWriter) Ready() bool {
	return w != nil && w.client != nil
}

// Put implements Writer.
func (w *RedisWriter) Put(ctx context.Context, key string, rec models.RemoteRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := w.client.HSet(ctx, w.rootKey, key, payload).Err(); err != nil {
		return fmt.Errorf("write record %s: %w", key, err)
	}
	return nil
}

// GenerateKey implements Writer.
func (w *RedisWriter) GenerateKey(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}

// Clear implements Writer.
func (w *RedisWriter) Clear(ctx context.Context) error {
	if err := w.client.Del(ctx, w.rootKey).Err(); err != nil {
		return fmt.Errorf("clear remote store: %w", err)
	}
	return nil
}
