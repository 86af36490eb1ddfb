package domain

import (
	"context"
	"time"
)

// KeyValueStore is the string-keyed persistence used for settings, accounts,
// subscribers, snapshots and sessions. A zero ttl means no expiry.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Ping(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SnapshotQueue accepts key-value writes that may be retried in the background.
type SnapshotQueue interface {
	Enqueue(ctx context.Context, key string, value interface{}) error
}
