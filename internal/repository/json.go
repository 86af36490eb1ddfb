package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentease/internal/domain"
)

// GetJSON decodes the value stored at key into v. A missing key reports false.
func GetJSON(ctx context.Context, kv domain.KeyValueStore, key string, v interface{}) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, kv domain.KeyValueStore, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}
	return kv.Set(ctx, key, string(data), ttl)
}
