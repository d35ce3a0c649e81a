package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates no snapshot is stored for the subject.
	ErrCacheMiss = errors.New("session: cache miss")

	// ErrRedisUnavailable wraps transport-level Redis failures so
	// callers can distinguish them from a plain miss.
	ErrRedisUnavailable = errors.New("session: redis unavailable")
)

// Cache stores session snapshots in Redis keyed by subject id.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache returns a Cache over client. prefix namespaces the keys and
// ttl bounds how long a snapshot survives without a refresh.
func NewCache(client *redis.Client, prefix string, ttl time.Duration) (*Cache, error) {
	if client == nil {
		return nil, errors.New("session: redis client is required")
	}
	if prefix == "" {
		return nil, errors.New("session: key prefix is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}, nil
}

func (c *Cache) key(subjectID string) string {
	return c.prefix + ":snapshot:" + subjectID
}

// Save writes or overwrites the snapshot for its subject.
func (c *Cache) Save(ctx context.Context, s Snapshot) error {
	if s.SubjectID == "" {
		return errors.New("session: snapshot has no subject id")
	}
	data, err := encode(s)
	if err != nil {
		return fmt.Errorf("session: encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key(s.SubjectID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load returns the stored snapshot for subjectID. A corrupt or
// incompatible entry is deleted and reported as its decode error.
func (c *Cache) Load(ctx context.Context, subjectID string) (Snapshot, error) {
	data, err := c.client.Get(ctx, c.key(subjectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrCacheMiss
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	s, err := decode(data)
	if err != nil {
		c.client.Del(ctx, c.key(subjectID))
		return Snapshot{}, err
	}
	return s, nil
}

// Delete removes the snapshot for subjectID. Missing keys are not an
// error.
func (c *Cache) Delete(ctx context.Context, subjectID string) error {
	if err := c.client.Del(ctx, c.key(subjectID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
