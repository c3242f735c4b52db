// Package checkpoint provides CheckPointStore backends for compiled eino graphs.
package checkpoint

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"
)

var ErrEmptyID = errors.New("checkpoint id is empty")

// Store is a compose.CheckPointStore that can also forget a checkpoint.
type Store interface {
	compose.CheckPointStore
	Delete(ctx context.Context, checkPointID string) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// Open picks the backend for a scenario: Redis when redisURL is set,
// otherwise files under dir. The returned close func releases the client.
func Open(ctx context.Context, redisURL, dir string) (Store, func() error, error) {
	if redisURL != "" {
		client, err := Dial(ctx, redisURL)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client, "", DefaultTTL), client.Close, nil
	}
	fs, err := NewFileStore(dir)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() error { return nil }, nil
}
