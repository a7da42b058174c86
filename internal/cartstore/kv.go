package cartstore

import (
	"context"
	"errors"
	"sync"

	redisclient "github.com/vinoteca/vinoteca-backend/pkg/redis"
)

// KV is the durable key-value backend the working cart mirrors into. It is
// deliberately narrow: implementations only need string get/set/delete.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// RedisKV adapts the shared Redis client to the KV surface.
type RedisKV struct {
	client *redisclient.Client
}

// NewRedisKV wraps the provided Redis client.
func NewRedisKV(client *redisclient.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.client.Key(key))
	if errors.Is(err, redisclient.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.client.Key(key), value, 0)
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.Key(key))
}

// MemoryKV is an in-process KV used by tests and as a degraded fallback.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
