// redis — Persister клиентского кэша в Redis (общий кэш для нескольких клиентов).
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-user-directory/internal/cache"
)

// DefaultPrefix — префикс ключей по умолчанию.
const DefaultPrefix = "users-cli:"

// Persister хранит значение строкой под prefix+key, без TTL.
type Persister struct {
	rdb    *redis.Client
	prefix string
}

var _ cache.Persister = (*Persister)(nil)

// New создаёт клиента из URL (redis://:pass@host:6379/0) и проверяет связь.
// Пустой prefix заменяется на DefaultPrefix.
func New(ctx context.Context, redisURL, prefix string) (*Persister, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Persister{rdb: rdb, prefix: prefix}, nil
}

func (p *Persister) k(key string) string { return p.prefix + key }

func (p *Persister) Load(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := p.rdb.Get(ctx, p.k(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", p.k(key), err)
	}

	return raw, true, nil
}

func (p *Persister) Save(ctx context.Context, key string, data []byte) error {
	if err := p.rdb.Set(ctx, p.k(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", p.k(key), err)
	}

	return nil
}

func (p *Persister) Close() error { return p.rdb.Close() }
