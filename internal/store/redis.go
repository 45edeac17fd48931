package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisKV struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to redis using a redis:// URL. A bare host:port is
// accepted as well. Keys are namespaced under prefix.
func OpenRedis(ctx context.Context, rawURL, prefix string) (Store, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		opt = &redis.Options{Addr: rawURL}
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opt.Addr, err)
	}
	return newListStore("redis", opt.Addr, &redisKV{client: client, prefix: prefix}), nil
}

func (r *redisKV) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *redisKV) get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errNotFound
	}
	return b, err
}

func (r *redisKV) put(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *redisKV) size(ctx context.Context) (int64, error) {
	var total int64
	for _, k := range []string{HistoryKey, VocabularyKey} {
		n, err := r.client.StrLen(ctx, r.key(k)).Result()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *redisKV) close() error {
	return r.client.Close()
}
