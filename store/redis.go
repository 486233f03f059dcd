package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the credential pair in Redis under "<prefix>:authToken"
// and "<prefix>:refreshToken". Both keys are written in one MULTI/EXEC and
// removed with a single DEL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore builds a store on client. An empty prefix defaults to
// "fieldops". A ttl of zero keeps the keys until cleared.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "fieldops"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) accessKey() string {
	return r.prefix + ":" + KeyAccessToken
}

func (r *RedisStore) refreshKey() string {
	return r.prefix + ":" + KeyRefreshToken
}

func (r *RedisStore) Load(ctx context.Context) (Credentials, error) {
	if r == nil || r.client == nil {
		return Credentials{}, ErrUnavailable
	}

	vals, err := r.client.MGet(ctx, r.accessKey(), r.refreshKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var creds Credentials
	if len(vals) == 2 {
		creds.AccessToken, _ = vals[0].(string)
		creds.RefreshToken, _ = vals[1].(string)
	}
	return creds, nil
}

func (r *RedisStore) Save(ctx context.Context, creds Credentials) error {
	if r == nil || r.client == nil {
		return ErrUnavailable
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.accessKey(), creds.AccessToken, r.ttl)
		if creds.RefreshToken == "" {
			pipe.Del(ctx, r.refreshKey())
		} else {
			pipe.Set(ctx, r.refreshKey(), creds.RefreshToken, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if r == nil || r.client == nil {
		return ErrUnavailable
	}

	if err := r.client.Del(ctx, r.accessKey(), r.refreshKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
