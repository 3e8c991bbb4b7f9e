package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	MaxRetries int
}

// RedisStore shares values between agents through Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// DialRedis connects and pings, backing off between attempts.
func DialRedis(ctx context.Context, opts RedisOptions, logger *logging.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Component("kvstore")
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}

	client := redis.NewClient(&redis.Options{
		Addr:            opts.Addr,
		Password:        opts.Password,
		DB:              opts.DB,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})

	var err error
	for i := range opts.MaxRetries {
		if i > 0 {
			backoff := time.Duration(1<<uint(i)) * 250 * time.Millisecond
			logger.Info("waiting before redis retry", zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				client.Close()
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		err = client.Ping(ctx).Err()
		if err == nil {
			logger.Info("redis connected", zap.String("addr", opts.Addr), zap.Int("attempts", i+1))
			return &RedisStore{client: client, prefix: opts.KeyPrefix}, nil
		}
		logger.Warn("redis ping failed", zap.Int("attempt", i+1), zap.Error(err))
	}

	client.Close()
	return nil, fmt.Errorf("connect to redis after %d attempts: %w", opts.MaxRetries, err)
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, r.wrap("get", err)
	}
	return v, true, nil
}

func (r *RedisStore) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	ok, err := r.client.SetNX(ctx, r.key(key), value, 0).Result()
	if err != nil {
		return "", r.wrap("setnx", err)
	}
	if ok {
		return value, nil
	}
	// lost the race; report the winner
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		return "", r.wrap("get", err)
	}
	return v, nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return r.wrap("del", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) wrap(op string, err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("redis %s: %w", op, err)
}
