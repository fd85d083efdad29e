package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss - ключа нет в кеше или срок его жизни истёк.
var ErrCacheMiss = errors.New("ключ не найден в кеше")

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	// Expire задаёт срок жизни существующему ключу, в том числе счётчику.
	Expire(ctx context.Context, key string, expiration time.Duration) error
	// DelByPrefix удаляет все ключи с префиксом и возвращает их количество.
	DelByPrefix(ctx context.Context, prefix string) (int64, error)
	Close() error
}
