package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCacheRepository - кеш внутри процесса для одного экземпляра сервиса.
// Счётчики хранятся отдельно от LRU и не вытесняются. Срок жизни у счётчика появляется
// только через Expire (счётчики неудачных входов), счётчики версий живут вечно.
type MemoryCacheRepository struct {
	entries *expirable.LRU[string, memoryEntry]
	maxTTL  time.Duration

	mu       sync.Mutex
	counters map[string]int64
	deadline map[string]time.Time
	now      func() time.Time
}

// NewMemoryCacheRepository создаёт LRU на capacity ключей. maxTTL - верхняя граница жизни записи.
func NewMemoryCacheRepository(capacity int, maxTTL time.Duration) CacheRepositoryInterface {
	return newMemoryCacheRepository(capacity, maxTTL)
}

func newMemoryCacheRepository(capacity int, maxTTL time.Duration) *MemoryCacheRepository {
	return &MemoryCacheRepository{
		entries:  expirable.NewLRU[string, memoryEntry](capacity, nil, maxTTL),
		maxTTL:   maxTTL,
		counters: make(map[string]int64),
		deadline: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (r *MemoryCacheRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	r.expireCounterLocked(key)
	counter, isCounter := r.counters[key]
	r.mu.Unlock()
	if isCounter {
		return strconv.FormatInt(counter, 10), nil
	}

	entry, ok := r.entries.Get(key)
	if !ok {
		return "", ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt) {
		r.entries.Remove(key)
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		str = fmt.Sprint(v)
	}

	entry := memoryEntry{value: str}
	if expiration > 0 && (r.maxTTL <= 0 || expiration < r.maxTTL) {
		entry.expiresAt = r.now().Add(expiration)
	}
	r.entries.Add(key, entry)
	return nil
}

func (r *MemoryCacheRepository) Del(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.counters, key)
		delete(r.deadline, key)
		r.entries.Remove(key)
	}
	return nil
}

func (r *MemoryCacheRepository) Incr(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireCounterLocked(key)
	r.counters[key]++
	return r.counters[key], nil
}

func (r *MemoryCacheRepository) Expire(_ context.Context, key string, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.counters[key]; ok {
		r.deadline[key] = r.now().Add(expiration)
		return nil
	}

	entry, ok := r.entries.Get(key)
	if !ok {
		return nil
	}
	entry.expiresAt = r.now().Add(expiration)
	r.entries.Add(key, entry)
	return nil
}

// expireCounterLocked удаляет счётчик с истёкшим сроком. Вызывается под r.mu.
func (r *MemoryCacheRepository) expireCounterLocked(key string) {
	if at, ok := r.deadline[key]; ok && !r.now().Before(at) {
		delete(r.counters, key)
		delete(r.deadline, key)
	}
}

// DelByPrefix не трогает счётчики версий: они должны только расти.
func (r *MemoryCacheRepository) DelByPrefix(_ context.Context, prefix string) (int64, error) {
	var deleted int64
	for _, key := range r.entries.Keys() {
		if strings.HasPrefix(key, prefix) && r.entries.Remove(key) {
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryCacheRepository) Close() error {
	r.entries.Purge()
	return nil
}
