package ai

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Cache stores payloads by request fingerprint. Implementations must be safe
// for concurrent use. A Cache is an optimisation only: a miss is always a
// correct answer.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (any, bool)
	Put(ctx context.Context, fingerprint string, payload any, ttl time.Duration)
}

// Fingerprint derives the cache key for op and params. Params are sorted by
// name before hashing, so insertion order never changes the result.
func Fingerprint(op OpType, params Params) string {
	type encodedParam struct {
		name  string
		value []byte
	}

	encoded := make([]encodedParam, 0, len(params))
	for _, param := range params {
		value, err := json.Marshal(param.Value)
		if err != nil {
			value = []byte(fmt.Sprintf("%#v", param.Value))
		}
		encoded = append(encoded, encodedParam{name: param.Name, value: value})
	}
	sort.Slice(encoded, func(i, j int) bool {
		if encoded[i].name != encoded[j].name {
			return encoded[i].name < encoded[j].name
		}
		return string(encoded[i].value) < string(encoded[j].value)
	})

	hash := sha256.New()
	hash.Write([]byte(op))
	for _, param := range encoded {
		hash.Write([]byte{0})
		hash.Write([]byte(param.name))
		hash.Write([]byte{'='})
		hash.Write(param.value)
	}

	return "ai:v1:" + string(op) + ":" + hex.EncodeToString(hash.Sum(nil))
}

// CacheEntry is one stored payload.
type CacheEntry struct {
	Fingerprint string
	Payload     any
	CreatedAt   time.Time
	TTL         time.Duration
}

// Live reports whether the entry is still servable at now.
func (e CacheEntry) Live(now time.Time) bool {
	return now.Sub(e.CreatedAt) < e.TTL
}

// DefaultCacheCapacity bounds a MemoryCache built with a non-positive capacity.
const DefaultCacheCapacity = 1024

// MemoryCache is a bounded in-process Cache. Expired entries are evicted
// lazily on access; when full, the least recently inserted entry is dropped.
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List
	capacity int
	now      func() time.Time
}

// NewMemoryCache builds a MemoryCache holding at most capacity entries.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &MemoryCache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, fingerprint string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	entry := element.Value.(CacheEntry)
	if !entry.Live(c.now()) {
		c.order.Remove(element)
		delete(c.entries, fingerprint)
		return nil, false
	}
	return cloneTree(entry.Payload), true
}

func (c *MemoryCache) Put(_ context.Context, fingerprint string, payload any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := CacheEntry{
		Fingerprint: fingerprint,
		Payload:     cloneTree(payload),
		CreatedAt:   c.now(),
		TTL:         ttl,
	}

	if element, ok := c.entries[fingerprint]; ok {
		c.order.Remove(element)
		delete(c.entries, fingerprint)
	}

	for c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(CacheEntry).Fingerprint)
	}

	c.entries[fingerprint] = c.order.PushBack(entry)
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (any, bool)           { return nil, false }
func (NoopCache) Put(context.Context, string, any, time.Duration) {}

// cloneTree deep-copies a generic JSON tree so cached payloads cannot be
// mutated through a returned reference.
func cloneTree(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneTree(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneTree(item)
		}
		return out
	default:
		return v
	}
}
