//go:build unit || e2e

package fakes

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var ErrCacheDown = errors.New("fake cache: connection refused")

// Op names passed to the hooks.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
)

// MemoryCache is an in-process stand-in for the Redis lock store. SetIfAbsent is atomic
// under a single mutex, which is the only property the lock protocol relies on.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry

	// Before runs ahead of every operation, outside the lock, so tests can
	// interleave concurrent callers deterministically.
	Before func(op, key string)
	// Fail returns the error to inject for an operation, or nil.
	Fail func(op, key string) error

	sets    []string
	deletes []string
}

type entry struct {
	value string
	ttl   time.Duration
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry)}
}

func (c *MemoryCache) hook(op, key string) error {
	if c.Before != nil {
		c.Before(op, key)
	}
	if c.Fail != nil {
		return c.Fail(op, key)
	}
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := c.hook(OpGet, key); err != nil {
		return "", false, err
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, ok, nil
}

func (c *MemoryCache) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := c.hook(OpSet, key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false, nil
	}
	c.entries[key] = entry{value: value, ttl: ttl}
	c.sets = append(c.sets, key)
	return true, nil
}

func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := c.hook(OpDelete, k); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deletes = append(c.deletes, k)
	}
	return nil
}

// Put seeds a key as if another process held it.
func (c *MemoryCache) Put(key string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: "1", ttl: ttl}
}

// Expire drops a key as if its TTL had elapsed.
func (c *MemoryCache) Expire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *MemoryCache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key].ttl
}

// Keys returns the live keys with the given prefix, sorted.
func (c *MemoryCache) Keys(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Sets returns every key this cache has successfully set, in order.
func (c *MemoryCache) Sets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sets...)
}

func (c *MemoryCache) Deletes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deletes...)
}
