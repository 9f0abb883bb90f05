package cache

import (
	"context"
	"reflect"
	"runtime"
)

// Do returns the cached result for key, or calls fn and caches its result.
//
// When caching is disabled (or c is nil) fn is called directly and the store is not touched.
// Errors returned by fn are propagated unchanged and are never cached.
// Concurrent misses for the same key may each call fn; the last result stored wins.
// Cached values are shared between callers and must be treated as read-only.
func Do[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg := c.Config()
	if !cfg.Enabled {
		return fn(ctx)
	}

	cacheKey := key.String()
	if value, ok := c.lookup(cacheKey, cfg.TTL); ok {
		if typed, ok := value.(T); ok {
			c.observe(ctx, key.Prefix, true)
			return typed, nil
		}
	}
	c.observe(ctx, key.Prefix, false)

	result, err := fn(ctx)
	if err != nil {
		return result, err
	}
	c.store(cacheKey, result)
	return result, nil
}

// Wrap decorates fn so that each call is served through Do.
// The key is derived from prefix and the arguments of the call; an empty prefix
// falls back to the name of fn.
func Wrap[T any](c *Cache, prefix string, fn func(ctx context.Context, args ...any) (T, error)) func(ctx context.Context, args ...any) (T, error) {
	if prefix == "" {
		prefix = runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	}
	return func(ctx context.Context, args ...any) (T, error) {
		return Do(ctx, c, NewKey(prefix, args...), func(ctx context.Context) (T, error) {
			return fn(ctx, args...)
		})
	}
}

func (c *Cache) observe(ctx context.Context, prefix string, hit bool) {
	if c.observer != nil {
		c.observer.RecordCacheLookup(ctx, prefix, hit)
	}
}
