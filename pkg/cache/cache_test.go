package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
	clocktesting "k8s.io/utils/clock/testing"
)

type recordingObserver struct {
	hits, misses atomic.Int32
}

func (r *recordingObserver) RecordCacheLookup(_ context.Context, _ string, hit bool) {
	if hit {
		r.hits.Add(1)
	} else {
		r.misses.Add(1)
	}
}

type CacheSuite struct {
	suite.Suite
	cfg   Config
	clock *clocktesting.FakePassiveClock
	cache *Cache
	calls int
}

func (s *CacheSuite) SetupTest() {
	s.cfg = Config{Enabled: true, TTL: 30 * time.Second}
	s.clock = clocktesting.NewFakePassiveClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s.cache = New(ConfigProviderFunc(func() Config { return s.cfg }), WithClock(s.clock))
	s.calls = 0
}

func (s *CacheSuite) TearDownTest() {
	s.cache.Clear()
}

func (s *CacheSuite) tracked(ctx context.Context, args ...any) (string, error) {
	s.calls++
	return fmt.Sprintf("result-%v", args[0]), nil
}

func (s *CacheSuite) advance(d time.Duration) {
	s.clock.SetTime(s.clock.Now().Add(d))
}

// storeAged inserts an entry as if it had been written age ago.
func (s *CacheSuite) storeAged(key string, value any, age time.Duration) {
	s.advance(-age)
	s.cache.Set(key, value)
	s.advance(age)
}

func (s *CacheSuite) TestDisabledPassthrough() {
	s.cfg.Enabled = false
	fn := Wrap(s.cache, "test", s.tracked)

	r1, err1 := fn(context.Background(), "a")
	r2, err2 := fn(context.Background(), "a")

	s.Run("returns results unchanged", func() {
		s.NoError(err1)
		s.NoError(err2)
		s.Equal("result-a", r1)
		s.Equal("result-a", r2)
	})
	s.Run("invokes the operation on every call", func() {
		s.Equal(2, s.calls)
	})
	s.Run("does not store anything", func() {
		s.Equal(0, s.cache.Len())
	})
	s.Run("does not acquire the store lock", func() {
		s.cache.mu.Lock()
		defer s.cache.mu.Unlock()
		done := make(chan string, 1)
		go func() {
			result, _ := Do(context.Background(), s.cache, NewKey("test", "a"), func(context.Context) (string, error) {
				return "computed", nil
			})
			done <- result
		}()
		select {
		case result := <-done:
			s.Equal("computed", result)
		case <-time.After(time.Second):
			s.Fail("Do blocked on the store lock while caching is disabled")
		}
	})
}

func (s *CacheSuite) TestHitSuppressesRecomputation() {
	fn := Wrap(s.cache, "test", s.tracked)

	r1, _ := fn(context.Background(), "a")
	r2, _ := fn(context.Background(), "a")

	s.Equal("result-a", r1)
	s.Equal("result-a", r2)
	s.Equal(1, s.calls)
}

func (s *CacheSuite) TestKeyDiscrimination() {
	fn := Wrap(s.cache, "test", s.tracked)

	r1, _ := fn(context.Background(), "a")
	r2, _ := fn(context.Background(), "b")
	r3, _ := fn(context.Background(), "a")

	s.Equal("result-a", r1)
	s.Equal("result-b", r2)
	s.Equal("result-a", r3)
	s.Equal(2, s.calls)
}

func (s *CacheSuite) TestExpiry() {
	s.Run("recomputes once the TTL has elapsed", func() {
		s.cfg.TTL = time.Second
		fn := Wrap(s.cache, "test", s.tracked)
		_, _ = fn(context.Background(), "a")
		s.advance(1100 * time.Millisecond)
		_, _ = fn(context.Background(), "a")
		s.Equal(2, s.calls)
	})
	s.Run("uses the TTL in effect at read time", func() {
		s.cache.Clear()
		s.calls = 0
		s.cfg.TTL = time.Minute
		fn := Wrap(s.cache, "test", s.tracked)
		_, _ = fn(context.Background(), "a")
		s.advance(10 * time.Second)
		s.cfg.TTL = 5 * time.Second
		_, _ = fn(context.Background(), "a")
		s.Equal(2, s.calls)
	})
	s.Run("removes the expired entry on lookup", func() {
		s.cache.Clear()
		s.cfg.TTL = time.Second
		s.storeAged("stale", "old", time.Hour)
		_, ok := s.cache.lookup("stale", s.cfg.TTL)
		s.False(ok)
		s.False(s.cache.Contains("stale"))
	})
}

func (s *CacheSuite) TestExpiryWallClock() {
	if testing.Short() {
		s.T().Skip("sleeps past the TTL")
	}
	c := New(ConfigProviderFunc(func() Config { return Config{Enabled: true, TTL: time.Second} }))
	calls := 0
	fn := Wrap(c, "test", func(_ context.Context, args ...any) (string, error) {
		calls++
		return fmt.Sprintf("result-%v", args[0]), nil
	})
	r1, _ := fn(context.Background(), "a")
	time.Sleep(1100 * time.Millisecond)
	r2, _ := fn(context.Background(), "a")
	s.Equal("result-a", r1)
	s.Equal("result-a", r2)
	s.Equal(2, calls)
}

type instance struct {
	name string
}

func (i *instance) String() string {
	return fmt.Sprintf("instance-%p", i)
}

func (s *CacheSuite) TestPerInstanceIsolation() {
	method := func(receiver *instance, arg string) (string, error) {
		return Do(context.Background(), s.cache, NewKey("method", receiver, arg), func(ctx context.Context) (string, error) {
			return s.tracked(ctx, arg)
		})
	}
	obj1 := &instance{name: "obj"}
	obj2 := &instance{name: "obj"}

	r1, _ := method(obj1, "a")
	r2, _ := method(obj1, "a")
	r3, _ := method(obj2, "a")

	s.Equal("result-a", r1)
	s.Equal("result-a", r2)
	s.Equal("result-a", r3)
	s.Equal(2, s.calls)
}

func (s *CacheSuite) TestErrorsPropagateAndAreNotCached() {
	boom := errors.New("boom")
	attempts := 0
	fn := func(context.Context) (string, error) {
		attempts++
		return "", boom
	}
	_, err1 := Do(context.Background(), s.cache, NewKey("failing"), fn)
	_, err2 := Do(context.Background(), s.cache, NewKey("failing"), fn)
	s.ErrorIs(err1, boom)
	s.ErrorIs(err2, boom)
	s.Equal(2, attempts)
	s.Equal(0, s.cache.Len())
}

func (s *CacheSuite) TestNilCacheIsPassthrough() {
	var c *Cache
	calls := 0
	for i := 0; i < 2; i++ {
		v, err := Do(context.Background(), c, NewKey("nil"), func(context.Context) (int, error) {
			calls++
			return 42, nil
		})
		s.NoError(err)
		s.Equal(42, v)
	}
	s.Equal(2, calls)
	s.Equal(0, c.Clear())
	s.False(c.Stats().CachingEnabled)
}

func (s *CacheSuite) TestWrapDefaultPrefix() {
	fn := Wrap(s.cache, "", s.tracked)
	_, _ = fn(context.Background(), "a")
	s.Equal(1, s.cache.Invalidate("tracked"))
}

func (s *CacheSuite) TestClear() {
	s.cache.Set("key1", "value1")
	s.cache.Set("key2", "value2")

	count := s.cache.Clear()

	s.Equal(2, count)
	s.Equal(0, s.cache.Len())
}

func (s *CacheSuite) TestClearExpired() {
	s.storeAged("old", "old_value", 100*time.Second)
	s.cache.Set("new", "new_value")

	count := s.cache.ClearExpired()

	s.Equal(1, count)
	s.False(s.cache.Contains("old"))
	s.True(s.cache.Contains("new"))
}

func (s *CacheSuite) TestInvalidate() {
	s.cache.Set("workbenches:ns1", []string{})
	s.cache.Set("workbenches:ns2", []string{})
	s.cache.Set("projects:all", []string{})

	s.Run("removes entries containing the pattern", func() {
		count := s.cache.Invalidate("workbenches")
		s.Equal(2, count)
		s.False(s.cache.Contains("workbenches:ns1"))
		s.False(s.cache.Contains("workbenches:ns2"))
		s.True(s.cache.Contains("projects:all"))
	})
	s.Run("returns zero when nothing matches", func() {
		s.Equal(0, s.cache.Invalidate("notebooks"))
		s.Equal(1, s.cache.Len())
	})
}

func (s *CacheSuite) TestStats() {
	s.cache.Set("fresh", "value")
	s.storeAged("stale", "old_value", 100*time.Second)

	stats := s.cache.Stats()

	s.Run("reports entry counts", func() {
		s.Equal(2, stats.TotalEntries)
		s.Equal(1, stats.ExpiredEntries)
		s.Equal(1, stats.ActiveEntries)
	})
	s.Run("reports configuration", func() {
		s.True(stats.CachingEnabled)
		s.Equal(30.0, stats.TTLSeconds)
	})
	s.Run("does not remove stale entries", func() {
		s.True(s.cache.Contains("stale"))
		s.Equal(1, s.cache.ClearExpired())
	})
}

func (s *CacheSuite) TestObserver() {
	observer := &recordingObserver{}
	c := New(ConfigProviderFunc(func() Config { return s.cfg }), WithObserver(observer))
	fn := Wrap(c, "observed", s.tracked)
	_, _ = fn(context.Background(), "a")
	_, _ = fn(context.Background(), "a")
	_, _ = fn(context.Background(), "b")
	s.Equal(int32(1), observer.hits.Load())
	s.Equal(int32(2), observer.misses.Load())
}

func (s *CacheSuite) TestConcurrentAccess() {
	var calls atomic.Int32
	fn := Wrap(s.cache, "concurrent", func(_ context.Context, args ...any) (string, error) {
		calls.Add(1)
		return fmt.Sprintf("result-%v", args[0]), nil
	})
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 50; i++ {
		arg := i % 5
		g.Go(func() error {
			r, err := fn(ctx, arg)
			if err != nil {
				return err
			}
			if r != fmt.Sprintf("result-%v", arg) {
				return fmt.Errorf("unexpected result %q for %v", r, arg)
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(5, s.cache.Len())
	s.GreaterOrEqual(calls.Load(), int32(5))
}

func TestCache(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}
