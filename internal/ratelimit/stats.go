package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is one rate-limit decision
type Event struct {
	Key     string
	Allowed bool
	Method  string
	Path    string
	At      time.Time
}

// StatsStore records decisions. Recording is best effort: the middleware
// never fails a request because stats could not be written.
type StatsStore interface {
	Record(ctx context.Context, ev Event) error
}

// Counters holds allow/deny totals
type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

func (c *Counters) add(allowed bool) {
	if allowed {
		c.Allowed++
	} else {
		c.Denied++
	}
}

// MemoryStats keeps counters in process. Nothing expires.
type MemoryStats struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
}

// NewMemoryStats creates an empty in-memory stats store
func NewMemoryStats() *MemoryStats {
	return &MemoryStats{byRoute: make(map[string]Counters)}
}

// Record implements StatsStore
func (s *MemoryStats) Record(_ context.Context, ev Event) error {
	route := routeName(ev)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Allowed)
	c := s.byRoute[route]
	c.add(ev.Allowed)
	s.byRoute[route] = c
	return nil
}

// Total returns the counters over all routes
func (s *MemoryStats) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Route returns the counters of one "METHOD /path" route
func (s *MemoryStats) Route(route string) Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byRoute[route]
}

// RedisStats keeps counters in Redis hashes so several API instances share them:
//
//	<prefix>:total                    allowed / denied
//	<prefix>:minute:<YYYYMMDDhhmm>    allowed / denied, expiring after ttl
//	<prefix>:route                    "<METHOD /path>:allowed" / ":denied"
type RedisStats struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisStatsOption configures a RedisStats
type RedisStatsOption func(*RedisStats)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStats) { s.prefix = strings.Trim(prefix, ":") }
}

// WithTTL sets the expiry of per-minute buckets
func WithTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStats) { s.ttl = d }
}

// NewRedisStats creates a Redis-backed stats store
func NewRedisStats(rdb *redis.Client, opts ...RedisStatsOption) *RedisStats {
	s := &RedisStats{
		rdb:    rdb,
		prefix: "distconv:stats",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implements StatsStore
func (s *RedisStats) Record(ctx context.Context, ev Event) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	if route := routeName(ev); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Total reads the all-time counters
func (s *RedisStats) Total(ctx context.Context) (Counters, error) {
	vals, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return Counters{}, err
	}
	var c Counters
	fmt.Sscan(vals["allowed"], &c.Allowed)
	fmt.Sscan(vals["denied"], &c.Denied)
	return c, nil
}

func routeName(ev Event) string {
	return strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
}
