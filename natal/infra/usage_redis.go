package infra

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisUsageStore espelha a telemetria no Redis para várias instâncias.
//
// Layout:
//
//	prefix:total              hash kind -> contagem (não expira)
//	prefix:day:YYYYMMDD       hash kind -> contagem (expira em ttl)
//	prefix:providers          hash provider -> hits
//	prefix:day:YYYYMMDD:prov  hash provider -> hits do dia
//	prefix:last_hit           string JSON do último geocoding
type RedisUsageStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas nos baldes diários.
	ttl time.Duration
	loc *time.Location
	now func() time.Time
}

type RedisUsageOption func(*RedisUsageStore)

func WithUsagePrefix(prefix string) RedisUsageOption {
	return func(s *RedisUsageStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithUsageTTL(d time.Duration) RedisUsageOption {
	return func(s *RedisUsageStore) { s.ttl = d }
}

func WithRedisUsageLocation(loc *time.Location) RedisUsageOption {
	return func(s *RedisUsageStore) { s.loc = loc }
}

func WithRedisUsageClock(now func() time.Time) RedisUsageOption {
	return func(s *RedisUsageStore) { s.now = now }
}

func NewRedisUsageStore(rdb *redis.Client, opts ...RedisUsageOption) *RedisUsageStore {
	s := &RedisUsageStore{
		rdb:    rdb,
		prefix: "astrocalc:usage",
		ttl:    48 * time.Hour,
		loc:    time.Local,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisUsageStore) dayKey(at time.Time) string {
	return s.prefix + ":day:" + at.In(s.loc).Format("20060102")
}

func (s *RedisUsageStore) Record(ctx context.Context, ev domain.UsageEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = s.now()
	}
	dayKey := s.dayKey(at)

	pipe := s.rdb.Pipeline()
	if ev.Kind == domain.UsageProviderHit {
		if ev.Provider != "" {
			pipe.HIncrBy(ctx, s.prefix+":providers", ev.Provider, 1)
			pipe.HIncrBy(ctx, dayKey+":prov", ev.Provider, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, dayKey+":prov", s.ttl)
			}
		}
		if ev.Geocode != nil {
			b, err := json.Marshal(domain.LastHit{Provider: ev.Provider, Place: ev.Place, Result: *ev.Geocode, At: at})
			if err != nil {
				return err
			}
			pipe.Set(ctx, s.prefix+":last_hit", b, 0)
		}
	} else {
		field := string(ev.Kind)
		pipe.HIncrBy(ctx, s.prefix+":total", field, 1)
		pipe.HIncrBy(ctx, dayKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, dayKey, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisUsageStore) Snapshot(ctx context.Context) (domain.UsageSnapshot, error) {
	var snap domain.UsageSnapshot
	if s == nil || s.rdb == nil {
		return snap, nil
	}

	now := s.now()
	dayKey := s.dayKey(now)

	pipe := s.rdb.Pipeline()
	total := pipe.HGetAll(ctx, s.prefix+":total")
	daily := pipe.HGetAll(ctx, dayKey)
	prov := pipe.HGetAll(ctx, s.prefix+":providers")
	dprov := pipe.HGetAll(ctx, dayKey+":prov")
	last := pipe.Get(ctx, s.prefix+":last_hit")
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return snap, err
	}

	snap.Total = countersFromHash(total.Val())
	snap.Daily = countersFromHash(daily.Val())
	snap.DailyDate = now.In(s.loc).Format(dayLayout)
	snap.ProviderHits = int64Map(prov.Val())
	snap.DailyProvider = int64Map(dprov.Val())

	if raw, err := last.Bytes(); err == nil {
		var lh domain.LastHit
		if json.Unmarshal(raw, &lh) == nil {
			snap.LastHit = &lh
		}
	}
	return snap, nil
}

func countersFromHash(h map[string]string) domain.Counters {
	get := func(k domain.UsageKind) int64 {
		n, _ := strconv.ParseInt(h[string(k)], 10, 64)
		return n
	}
	return domain.Counters{
		NatalCalls:    get(domain.UsageNatalCall),
		NatalComputed: get(domain.UsageNatalComputed),
		CacheHits:     get(domain.UsageCacheHit),
		ProviderCalls: get(domain.UsageProviderCall),
		RateLimited:   get(domain.UsageRateLimited),
	}
}

func int64Map(h map[string]string) map[string]int64 {
	out := make(map[string]int64, len(h))
	for k, v := range h {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[k] = n
	}
	return out
}
