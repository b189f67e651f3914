package infra

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisResultCache é a camada compartilhada do cache de resultados: JSON com EX.
//
// Erros do Redis são logados e tratados como miss.
type RedisResultCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedisResultCache(rdb *redis.Client, prefix string, ttl time.Duration, log zerolog.Logger) *RedisResultCache {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = "astrocalc:result"
	}
	return &RedisResultCache{rdb: rdb, prefix: prefix, ttl: ttl, log: log.With().Str("component", "result_redis").Logger()}
}

func (c *RedisResultCache) key(k string) string { return c.prefix + ":" + k }

// Get lê o valor e o PTTL no mesmo pipeline; o PTTL é o prazo restante usado
// para re-popular a memória.
func (c *RedisResultCache) Get(ctx context.Context, key string) (domain.NatalResult, time.Duration, bool) {
	var (
		res  domain.NatalResult
		get  *redis.StringCmd
		pttl *redis.DurationCmd
	)
	k := c.key(key)
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, k)
		pttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return res, 0, false
	}

	raw, err := get.Bytes()
	if err != nil {
		return res, 0, false
	}
	remaining := pttl.Val()
	switch {
	case remaining == -1:
		// chave sem expiração (gravada fora do serviço)
		remaining = c.ttl
	case remaining <= 0:
		return res, 0, false
	}

	if err := json.Unmarshal(raw, &res); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("redis value is not a natal result")
		return res, 0, false
	}
	return res, remaining, true
}

func (c *RedisResultCache) Set(ctx context.Context, key string, res domain.NatalResult) {
	b, err := json.Marshal(res)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("marshal natal result")
		return
	}
	if err := c.rdb.Set(ctx, c.key(key), b, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}
