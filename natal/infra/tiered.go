package infra

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Tier é uma camada de cache secundária (Redis, SQL).
// Implementações tratam falha de backend como miss.
//
// Get devolve também o tempo de vida que resta à entrada; o re-popular da
// memória usa esse prazo, nunca um TTL novo.
type Tier[V any] interface {
	Get(ctx context.Context, key string) (value V, remaining time.Duration, ok bool)
	Set(ctx context.Context, key string, value V)
}

// Tiered combina memória (L1) com uma camada compartilhada/persistente (L2).
//
// Leitura: L1 -> L2; hit em L2 re-popula L1 até o prazo original. Escrita: L1 e L2.
type Tiered[V any] struct {
	L1  *TTLCache[V]
	L2  Tier[V]
	Log zerolog.Logger
}

func (t *Tiered[V]) Get(ctx context.Context, key string) (V, bool) {
	if v, ok := t.L1.Get(key); ok {
		return v, true
	}
	if t.L2 == nil {
		var zero V
		return zero, false
	}
	v, remaining, ok := t.L2.Get(ctx, key)
	if !ok {
		return v, false
	}
	if remaining > 0 {
		t.L1.SetTTL(key, v, remaining)
		t.Log.Debug().Str("key", key).Dur("remaining", remaining).Msg("cache L2 hit, backfilled memory")
	}
	return v, true
}

func (t *Tiered[V]) Set(ctx context.Context, key string, value V) {
	t.L1.Set(key, value)
	if t.L2 != nil {
		t.L2.Set(ctx, key, value)
	}
}

func (t *Tiered[V]) Len() int { return t.L1.Len() }
