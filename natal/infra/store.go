package infra

import (
	"context"
	"sync"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"golang.org/x/time/rate"
)

const (
	DefaultLimiterIdleTTL = 15 * time.Minute
	DefaultLimiterCleanup = 2 * time.Minute
)

// LimiterStore guarda um token bucket (x/time/rate) por cliente da API.
//
// Chaves sem uso há mais de idleTTL são descartadas pelo janitor; um cliente
// que volta depois disso recomeça com o bucket cheio.
type LimiterStore struct {
	mu           sync.Mutex
	clients      map[domain.Key]*clientLimiter
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

// clientLimiter é o bucket de um cliente. Todas as leituras usam o relógio do
// store, o que mantém Allow e NextIn coerentes entre si (e testáveis).
type clientLimiter struct {
	lim      *rate.Limiter
	now      func() time.Time
	lastSeen time.Time
}

func (c *clientLimiter) Allow() bool { return c.lim.AllowN(c.now(), 1) }

// NextIn implementa domain.Backoff: tempo até o bucket voltar a ter um token.
func (c *clientLimiter) NextIn() time.Duration {
	limit := c.lim.Limit()
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	missing := 1 - c.lim.TokensAt(c.now())
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(limit) * float64(time.Second))
}

type LimiterOption func(*LimiterStore)

func WithIdleTTL(d time.Duration) LimiterOption {
	return func(s *LimiterStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) LimiterOption {
	return func(s *LimiterStore) { s.cleanupEvery = d }
}

// WithLimiterClock injeta o relógio (usado em testes).
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(s *LimiterStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewLimiterStore(rps float64, burst int, opts ...LimiterOption) *LimiterStore {
	if burst <= 0 {
		burst = 1
	}
	s := &LimiterStore{
		clients:      make(map[domain.Key]*clientLimiter),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      DefaultLimiterIdleTTL,
		cleanupEvery: DefaultLimiterCleanup,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LimiterStore) RPS() float64 { return float64(s.rps) }
func (s *LimiterStore) Burst() int   { return s.burst }

// Get implementa domain.LimiterStore.
func (s *LimiterStore) Get(key domain.Key) domain.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(s.rps, s.burst), now: s.now}
		s.clients[key] = c
	}
	c.lastSeen = now
	return c
}

// Len é o número de clientes acompanhados; aparece no /status.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Cleanup remove clientes inativos e devolve quantos saíram.
func (s *LimiterStore) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, c := range s.clients {
		if c.lastSeen.Before(cutoff) {
			delete(s.clients, k)
			removed++
		}
	}
	return removed
}

// StartJanitor limpa clientes inativos até ctx encerrar.
func (s *LimiterStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
