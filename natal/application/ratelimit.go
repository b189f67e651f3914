package application

import (
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
)

const DefaultRetryAfter = time.Second

// RateLimitService decide se um cliente pode seguir, sem saber nada de HTTP.
//
// Retry-After acompanha o bucket do cliente: quando o limiter informa quanto
// falta para o próximo token (domain.Backoff), esse prazo é usado; RetryAfter
// é o piso.
type RateLimitService struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
}

func (s RateLimitService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}
	return domain.Decision{Allowed: false, RetryAfter: s.retryAfter(lim)}
}

func (s RateLimitService) retryAfter(lim domain.Limiter) time.Duration {
	floor := s.RetryAfter
	if floor <= 0 {
		floor = DefaultRetryAfter
	}
	if b, ok := lim.(domain.Backoff); ok {
		if next := b.NextIn(); next > floor {
			return next
		}
	}
	return floor
}
