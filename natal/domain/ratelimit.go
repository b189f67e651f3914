package domain

import "time"

// Key identifica um cliente da API (IP, API key, etc).
type Key string

// Limiter decide se uma ação é permitida agora.
// A camada de infra usa golang.org/x/time/rate.
type Limiter interface {
	Allow() bool
}

// Backoff é implementado por limiters que sabem quanto falta para o
// próximo token do cliente.
type Backoff interface {
	NextIn() time.Duration
}

// LimiterStore obtém um limiter por chave.
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	RetryAfter time.Duration
}
