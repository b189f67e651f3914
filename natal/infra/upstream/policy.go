package upstream

import (
	"math/rand"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseSleep   = 600 * time.Millisecond
	DefaultMaxSleep    = 4 * time.Second
	DefaultJitter      = 250 * time.Millisecond
	DefaultTimeout     = 12 * time.Second
)

// Policy controla tentativas e espera entre elas.
//
// Espera antes da tentativa n+1: min(MaxSleep, BaseSleep*2^(n-1)) + U(0, Jitter).
// Não há espera depois da última tentativa.
type Policy struct {
	MaxAttempts int
	BaseSleep   time.Duration
	MaxSleep    time.Duration
	Jitter      time.Duration
	Timeout     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseSleep:   DefaultBaseSleep,
		MaxSleep:    DefaultMaxSleep,
		Jitter:      DefaultJitter,
		Timeout:     DefaultTimeout,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseSleep < 0 {
		p.BaseSleep = 0
	}
	if p.MaxSleep <= 0 {
		p.MaxSleep = DefaultMaxSleep
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	return p
}

// Delay é a espera antes da tentativa attempt+1, sem jitter.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseSleep
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxSleep {
			return p.MaxSleep
		}
	}
	if d > p.MaxSleep {
		d = p.MaxSleep
	}
	return d
}

// backoff adapta a Policy ao go-retry. onRetry recebe a tentativa que falhou
// e a espera escolhida.
func (p Policy) backoff(jitter func() float64, onRetry func(attempt int, delay time.Duration)) retry.Backoff {
	if jitter == nil {
		jitter = rand.Float64
	}
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		if attempt >= p.MaxAttempts {
			return 0, true
		}
		d := p.Delay(attempt) + time.Duration(jitter()*float64(p.Jitter))
		if onRetry != nil {
			onRetry(attempt, d)
		}
		return d, false
	})
}
