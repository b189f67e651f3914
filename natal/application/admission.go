package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
)

const (
	DefaultAdmissionSlots   = 6
	DefaultAdmissionTimeout = 2 * time.Second
)

// AdmissionService concentra a regra de aquisição/liberação de vagas com timeout,
// sem saber nada sobre HTTP.
type AdmissionService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga em até AcquireTimeout.
//   - AcquireTimeout <= 0 usa DefaultAdmissionTimeout (nunca espera indefinidamente).
//   - Sem vaga no prazo: erro que satisfaz errors.Is(err, domain.ErrBusy).
//
// O release retornado pode ser chamado várias vezes; só a primeira libera a vaga.
func (s AdmissionService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	timeout := s.AcquireTimeout
	if timeout <= 0 {
		timeout = DefaultAdmissionTimeout
	}

	acqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	release, ok := s.Pool.Acquire(acqCtx)
	if !ok {
		return nil, fmt.Errorf("%w: no computation slot within %s", domain.ErrBusy, timeout)
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}
