package infra

import (
	"context"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
)

type chanPool struct {
	sem chan struct{}
}

// ChanPool é o semáforo de admissão: SlotPool + PoolInfo.
type ChanPool interface {
	domain.SlotPool
	domain.PoolInfo
}

// NewChanPool cria um pool baseado em channel com capacidade `max`.
func NewChanPool(max int) ChanPool {
	if max <= 0 {
		max = 1
	}
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	// vaga livre tem prioridade sobre ctx já encerrado
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	default:
	}

	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *chanPool) InUse() int    { return len(p.sem) }
func (p *chanPool) Capacity() int { return cap(p.sem) }
