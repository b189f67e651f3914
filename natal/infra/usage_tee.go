package infra

import (
	"context"
	"errors"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
)

// TeeUsage grava cada evento em todas as stores.
//
// Snapshot vem sempre da primeira (a store em memória, por convenção).
type TeeUsage []domain.UsageStore

func (t TeeUsage) Record(ctx context.Context, ev domain.UsageEvent) error {
	var errs []error
	for _, s := range t {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t TeeUsage) Snapshot(ctx context.Context) (domain.UsageSnapshot, error) {
	for _, s := range t {
		if s != nil {
			return s.Snapshot(ctx)
		}
	}
	return domain.UsageSnapshot{}, nil
}
