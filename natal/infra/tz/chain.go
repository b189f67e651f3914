package tz

import (
	"context"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
)

// Chain tenta cada locator em ordem, para as duas operações.
type Chain []domain.ZoneLocator

func (c Chain) ZoneAt(ctx context.Context, lat, lon float64) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if z, ok := l.ZoneAt(ctx, lat, lon); ok {
			return z, true
		}
	}
	return "", false
}

func (c Chain) ClosestZoneAt(ctx context.Context, lat, lon float64) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if z, ok := l.ClosestZoneAt(ctx, lat, lon); ok {
			return z, true
		}
	}
	return "", false
}
