package application

import (
	"context"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
)

// recordUsage é best-effort: falha de telemetria só gera log.
func recordUsage(ctx context.Context, store domain.UsageStore, log zerolog.Logger, ev domain.UsageEvent) {
	if store == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if err := store.Record(ctx, ev); err != nil {
		log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("usage record failed")
	}
}
