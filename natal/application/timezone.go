package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
)

const DefaultTimezoneTTL = 21 * 24 * time.Hour

// TimezoneResolver resolve coordenadas para zona IANA com cache.
//
// Chave = lat/lon com 4 casas (~11 m). Busca exata primeiro, depois a zona
// mais próxima; nomes que o runtime não carrega contam como ausentes.
type TimezoneResolver struct {
	Locator domain.ZoneLocator
	Cache   domain.ZoneCache
	Log     zerolog.Logger
}

func ZoneKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// ResolveTimezone implementa domain.ZoneResolver.
func (r *TimezoneResolver) ResolveTimezone(ctx context.Context, lat, lon float64) (string, bool) {
	key := ZoneKey(lat, lon)
	if r.Cache != nil {
		if zone, ok := r.Cache.Get(key); ok {
			return zone, true
		}
	}
	if r.Locator == nil {
		return "", false
	}

	log := r.Log.With().Str("component", "timezone").Str("key", key).Logger()

	zone, ok := r.Locator.ZoneAt(ctx, lat, lon)
	if !ok || !loadable(zone) {
		zone, ok = r.Locator.ClosestZoneAt(ctx, lat, lon)
		if ok {
			log.Debug().Str("zone", zone).Msg("using closest zone")
		}
	}
	if !ok || !loadable(zone) {
		log.Warn().Msg("no timezone for coordinates")
		return "", false
	}

	if r.Cache != nil {
		r.Cache.Set(key, zone)
	}
	return zone, true
}

func loadable(zone string) bool {
	if zone == "" {
		return false
	}
	_, err := time.LoadLocation(zone)
	return err == nil
}
