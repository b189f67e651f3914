package application

import (
	"context"
	"fmt"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
)

// GeocodeChain consulta os providers em ordem até o primeiro com coordenadas.
//
// A lista já vem deduplicada e filtrada pelo registro (infra/geocoder).
// Não há lock por chave: duas requisições simultâneas para o mesmo lugar
// podem ambas consultar os upstreams.
type GeocodeChain struct {
	Providers []domain.GeocodeProvider
	Cache     domain.GeocodeCache
	Usage     domain.UsageStore
	Log       zerolog.Logger
}

// Geocode implementa domain.Geocoder.
func (c *GeocodeChain) Geocode(ctx context.Context, place string) (domain.GeocodeResult, bool) {
	key := domain.NormalizePlace(place)
	if key == "" {
		return domain.GeocodeResult{}, false
	}
	log := c.Log.With().Str("component", "geocode").Str("place", key).Logger()

	if c.Cache != nil {
		if res, ok := c.Cache.Get(ctx, key); ok {
			log.Debug().Str("provider", res.Source).Msg("geocode cache hit")
			return res, true
		}
	}

	for _, p := range c.Providers {
		name := p.Name()
		recordUsage(ctx, c.Usage, log, domain.UsageEvent{Kind: domain.UsageProviderCall, Provider: name})

		res, ok := c.try(ctx, p, place, log)
		if !ok || !res.Valid() {
			log.Debug().Str("provider", name).Msg("provider returned nothing")
			continue
		}
		if res.Source == "" {
			res.Source = name
		}

		if c.Cache != nil {
			c.Cache.Set(ctx, key, res)
		}
		hit := res
		recordUsage(ctx, c.Usage, log, domain.UsageEvent{Kind: domain.UsageProviderHit, Provider: name, Place: key, Geocode: &hit})
		log.Info().Str("provider", name).Float64("lat", res.Latitude).Float64("lon", res.Longitude).Msg("geocoded")
		return res, true
	}

	log.Warn().Int("providers", len(c.Providers)).Msg("all geocoding providers exhausted")
	return domain.GeocodeResult{}, false
}

// ProviderNames é a ordem efetiva, para diagnóstico.
func (c *GeocodeChain) ProviderNames() []string {
	out := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		out = append(out, p.Name())
	}
	return out
}

func (c *GeocodeChain) try(ctx context.Context, p domain.GeocodeProvider, place string, log zerolog.Logger) (res domain.GeocodeResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("provider", p.Name()).Str("panic", fmt.Sprint(r)).Msg("geocoding provider crashed")
			res, ok = domain.GeocodeResult{}, false
		}
	}()
	return p.Resolve(ctx, place)
}
