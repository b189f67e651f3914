package application

import (
	"context"
	"testing"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeChain_FallsThroughToFirstResult(t *testing.T) {
	empty := &fakeProvider{name: "open-meteo"}
	crash := &fakeProvider{name: "broken", panics: true}
	rome := &fakeProvider{name: "nominatim", ok: true, res: domain.GeocodeResult{Latitude: 41.89, Longitude: 12.48, DisplayName: "Rome, Italy"}}
	never := &fakeProvider{name: "maps.co", ok: true}
	usage := &usageLog{}

	chain := &GeocodeChain{
		Providers: []domain.GeocodeProvider{empty, crash, rome, never},
		Cache:     newMapCache[domain.GeocodeResult](),
		Usage:     usage,
	}

	res, ok := chain.Geocode(context.Background(), "Rome")
	require.True(t, ok)
	assert.Equal(t, "Rome, Italy", res.DisplayName)
	assert.Equal(t, "nominatim", res.Source, "source defaults to the provider name")
	assert.Equal(t, int32(0), never.calls.Load())
	assert.Equal(t, 3, usage.count(domain.UsageProviderCall))
	assert.Equal(t, 1, usage.count(domain.UsageProviderHit))
}

func TestGeocodeChain_CacheHitSkipsProviders(t *testing.T) {
	p := &fakeProvider{name: "nominatim", ok: true, res: domain.GeocodeResult{Latitude: 1, Longitude: 2, Source: "nominatim"}}
	chain := &GeocodeChain{Providers: []domain.GeocodeProvider{p}, Cache: newMapCache[domain.GeocodeResult]()}

	_, ok := chain.Geocode(context.Background(), "  New   York ")
	require.True(t, ok)
	_, ok = chain.Geocode(context.Background(), "new york")
	require.True(t, ok)

	assert.Equal(t, int32(1), p.calls.Load(), "normalized key must hit the cache")
}

func TestGeocodeChain_ExhaustedAndInvalid(t *testing.T) {
	bad := &fakeProvider{name: "nominatim", ok: true, res: domain.GeocodeResult{Latitude: 123, Longitude: 0}}
	chain := &GeocodeChain{Providers: []domain.GeocodeProvider{bad, &fakeProvider{name: "maps.co"}}}

	_, ok := chain.Geocode(context.Background(), "Atlantis")
	assert.False(t, ok)

	_, ok = chain.Geocode(context.Background(), "   ")
	assert.False(t, ok)
}

func TestGeocodeChain_ProviderNames(t *testing.T) {
	chain := &GeocodeChain{Providers: []domain.GeocodeProvider{&fakeProvider{name: "a"}, &fakeProvider{name: "b"}}}
	assert.Equal(t, []string{"a", "b"}, chain.ProviderNames())
}
