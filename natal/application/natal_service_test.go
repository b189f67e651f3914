package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*NatalService, *fakeGeocoder, *fakeEngine, *usageLog) {
	geo := &fakeGeocoder{ok: true, res: domain.GeocodeResult{Latitude: 41.89, Longitude: 12.48, DisplayName: "Rome, Italy", Source: "nominatim"}}
	eng := &fakeEngine{}
	usage := &usageLog{}
	svc := &NatalService{
		Geocoder:  geo,
		Zones:     fakeZones{zone: "Europe/Rome"},
		Engine:    eng,
		Cache:     newMapCache[domain.NatalResult](),
		Admission: AdmissionService{Pool: make(chanSlots, 2), AcquireTimeout: time.Second},
		Usage:     usage,
	}
	return svc, geo, eng, usage
}

func TestNatalService_ComputeFormatsChart(t *testing.T) {
	svc, _, _, usage := newTestService()

	res, err := svc.Compute(context.Background(), domain.NatalRequest{Name: "Ada", Date: "1990-07-15", Time: "14:45", Place: "Rome"})
	require.NoError(t, err)

	assert.Equal(t, "Ada", res.Input.Name)
	assert.Equal(t, "Rome, Italy", res.Input.ResolvedPlace)
	assert.Equal(t, "nominatim", res.Input.Geocoder)
	assert.Equal(t, "Europe/Rome", res.Input.Timezone)
	assert.Equal(t, "1990-07-15T14:45:00+02:00", res.Input.LocalDatetime)
	assert.Equal(t, "1990-07-15T12:45:00Z", res.Input.UTCDatetime)
	assert.Equal(t, "P", res.Input.HouseSystem)

	require.Len(t, res.Positions, len(domain.Bodies))
	for _, b := range domain.Bodies {
		p, ok := res.Positions[b.String()]
		require.True(t, ok, b.String())
		assert.GreaterOrEqual(t, p.Longitude, 0.0)
		assert.Less(t, p.Longitude, 360.0)
		assert.GreaterOrEqual(t, p.DegInSign, 0.0)
		assert.Less(t, p.DegInSign, 30.0)
		assert.NotEmpty(t, p.DegStr)
	}

	require.Len(t, res.Houses, 12)
	assert.Equal(t, 5.0, res.Houses["1"])
	assert.Equal(t, 335.0, res.Houses["12"])
	assert.Equal(t, "Aries", res.Angles["ASC"].Sign)
	assert.Equal(t, "Capricorn", res.Angles["MC"].Sign)
	assert.Equal(t, "5°00'", res.Angles["MC"].DegStr)

	assert.Equal(t, 1, usage.count(domain.UsageNatalCall))
	assert.Equal(t, 1, usage.count(domain.UsageNatalComputed))
}

func TestNatalService_IdempotentAndNameIndependent(t *testing.T) {
	svc, geo, eng, usage := newTestService()
	ctx := context.Background()

	a, err := svc.Compute(ctx, domain.NatalRequest{Name: "Ada", Date: "1990-07-15", Time: "14:45", Place: "Rome"})
	require.NoError(t, err)
	b, err := svc.Compute(ctx, domain.NatalRequest{Name: "Grace", Date: "1990-07-15", Time: "14:45", Place: "  rome "})
	require.NoError(t, err)

	assert.Equal(t, "Grace", b.Input.Name)
	assert.Equal(t, a.Positions, b.Positions)
	assert.Equal(t, a.Houses, b.Houses)
	assert.Equal(t, a.Input.UTCDatetime, b.Input.UTCDatetime)
	assert.Equal(t, int32(1), geo.calls.Load())
	assert.Equal(t, int32(len(domain.Bodies)), eng.calls.Load())
	assert.Equal(t, 1, usage.count(domain.UsageCacheHit))
}

func TestNatalService_DefaultTimeIsNoon(t *testing.T) {
	svc, _, _, _ := newTestService()

	res, err := svc.Compute(context.Background(), domain.NatalRequest{Date: "2000-01-01", Place: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, "2000-01-01T12:00:00+01:00", res.Input.LocalDatetime)
}

func TestNatalService_InvalidInput(t *testing.T) {
	svc, geo, _, _ := newTestService()
	lat := 95.0
	lon := 10.0

	cases := []domain.NatalRequest{
		{Place: "Rome"},
		{Date: "1990-02-30", Place: "Rome"},
		{Date: "15/07/1990", Place: "Rome"},
		{Date: "1990-07-15", Time: "25:00", Place: "Rome"},
		{Date: "1990-07-15"},
		{Date: "1990-07-15", Latitude: &lat, Longitude: &lon},
		{Date: "1990-07-15", Latitude: &lon},
		{Date: "1990-07-15", Place: "Rome", Timezone: "Not/AZone"},
	}
	for _, req := range cases {
		_, err := svc.Compute(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", req)
	}
	assert.Equal(t, int32(0), geo.calls.Load())
}

func TestNatalService_CoordinatesAndTimezoneBypassLookups(t *testing.T) {
	svc, geo, _, _ := newTestService()
	svc.Zones = fakeZones{}
	lat, lon := 40.7128, -74.006

	res, err := svc.Compute(context.Background(), domain.NatalRequest{
		Date: "2024-03-10", Time: "02:30", Latitude: &lat, Longitude: &lon, Timezone: "America/New_York",
	})
	require.NoError(t, err)

	assert.Equal(t, int32(0), geo.calls.Load())
	assert.Equal(t, "input", res.Input.Geocoder)
	assert.Equal(t, "2024-03-10T07:30:00Z", res.Input.UTCDatetime)
}

func TestNatalService_FailureTaxonomy(t *testing.T) {
	ctx := context.Background()
	req := domain.NatalRequest{Date: "1990-07-15", Place: "Nowhere"}

	svc, geo, _, _ := newTestService()
	geo.ok = false
	_, err := svc.Compute(ctx, req)
	assert.ErrorIs(t, err, domain.ErrGeocodingExhausted)
	assert.True(t, domain.IsRetryable(err))

	svc, _, _, _ = newTestService()
	svc.Zones = fakeZones{}
	_, err = svc.Compute(ctx, req)
	assert.ErrorIs(t, err, domain.ErrTimezoneNotFound)

	svc, _, eng, _ := newTestService()
	eng.fail, eng.failBody = true, domain.Pluto
	_, err = svc.Compute(ctx, req)
	assert.ErrorIs(t, err, domain.ErrEphemeris)

	svc, _, eng, _ = newTestService()
	eng.failHouses = true
	_, err = svc.Compute(ctx, req)
	assert.ErrorIs(t, err, domain.ErrEphemeris)
}

func TestNatalService_FailureDoesNotPoisonCache(t *testing.T) {
	svc, geo, _, _ := newTestService()
	geo.ok = false
	req := domain.NatalRequest{Date: "1990-07-15", Place: "Rome"}

	_, err := svc.Compute(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 0, svc.Cache.(*mapCache[domain.NatalResult]).Len())
}

// slowGeocoder segura a vaga até ser liberado.
type slowGeocoder struct {
	started chan struct{}
	unblock chan struct{}
	once    sync.Once
}

func (g *slowGeocoder) Geocode(context.Context, string) (domain.GeocodeResult, bool) {
	g.once.Do(func() { close(g.started) })
	<-g.unblock
	return domain.GeocodeResult{Latitude: 1, Longitude: 1, Source: "slow"}, true
}

func TestNatalService_BusyWhenAdmissionTimesOut(t *testing.T) {
	svc, _, _, _ := newTestService()
	slow := &slowGeocoder{started: make(chan struct{}), unblock: make(chan struct{})}
	svc.Geocoder = slow
	svc.Admission = AdmissionService{Pool: make(chanSlots, 1), AcquireTimeout: 20 * time.Millisecond}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Compute(context.Background(), domain.NatalRequest{Date: "1990-07-15", Place: "A"})
		done <- err
	}()
	<-slow.started

	_, err := svc.Compute(context.Background(), domain.NatalRequest{Date: "1990-07-15", Place: "B"})
	assert.True(t, errors.Is(err, domain.ErrBusy), "got %v", err)

	close(slow.unblock)
	require.NoError(t, <-done)

	// a vaga volta depois do primeiro cálculo
	_, err = svc.Compute(context.Background(), domain.NatalRequest{Date: "1990-07-15", Place: "C"})
	assert.NoError(t, err)
}

func TestZodiacPoint_RoundingStaysInRange(t *testing.T) {
	cases := []struct {
		lon  float64
		sign string
		deg  float64
		abs  float64
		str  string
	}{
		{359.9999997, "Aries", 0, 0, "0°00'"},
		{359.999999, "Pisces", 29.999999, 359.999999, "29°59'"},
		{29.9999997, "Taurus", 0, 30, "0°00'"},
		{-0.0000001, "Aries", 0, 0, "0°00'"},
		{123.4567891, "Leo", 3.456789, 123.456789, "3°27'"},
	}
	for _, tc := range cases {
		sign, deg, abs := zodiacPoint(tc.lon)
		assert.Equal(t, tc.sign, sign, "lon %v", tc.lon)
		assert.InDelta(t, tc.deg, deg, 1e-9, "lon %v", tc.lon)
		assert.InDelta(t, tc.abs, abs, 1e-9, "lon %v", tc.lon)
		assert.Less(t, abs, 360.0)
		assert.Less(t, deg, 30.0)
		assert.Equal(t, tc.str, domain.FormatDegree(deg), "lon %v", tc.lon)
	}
	assert.Equal(t, 0.0, longitude6(359.9999999))
}

type wrapEngine struct{}

func (wrapEngine) BodyPosition(float64, domain.Body) (domain.BodyPosition, error) {
	return domain.BodyPosition{Longitude: 359.9999997}, nil
}

func (wrapEngine) Houses(float64, float64, float64, domain.HouseSystem) (domain.Houses, error) {
	var h domain.Houses
	for i := range h.Cusps {
		h.Cusps[i] = 359.9999998
	}
	h.Ascendant = 359.9999998
	h.Midheaven = 179.9999999
	return h, nil
}

func TestNatalService_LongitudesNeverRoundTo360(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.Engine = &wrapEngine{}

	res, err := svc.Compute(context.Background(), domain.NatalRequest{Date: "1990-07-15", Place: "Rome"})
	require.NoError(t, err)

	for name, p := range res.Positions {
		assert.Equal(t, 0.0, p.Longitude, name)
		assert.Equal(t, "Aries", p.Sign, name)
		assert.Equal(t, 0.0, p.DegInSign, name)
	}
	for n, cusp := range res.Houses {
		assert.Equal(t, 0.0, cusp, "cusp %s", n)
	}
	assert.Equal(t, "Aries", res.Angles["ASC"].Sign)
	assert.Equal(t, 0.0, res.Angles["ASC"].Longitude)
	assert.Equal(t, "Libra", res.Angles["MC"].Sign)
	assert.Equal(t, "0°00'", res.Angles["MC"].DegStr)
}

func TestNatalService_MissingNameDefaultsToUnknown(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	res, err := svc.Compute(ctx, domain.NatalRequest{Name: "  ", Date: "1990-07-15", Place: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultName, res.Input.Name)

	// hit de cache também ecoa o padrão
	res, err = svc.Compute(ctx, domain.NatalRequest{Date: "1990-07-15", Place: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", res.Input.Name)
}
