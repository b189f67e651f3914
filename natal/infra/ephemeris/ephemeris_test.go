package ephemeris

import (
	"testing"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eps2000 = 23.4393
	j2000   = 2451545.0
)

func TestDeltaT(t *testing.T) {
	assert.InDelta(t, 13.72, DeltaT(1800), 1e-9)
	assert.InDelta(t, -2.79, DeltaT(1900), 1e-9)
	assert.InDelta(t, 29.07, DeltaT(1950), 1e-9)
	assert.InDelta(t, 63.86, DeltaT(2000), 1e-9)
	assert.InDelta(t, 71.6, DeltaT(2020), 0.01)
}

func TestHouses_AnglesAtEquator(t *testing.T) {
	h := computeHouses(0, eps2000, 0, domain.Placidus)

	assert.InDelta(t, 0, h.Midheaven, 1e-9)
	assert.InDelta(t, 90, h.Ascendant, 1e-9)
	assert.Equal(t, h.Ascendant, h.Cusps[0])
	assert.Equal(t, h.Midheaven, h.Cusps[9])
}

func TestHouses_QuadrantSystemsAgreeAtEquator(t *testing.T) {
	want := computeHouses(47, eps2000, 0, domain.Placidus)

	for _, sys := range []domain.HouseSystem{domain.Regiomontanus, domain.Campanus, domain.Koch, domain.Alcabitius} {
		got := computeHouses(47, eps2000, 0, sys)
		for i := range want.Cusps {
			assert.InDelta(t, 0, diff180(want.Cusps[i], got.Cusps[i]), 1e-6, "system %s cusp %d", sys, i+1)
		}
	}
}

func TestHouses_OppositeCusps(t *testing.T) {
	systems := []domain.HouseSystem{
		domain.Placidus, domain.Koch, domain.Porphyry, domain.Regiomontanus,
		domain.Campanus, domain.Alcabitius, domain.Vehlow,
	}
	for _, sys := range systems {
		h := computeHouses(213.5, eps2000, 41.9, sys)
		for i := 0; i < 6; i++ {
			assert.InDelta(t, 180, norm360(h.Cusps[i+6]-h.Cusps[i]), 1e-9, "system %s cusp %d", sys, i+1)
		}
	}
}

func TestHouses_CuspsAreOrdered(t *testing.T) {
	for _, sys := range []domain.HouseSystem{domain.Placidus, domain.Koch, domain.Regiomontanus, domain.Campanus} {
		h := computeHouses(213.5, eps2000, 41.9, sys)
		total := 0.0
		for i := range h.Cusps {
			step := norm360(h.Cusps[(i+1)%12] - h.Cusps[i])
			assert.Greater(t, step, 0.0, "system %s house %d", sys, i+1)
			total += step
		}
		assert.InDelta(t, 360, total, 1e-6)
	}
}

func TestHouses_Vehlow(t *testing.T) {
	h := computeHouses(120, eps2000, 52.5, domain.Vehlow)

	assert.InDelta(t, norm360(h.Ascendant-15), h.Cusps[0], 1e-9)
	for i := 1; i < 12; i++ {
		assert.InDelta(t, 30, norm360(h.Cusps[i]-h.Cusps[i-1]), 1e-9)
	}
}

func TestHouses_PolarFallsBackToPorphyry(t *testing.T) {
	got := computeHouses(0, eps2000, 89, domain.Placidus)
	want := computeHouses(0, eps2000, 89, domain.Porphyry)

	assert.Equal(t, want, got)
}

func TestKepler_SunAtJ2000(t *testing.T) {
	m := NewKepler()

	lon, lat, dist, err := m.geocentric(domain.Sun, j2000)
	require.NoError(t, err)

	assert.InDelta(t, 280.37, lon, 0.05)
	assert.InDelta(t, 0, lat, 0.01)
	assert.InDelta(t, 0.9833, dist, 0.001)
}

func TestKepler_Venus(t *testing.T) {
	m := NewKepler()

	// 1992-12-20 0h TD
	lon, lat, _, err := m.geocentric(domain.Venus, 2448976.5)
	require.NoError(t, err)

	assert.InDelta(t, 313.081, lon, 0.1)
	assert.InDelta(t, -2.085, lat, 0.1)
}

func TestMoon(t *testing.T) {
	m := NewKepler()

	// 1992-04-12 0h TD
	lon, lat, dist, err := m.geocentric(domain.Moon, 2448724.5)
	require.NoError(t, err)

	assert.InDelta(t, 133.167, lon, 0.001)
	assert.InDelta(t, -3.229, lat, 0.001)
	assert.InDelta(t, 368409.7/kmPerAU, dist, 1e-6)
}

func TestBodyPosition_Speeds(t *testing.T) {
	m := NewKepler()

	sun, err := m.BodyPosition(j2000, domain.Sun)
	require.NoError(t, err)
	assert.InDelta(t, 1.019, sun.SpeedLongitude, 0.01)

	moon, err := m.BodyPosition(j2000, domain.Moon)
	require.NoError(t, err)
	assert.Greater(t, moon.SpeedLongitude, 11.0)
	assert.Less(t, moon.SpeedLongitude, 15.5)
}

func TestBodyPosition_AllBodies(t *testing.T) {
	m := NewKepler()

	for _, body := range domain.Bodies {
		p, err := m.BodyPosition(2447000.5, body)
		require.NoError(t, err, body.String())
		assert.GreaterOrEqual(t, p.Longitude, 0.0)
		assert.Less(t, p.Longitude, 360.0)
		assert.Greater(t, p.Distance, 0.0)
	}
}

func TestBodyPosition_OutOfRange(t *testing.T) {
	m := NewKepler()

	_, err := m.BodyPosition(MinJD-1, domain.Sun)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = m.BodyPosition(MaxJD+1, domain.Mars)
	assert.ErrorIs(t, err, ErrOutOfRange)

	// 2150
	_, err = m.BodyPosition(2506331.5, domain.Pluto)
	assert.ErrorIs(t, err, ErrOutOfRange)

	// 1850
	_, err = m.BodyPosition(2396758.5, domain.Pluto)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = m.BodyPosition(2506331.5, domain.Neptune)
	assert.NoError(t, err)
}

func TestEngineHouses(t *testing.T) {
	m := NewKepler()

	h, err := m.Houses(j2000, 41.9, 12.5, domain.Placidus)
	require.NoError(t, err)
	assert.Equal(t, h.Ascendant, h.Cusps[0])
	assert.InDelta(t, 180, norm360(h.Cusps[3]-h.Midheaven), 1e-9)

	_, err = m.Houses(j2000, 91, 0, domain.Placidus)
	assert.Error(t, err)

	_, err = m.Houses(MaxJD+10, 0, 0, domain.Placidus)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestOpen_FallsBackToKepler(t *testing.T) {
	assert.Equal(t, "kepler", Open("", zerolog.Nop()).Backend())
	assert.Equal(t, "kepler", Open(t.TempDir(), zerolog.Nop()).Backend())
}

var _ domain.Engine = (*Meeus)(nil)
