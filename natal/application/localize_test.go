package application

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestLocalize_SpringForwardGapAddsOneHour(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	lt := Localize(2024, time.March, 10, 2, 30, ny)

	assert.Equal(t, time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC), lt.UTC)
	assert.Equal(t, 3, lt.Local.Hour())
	assert.Equal(t, 30, lt.Local.Minute())
	name, _ := lt.Local.Zone()
	assert.Equal(t, "EDT", name)
}

func TestLocalize_FallBackAmbiguityPicksDaylightInstant(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	lt := Localize(2024, time.November, 3, 1, 30, ny)

	assert.Equal(t, time.Date(2024, 11, 3, 5, 30, 0, 0, time.UTC), lt.UTC)
	name, _ := lt.Local.Zone()
	assert.Equal(t, "EDT", name)
}

func TestLocalize_PlainTime(t *testing.T) {
	rome := mustLoad(t, "Europe/Rome")

	lt := Localize(1990, time.July, 15, 14, 45, rome)
	assert.Equal(t, time.Date(1990, 7, 15, 12, 45, 0, 0, time.UTC), lt.UTC)
}

func TestJulianDayUT_KnownEpochs(t *testing.T) {
	cases := []struct {
		at   time.Time
		want float64
	}{
		{time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 2451545.0},
		{time.Date(1987, 4, 10, 0, 0, 0, 0, time.UTC), 2446895.5},
		{time.Date(1957, 10, 4, 19, 26, 24, 0, time.UTC), 2436116.31},
	}
	for _, tc := range cases {
		got := JulianDayUT(tc.at)
		assert.LessOrEqual(t, math.Abs(got-tc.want), 1e-6, "JD for %s", tc.at)
	}
}
