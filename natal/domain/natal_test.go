package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestRequestKey_Shape(t *testing.T) {
	k := RequestKey(NatalRequest{Date: "1990-07-15", Time: "14:45", Place: "Rome"})
	assert.True(t, strings.HasPrefix(k, "natal:"))
	assert.Len(t, strings.TrimPrefix(k, "natal:"), 64)
}

func TestRequestKey_IgnoresNameAndNormalizesPlace(t *testing.T) {
	base := NatalRequest{Name: "Ada", Date: "1990-07-15", Time: "14:45", Place: "Rome, Italy", HouseSystem: "P"}

	other := base
	other.Name = "Grace"
	other.Place = "  ROME,   italy "
	other.HouseSystem = ""
	assert.Equal(t, RequestKey(base), RequestKey(other))

	other.HouseSystem = "z"
	assert.Equal(t, RequestKey(base), RequestKey(other), "unknown system is coerced to P")
}

func TestRequestKey_DependsOnAstrologicalFields(t *testing.T) {
	base := NatalRequest{Date: "1990-07-15", Time: "14:45", Place: "Rome"}
	key := RequestKey(base)

	changes := map[string]func(r *NatalRequest){
		"date":  func(r *NatalRequest) { r.Date = "1990-07-16" },
		"time":  func(r *NatalRequest) { r.Time = "14:46" },
		"place": func(r *NatalRequest) { r.Place = "Milan" },
		"house": func(r *NatalRequest) { r.HouseSystem = "K" },
		"coords": func(r *NatalRequest) {
			r.Latitude, r.Longitude = ptr(41.9), ptr(12.5)
		},
		"tz": func(r *NatalRequest) { r.Timezone = "Europe/Rome" },
	}
	for name, change := range changes {
		r := base
		change(&r)
		assert.NotEqual(t, key, RequestKey(r), name)
	}
}

func TestRequestKey_CoordinatePrecision(t *testing.T) {
	a := NatalRequest{Date: "1990-07-15", Place: "x", Latitude: ptr(41.9), Longitude: ptr(12.5)}
	b := a
	b.Latitude = ptr(41.9000001)
	assert.Equal(t, RequestKey(a), RequestKey(b), "six decimal places")

	b.Latitude = ptr(41.900001)
	assert.NotEqual(t, RequestKey(a), RequestKey(b))

	// só uma coordenada não conta como coordenadas fornecidas
	c := NatalRequest{Date: "1990-07-15", Place: "x", Latitude: ptr(41.9)}
	assert.Equal(t, RequestKey(NatalRequest{Date: "1990-07-15", Place: "x"}), RequestKey(c))
}
