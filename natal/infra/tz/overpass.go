package tz

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/serjvanilla/go-overpass"
)

const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

// Overpass resolve zonas pela tag timezone de relações de fronteira do OSM.
//
// O cliente do go-overpass não aceita context; o limite de tempo vem do
// http.Client.
type Overpass struct {
	client *overpass.Client
	// raio em metros da busca aproximada
	radius int
	log    zerolog.Logger
}

func NewOverpass(endpoint string, timeout time.Duration, log zerolog.Logger) *Overpass {
	if endpoint == "" {
		endpoint = DefaultOverpassURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := overpass.NewWithSettings(endpoint, 2, &http.Client{Timeout: timeout})
	return &Overpass{
		client: &client,
		radius: 50000,
		log:    log.With().Str("component", "overpass").Logger(),
	}
}

func (o *Overpass) ZoneAt(_ context.Context, lat, lon float64) (string, bool) {
	q := fmt.Sprintf(`[out:json][timeout:10];is_in(%.6f,%.6f)->.a;rel(pivot.a)["timezone"];out tags;`, lat, lon)
	return o.query(q)
}

func (o *Overpass) ClosestZoneAt(_ context.Context, lat, lon float64) (string, bool) {
	q := fmt.Sprintf(`[out:json][timeout:10];(node(around:%d,%.6f,%.6f)["timezone"];rel(around:%d,%.6f,%.6f)["timezone"];);out tags;`,
		o.radius, lat, lon, o.radius, lat, lon)
	return o.query(q)
}

// query devolve a zona mais frequente no resultado; empate desfeito pela
// ordem alfabética para ser determinístico.
func (o *Overpass) query(q string) (string, bool) {
	res, err := o.client.Query(q)
	if err != nil {
		o.log.Warn().Err(err).Msg("overpass query failed")
		return "", false
	}

	counts := map[string]int{}
	for _, rel := range res.Relations {
		if tz := rel.Tags["timezone"]; tz != "" {
			counts[tz]++
		}
	}
	for _, n := range res.Nodes {
		if tz := n.Tags["timezone"]; tz != "" {
			counts[tz]++
		}
	}
	return mostFrequent(counts)
}

func mostFrequent(counts map[string]int) (string, bool) {
	if len(counts) == 0 {
		return "", false
	}
	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Strings(names)

	best := names[0]
	for _, n := range names[1:] {
		if counts[n] > counts[best] {
			best = n
		}
	}
	return best, true
}
