package tz

import (
	"context"
	"fmt"
	"math"

	"github.com/ringsaturn/tzf"
)

// namer é o subconjunto de tzf.F usado aqui.
type namer interface {
	GetTimezoneName(lng float64, lat float64) string
}

// Raios (em graus) e direções da busca da zona mais próxima.
var (
	probeRadii    = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 1.5}
	probeBearings = 8
)

// Finder resolve zonas a partir dos polígonos embutidos do tzf.
type Finder struct {
	f namer
}

// NewFinder carrega o conjunto de polígonos padrão (leva alguns segundos na
// primeira chamada; crie uma vez por processo).
func NewFinder() (*Finder, error) {
	f, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("load tzf polygons: %w", err)
	}
	return &Finder{f: f}, nil
}

func (f *Finder) ZoneAt(_ context.Context, lat, lon float64) (string, bool) {
	name := f.f.GetTimezoneName(lon, lat)
	return name, name != ""
}

// ClosestZoneAt sonda anéis crescentes ao redor do ponto (útil para costas e
// pontos logo fora de um polígono) e devolve a primeira zona encontrada.
func (f *Finder) ClosestZoneAt(ctx context.Context, lat, lon float64) (string, bool) {
	for _, r := range probeRadii {
		for i := 0; i < probeBearings; i++ {
			if ctx.Err() != nil {
				return "", false
			}
			theta := 2 * math.Pi * float64(i) / float64(probeBearings)
			plat := lat + r*math.Sin(theta)
			if plat > 90 || plat < -90 {
				continue
			}
			// graus de longitude encolhem com cos(lat)
			scale := math.Cos(lat * math.Pi / 180)
			if scale < 0.1 {
				scale = 0.1
			}
			plon := wrapLon(lon + r*math.Cos(theta)/scale)
			if name := f.f.GetTimezoneName(plon, plat); name != "" {
				return name, true
			}
		}
	}
	return "", false
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
