package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// Faixa suportada: anos 1800 a 2200 (UT).
const (
	MinJD = 2378496.5 // 1800-01-01
	MaxJD = 2524593.5 // 2200-01-01

	plutoMinYear = 1885
	plutoMaxYear = 2099

	kmPerAU      = 149597870.7
	lightTimeDay = 0.0057755183 // dias por UA
	aberration   = 20.4898 / 3600
	speedStep    = 0.1 // dias
)

// ErrOutOfRange é devolvido para datas fora da faixa do motor ou do corpo.
var ErrOutOfRange = errors.New("date outside supported ephemeris range")

// source devolve posição heliocêntrica eclíptica do equinócio da data
// (radianos, UA).
type source interface {
	position(jde float64) (l, b, r float64)
}

type vsopSource struct {
	p *pp.V87Planet
}

func (s vsopSource) position(jde float64) (float64, float64, float64) {
	l, b, r := s.p.Position(jde)
	return l.Rad(), b.Rad(), r
}

type plutoSource struct{}

// position converte a saída J2000 do pacote pluto para o equinócio da data.
func (plutoSource) position(jde float64) (float64, float64, float64) {
	l, b, r := pluto.Heliocentric(jde)
	T := (jde - 2451545.0) / 36525
	return l.Rad() + precessionInLongitude(T), b.Rad(), r
}

// Meeus implementa domain.Engine.
type Meeus struct {
	backend string
	earth   source
	planets map[domain.Body]source
	pluto   source
}

var vsopBodies = map[domain.Body]int{
	domain.Mercury: pp.Mercury,
	domain.Venus:   pp.Venus,
	domain.Mars:    pp.Mars,
	domain.Jupiter: pp.Jupiter,
	domain.Saturn:  pp.Saturn,
	domain.Uranus:  pp.Uranus,
	domain.Neptune: pp.Neptune,
}

// NewVSOP87 carrega os arquivos VSOP87B.* de dir.
func NewVSOP87(dir string) (*Meeus, error) {
	earth, err := pp.LoadPlanetPath(pp.Earth, dir)
	if err != nil {
		return nil, fmt.Errorf("load VSOP87 earth from %s: %w", dir, err)
	}
	m := &Meeus{
		backend: "vsop87",
		earth:   vsopSource{earth},
		planets: make(map[domain.Body]source, len(vsopBodies)),
		pluto:   plutoSource{},
	}
	for body, ibody := range vsopBodies {
		p, err := pp.LoadPlanetPath(ibody, dir)
		if err != nil {
			return nil, fmt.Errorf("load VSOP87 %s from %s: %w", body, dir, err)
		}
		m.planets[body] = vsopSource{p}
	}
	return m, nil
}

// NewKepler usa elementos médios; não precisa de arquivos.
func NewKepler() *Meeus {
	return &Meeus{
		backend: "kepler",
		earth:   keplerSource{elEarth},
		planets: map[domain.Body]source{
			domain.Mercury: keplerSource{elMercury},
			domain.Venus:   keplerSource{elVenus},
			domain.Mars:    keplerSource{elMars},
			domain.Jupiter: keplerSource{elJupiter},
			domain.Saturn:  keplerSource{elSaturn},
			domain.Uranus:  keplerSource{elUranus},
			domain.Neptune: keplerSource{elNeptune},
		},
		pluto: plutoSource{},
	}
}

// Open tenta VSOP87 em dir e cai para elementos médios se os arquivos não
// estiverem lá.
func Open(dir string, log zerolog.Logger) *Meeus {
	if dir != "" {
		if _, err := os.Stat(filepath.Join(dir, "VSOP87B.ear")); err == nil {
			m, err := NewVSOP87(dir)
			if err == nil {
				log.Info().Str("backend", m.backend).Str("path", dir).Msg("ephemeris ready")
				return m
			}
			log.Warn().Err(err).Msg("VSOP87 load failed")
		}
	}
	log.Warn().Str("path", dir).Msg("VSOP87 files not found, using mean orbital elements")
	return NewKepler()
}

func (m *Meeus) Backend() string { return m.backend }

func checkRange(jdUT float64) error {
	if math.IsNaN(jdUT) || jdUT < MinJD || jdUT > MaxJD {
		return fmt.Errorf("%w: JD %.4f", ErrOutOfRange, jdUT)
	}
	return nil
}

// BodyPosition devolve longitude/latitude geocêntricas aparentes do
// equinócio da data, distância e velocidades por diferença central.
func (m *Meeus) BodyPosition(jdUT float64, body domain.Body) (domain.BodyPosition, error) {
	if err := checkRange(jdUT); err != nil {
		return domain.BodyPosition{}, err
	}
	jde := ttFromUT(jdUT)

	lon, lat, dist, err := m.geocentric(body, jde)
	if err != nil {
		return domain.BodyPosition{}, err
	}
	lon0, lat0, dist0, err := m.geocentric(body, jde-speedStep)
	if err != nil {
		return domain.BodyPosition{}, err
	}
	lon1, lat1, dist1, err := m.geocentric(body, jde+speedStep)
	if err != nil {
		return domain.BodyPosition{}, err
	}

	return domain.BodyPosition{
		Longitude:      lon,
		Latitude:       lat,
		Distance:       dist,
		SpeedLongitude: diff180(lon1, lon0) / (2 * speedStep),
		SpeedLatitude:  (lat1 - lat0) / (2 * speedStep),
		SpeedDistance:  (dist1 - dist0) / (2 * speedStep),
	}, nil
}

// geocentric devolve (longitude, latitude) em graus e distância em UA.
func (m *Meeus) geocentric(body domain.Body, jde float64) (float64, float64, float64, error) {
	dpsi, _ := nutation.Nutation(jde)

	switch body {
	case domain.Moon:
		l, b, d := moonposition.Position(jde)
		return norm360(l.Deg() + dpsi.Deg()), b.Deg(), d / kmPerAU, nil

	case domain.Sun:
		l0, b0, r0 := m.earth.position(jde)
		lon := l0*rad2deg + 180 - aberration/r0 + dpsi.Deg()
		return norm360(lon), -b0 * rad2deg, r0, nil

	case domain.Pluto:
		y := yearOf(jde)
		if y < plutoMinYear || y >= plutoMaxYear+1 {
			return 0, 0, 0, fmt.Errorf("%w: Pluto year %.1f", ErrOutOfRange, y)
		}
		lon, lat, dist := m.fromHelio(m.pluto, jde)
		return norm360(lon + dpsi.Deg()), lat, dist, nil
	}

	src, ok := m.planets[body]
	if !ok {
		return 0, 0, 0, fmt.Errorf("unsupported body %s", body)
	}
	lon, lat, dist := m.fromHelio(src, jde)
	return norm360(lon + dpsi.Deg()), lat, dist, nil
}

// fromHelio converte para geocêntrico com correção de tempo de luz.
func (m *Meeus) fromHelio(src source, jde float64) (float64, float64, float64) {
	l0, b0, r0 := m.earth.position(jde)
	x0 := r0 * math.Cos(b0) * math.Cos(l0)
	y0 := r0 * math.Cos(b0) * math.Sin(l0)
	z0 := r0 * math.Sin(b0)

	var x, y, z, dist float64
	tau := 0.0
	for i := 0; i < 3; i++ {
		l, b, r := src.position(jde - tau)
		x = r*math.Cos(b)*math.Cos(l) - x0
		y = r*math.Cos(b)*math.Sin(l) - y0
		z = r*math.Sin(b) - z0
		dist = math.Sqrt(x*x + y*y + z*z)
		tau = lightTimeDay * dist
	}
	lon := math.Atan2(y, x) * rad2deg
	lat := math.Atan2(z, math.Sqrt(x*x+y*y)) * rad2deg
	return lon, lat, dist
}

// Houses calcula cúspides a partir do ARMC (tempo sidéreo aparente de
// Greenwich + longitude) e da obliquidade verdadeira.
func (m *Meeus) Houses(jdUT, lat, lon float64, system domain.HouseSystem) (domain.Houses, error) {
	if err := checkRange(jdUT); err != nil {
		return domain.Houses{}, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.Houses{}, fmt.Errorf("coordinates out of range: %f,%f", lat, lon)
	}
	jde := ttFromUT(jdUT)

	_, deps := nutation.Nutation(jde)
	eps := nutation.MeanObliquity(jde).Deg() + deps.Deg()

	gast := sidereal.Apparent(jdUT).Sec() / 240
	armc := norm360(gast + lon)

	return computeHouses(armc, eps, lat, system), nil
}
