package application

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultResultTTL   = 6 * time.Hour
	defaultBodyWorkers = 4
	sourceInput        = "input"
)

// NatalService orquestra o cálculo de um mapa natal.
//
// Fluxo: validação -> chave -> cache de resultado -> vaga de admissão ->
// geocoding -> fuso -> localização -> motor -> formatação -> cache.
// A vaga é liberada em qualquer caminho de saída.
type NatalService struct {
	Geocoder  domain.Geocoder
	Zones     domain.ZoneResolver
	Engine    domain.Engine
	Cache     domain.ResultCache
	Admission AdmissionService
	Usage     domain.UsageStore
	Log       zerolog.Logger

	// BodyWorkers limita as goroutines que consultam o motor por corpo.
	BodyWorkers int
}

// civil é a requisição validada e já quebrada em campos numéricos.
type civil struct {
	year   int
	month  time.Month
	day    int
	hour   int
	minute int
	system domain.HouseSystem
	loc    *time.Location
}

// Compute retorna o mapa ou um erro classificável com errors.Is contra os
// sentinelas de domain (ErrInvalidInput, ErrBusy, ErrGeocodingExhausted,
// ErrTimezoneNotFound, ErrEphemeris).
func (s *NatalService) Compute(ctx context.Context, req domain.NatalRequest) (domain.NatalResult, error) {
	log := s.Log.With().Str("component", "natal").Logger()
	recordUsage(ctx, s.Usage, log, domain.UsageEvent{Kind: domain.UsageNatalCall})

	req, c, err := normalizeRequest(req)
	if err != nil {
		log.Info().Err(err).Msg("rejected natal request")
		return domain.NatalResult{}, err
	}

	key := domain.RequestKey(req)
	log = log.With().Str("key", key).Logger()

	if s.Cache != nil {
		if res, ok := s.Cache.Get(ctx, key); ok {
			recordUsage(ctx, s.Usage, log, domain.UsageEvent{Kind: domain.UsageCacheHit})
			log.Debug().Msg("natal result cache hit")
			return echo(res, req), nil
		}
	}

	release, err := s.Admission.Acquire(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("admission rejected")
		return domain.NatalResult{}, err
	}
	defer release()

	res, err := s.compute(ctx, req, c, log)
	if err != nil {
		log.Error().Err(err).Msg("natal computation failed")
		return domain.NatalResult{}, err
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, key, res)
	}
	recordUsage(ctx, s.Usage, log, domain.UsageEvent{Kind: domain.UsageNatalComputed})
	log.Info().Str("place", res.Input.ResolvedPlace).Str("timezone", res.Input.Timezone).Msg("natal computed")
	return echo(res, req), nil
}

func (s *NatalService) compute(ctx context.Context, req domain.NatalRequest, c civil, log zerolog.Logger) (domain.NatalResult, error) {
	var geo domain.GeocodeResult
	if req.HasCoordinates() {
		geo = domain.GeocodeResult{
			Latitude:    *req.Latitude,
			Longitude:   *req.Longitude,
			DisplayName: strings.TrimSpace(req.Place),
			Source:      sourceInput,
		}
		if geo.DisplayName == "" {
			geo.DisplayName = fmt.Sprintf("%.6f, %.6f", geo.Latitude, geo.Longitude)
		}
	} else {
		if s.Geocoder == nil {
			return domain.NatalResult{}, fmt.Errorf("%w: no geocoder configured", domain.ErrGeocodingExhausted)
		}
		var ok bool
		geo, ok = s.Geocoder.Geocode(ctx, req.Place)
		if !ok {
			return domain.NatalResult{}, fmt.Errorf("%w: %q", domain.ErrGeocodingExhausted, req.Place)
		}
	}

	loc := c.loc
	if loc == nil {
		if s.Zones == nil {
			return domain.NatalResult{}, domain.ErrTimezoneNotFound
		}
		zone, ok := s.Zones.ResolveTimezone(ctx, geo.Latitude, geo.Longitude)
		if !ok {
			return domain.NatalResult{}, fmt.Errorf("%w: %.4f,%.4f", domain.ErrTimezoneNotFound, geo.Latitude, geo.Longitude)
		}
		var err error
		if loc, err = time.LoadLocation(zone); err != nil {
			return domain.NatalResult{}, fmt.Errorf("%w: %s", domain.ErrTimezoneNotFound, zone)
		}
	}

	lt := Localize(c.year, c.month, c.day, c.hour, c.minute, loc)
	log.Debug().Time("utc", lt.UTC).Float64("jd_ut", lt.JulianDayUT).Msg("localized")

	positions, err := s.bodies(lt.JulianDayUT)
	if err != nil {
		return domain.NatalResult{}, err
	}
	if s.Engine == nil {
		return domain.NatalResult{}, fmt.Errorf("%w: no engine configured", domain.ErrEphemeris)
	}
	houses, err := s.Engine.Houses(lt.JulianDayUT, geo.Latitude, geo.Longitude, c.system)
	if err != nil {
		return domain.NatalResult{}, fmt.Errorf("%w: houses: %v", domain.ErrEphemeris, err)
	}

	in := domain.ResolvedInput{
		PlaceQuery:    req.Place,
		ResolvedPlace: geo.DisplayName,
		Geocoder:      geo.Source,
		Latitude:      round6(geo.Latitude),
		Longitude:     round6(geo.Longitude),
		Timezone:      loc.String(),
		LocalDatetime: lt.Local.Format(time.RFC3339),
		UTCDatetime:   lt.UTC.Format(time.RFC3339),
		JulianDayUT:   round6(lt.JulianDayUT),
		HouseSystem:   c.system.String(),
	}
	res := domain.NatalResult{
		Input:     in,
		Positions: make(map[string]domain.BodyPoint, len(positions)),
		Angles:    make(map[string]domain.AnglePoint, 2),
		Houses:    make(map[string]float64, len(houses.Cusps)),
	}
	res.Angles["ASC"] = anglePoint(houses.Ascendant)
	res.Angles["MC"] = anglePoint(houses.Midheaven)
	for body, pos := range positions {
		sign, deg, abs := zodiacPoint(pos.Longitude)
		res.Positions[body.String()] = domain.BodyPoint{
			Longitude: abs,
			Sign:      sign,
			DegInSign: deg,
			DegStr:    domain.FormatDegree(deg),
			SpeedLon:  round6(pos.SpeedLongitude),
		}
	}
	for i, cusp := range houses.Cusps {
		res.Houses[strconv.Itoa(i+1)] = longitude6(cusp)
	}
	return res, nil
}

type bodyResult struct {
	body domain.Body
	pos  domain.BodyPosition
}

// bodies consulta o motor para cada corpo em um pool limitado.
func (s *NatalService) bodies(jd float64) (map[domain.Body]domain.BodyPosition, error) {
	if s.Engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", domain.ErrEphemeris)
	}
	workers := s.BodyWorkers
	if workers <= 0 {
		workers = defaultBodyWorkers
	}

	p := pool.NewWithResults[bodyResult]().WithErrors().WithMaxGoroutines(workers)
	for _, b := range domain.Bodies {
		p.Go(func() (bodyResult, error) {
			pos, err := s.Engine.BodyPosition(jd, b)
			if err != nil {
				return bodyResult{}, fmt.Errorf("%s: %w", b, err)
			}
			return bodyResult{body: b, pos: pos}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEphemeris, err)
	}

	out := make(map[domain.Body]domain.BodyPosition, len(results))
	for _, r := range results {
		out[r.body] = r.pos
	}
	return out, nil
}

func anglePoint(lon float64) domain.AnglePoint {
	sign, deg, abs := zodiacPoint(lon)
	return domain.AnglePoint{
		Longitude: abs,
		Sign:      sign,
		DegInSign: deg,
		DegStr:    domain.FormatDegree(deg),
	}
}

// longitude6 arredonda para 6 casas sem sair de [0, 360): 359.9999997 vira 0.
func longitude6(lon float64) float64 {
	return domain.NormalizeLongitude(round6(domain.NormalizeLongitude(lon)))
}

// zodiacPoint deriva signo e grau da longitude já arredondada, para que os
// três campos concordem entre si.
func zodiacPoint(lon float64) (sign string, deg, abs float64) {
	sign, deg, abs = domain.SignOf(longitude6(lon))
	return sign, round6(deg), abs
}

// echo devolve uma cópia com os campos não semânticos da requisição atual.
// Os mapas são compartilhados com o cache e nunca são alterados.
func echo(res domain.NatalResult, req domain.NatalRequest) domain.NatalResult {
	res.Input.Name = req.Name
	res.Input.PlaceQuery = req.Place
	return res
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

// normalizeRequest valida a requisição e aplica os padrões (hora 12:00,
// sistema de casas P). Erros satisfazem errors.Is(err, domain.ErrInvalidInput).
func normalizeRequest(req domain.NatalRequest) (domain.NatalRequest, civil, error) {
	var c civil

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = domain.DefaultName
	}
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Place = strings.TrimSpace(req.Place)
	req.Timezone = strings.TrimSpace(req.Timezone)

	if req.Date == "" {
		return req, c, invalid("date is required")
	}
	d, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return req, c, invalid("date must be YYYY-MM-DD")
	}

	if req.Time == "" {
		req.Time = domain.DefaultTime
	}
	tm, err := time.Parse("15:04", req.Time)
	if err != nil {
		return req, c, invalid("time must be HH:MM")
	}
	req.Time = tm.Format("15:04")

	if (req.Latitude == nil) != (req.Longitude == nil) {
		return req, c, invalid("latitude and longitude must be sent together")
	}
	if req.HasCoordinates() {
		if math.IsNaN(*req.Latitude) || *req.Latitude < -90 || *req.Latitude > 90 {
			return req, c, invalid("latitude out of range")
		}
		if math.IsNaN(*req.Longitude) || *req.Longitude < -180 || *req.Longitude > 180 {
			return req, c, invalid("longitude out of range")
		}
	} else if req.Place == "" {
		return req, c, invalid("place is required")
	}

	if req.Timezone != "" {
		loc, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return req, c, invalid("unknown timezone " + strconv.Quote(req.Timezone))
		}
		c.loc = loc
	}

	c.system = domain.ParseHouseSystem(req.HouseSystem)
	req.HouseSystem = c.system.String()

	c.year, c.month, c.day = d.Date()
	c.hour, c.minute = tm.Hour(), tm.Minute()
	return req, c, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}
