package geocoder

import (
	"net/http"
	"strings"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/upstream"

	"github.com/rs/zerolog"
)

// DefaultOrder é usada quando a ordem configurada não resulta em nenhum
// provider utilizável. Google só entra com chave.
var DefaultOrder = []string{"google", "nominatim", "open-meteo", "maps.co"}

var aliases = map[string]string{
	"openmeteo":  "open-meteo",
	"open_meteo": "open-meteo",
	"mapsco":     "maps.co",
	"maps_co":    "maps.co",
	"osm":        "nominatim",
}

// Config carrega credenciais e endpoints dos providers.
type Config struct {
	UserAgent    string
	GoogleAPIKey string
	MapsCoAPIKey string

	// Endpoints sobrescrevem as URLs públicas (ex: geocoder-falso local).
	GoogleURL    string
	NominatimURL string
	OpenMeteoURL string
	MapsCoURL    string

	// NominatimRPS limita as chamadas ao Nominatim (política de uso: <= 1/s).
	NominatimRPS float64

	Policy     upstream.Policy
	HTTPClient *http.Client
	Log        zerolog.Logger
}

// Factory cria o provider; ok=false quando falta credencial.
type Factory func(cfg Config) (p domain.GeocodeProvider, ok bool)

var factories = map[string]Factory{
	"google": func(cfg Config) (domain.GeocodeProvider, bool) {
		if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
			return nil, false
		}
		return NewGoogle(cfg.GoogleURL, cfg.GoogleAPIKey, cfg.client("google", 0), cfg.Log), true
	},
	"nominatim": func(cfg Config) (domain.GeocodeProvider, bool) {
		return NewNominatim(cfg.NominatimURL, cfg.client("nominatim", cfg.NominatimRPS), cfg.Log), true
	},
	"open-meteo": func(cfg Config) (domain.GeocodeProvider, bool) {
		return NewOpenMeteo(cfg.OpenMeteoURL, cfg.client("open-meteo", 0), cfg.Log), true
	},
	"maps.co": func(cfg Config) (domain.GeocodeProvider, bool) {
		return NewMapsCo(cfg.MapsCoURL, cfg.MapsCoAPIKey, cfg.client("maps.co", 0), cfg.Log), true
	},
}

func (cfg Config) client(name string, rps float64) *upstream.Client {
	opts := []upstream.Option{
		upstream.WithPolicy(cfg.Policy),
		upstream.WithUserAgent(cfg.UserAgent),
		upstream.WithLogger(cfg.Log),
		upstream.WithRateLimit(rps),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, upstream.WithHTTPClient(cfg.HTTPClient))
	}
	return upstream.New(name, opts...)
}

// Canonical resolve aliases; ok=false para nomes desconhecidos.
func Canonical(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		n = a
	}
	_, ok := factories[n]
	return n, ok
}

// ParseOrder quebra "google, nominatim,maps.co" em nomes.
func ParseOrder(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Build monta a lista ordenada e deduplicada de providers.
//
// Nomes desconhecidos são descartados com warning; providers sem credencial
// são omitidos em silêncio. Se nada sobrar, usa DefaultOrder.
func Build(order []string, cfg Config) []domain.GeocodeProvider {
	out := build(order, cfg, true)
	if len(out) == 0 {
		if len(order) > 0 {
			cfg.Log.Warn().Strs("order", order).Msg("no usable geocoding provider in configured order, using default")
		}
		out = build(DefaultOrder, cfg, false)
	}
	return out
}

func build(order []string, cfg Config, warn bool) []domain.GeocodeProvider {
	seen := make(map[string]bool, len(order))
	out := make([]domain.GeocodeProvider, 0, len(order))
	for _, raw := range order {
		name, ok := Canonical(raw)
		if !ok {
			if warn {
				cfg.Log.Warn().Str("provider", raw).Msg("unknown geocoding provider ignored")
			}
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		p, ok := factories[name](cfg)
		if !ok {
			continue
		}
		out = append(out, p)
	}
	return out
}
