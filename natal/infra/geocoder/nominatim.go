package geocoder

import (
	"context"
	"net/url"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/upstream"

	"github.com/rs/zerolog"
)

const (
	NominatimURL = "https://nominatim.openstreetmap.org/search"
	MapsCoURL    = "https://geocode.maps.co/search"
)

// osmPlace é o formato de /search compartilhado pelo Nominatim e pelo maps.co.
type osmPlace struct {
	Lat         coord  `json:"lat"`
	Lon         coord  `json:"lon"`
	DisplayName string `json:"display_name"`
}

// OSMSearch é um provider sobre a API /search do Nominatim (ou compatível).
type OSMSearch struct {
	name   string
	url    string
	params url.Values
	client *upstream.Client
	log    zerolog.Logger
}

// NewNominatim respeita a política de uso do OSM via throttle do cliente.
func NewNominatim(endpoint string, client *upstream.Client, log zerolog.Logger) *OSMSearch {
	if endpoint == "" {
		endpoint = NominatimURL
	}
	return &OSMSearch{
		name:   "nominatim",
		url:    endpoint,
		params: url.Values{"format": {"json"}, "limit": {"1"}, "addressdetails": {"1"}},
		client: client,
		log:    log,
	}
}

// NewMapsCo usa a mesma API do Nominatim; apiKey é opcional.
func NewMapsCo(endpoint, apiKey string, client *upstream.Client, log zerolog.Logger) *OSMSearch {
	if endpoint == "" {
		endpoint = MapsCoURL
	}
	params := url.Values{}
	if apiKey != "" {
		params.Set("api_key", apiKey)
	}
	return &OSMSearch{name: "maps.co", url: endpoint, params: params, client: client, log: log}
}

func (p *OSMSearch) Name() string { return p.name }

func (p *OSMSearch) Resolve(ctx context.Context, place string) (domain.GeocodeResult, bool) {
	params := url.Values{"q": {place}}
	for k, vs := range p.params {
		params[k] = vs
	}

	var out []osmPlace
	if err := p.client.GetJSON(ctx, upstream.Call{URL: p.url, Params: params}, &out); err != nil {
		p.log.Warn().Err(err).Str("provider", p.name).Str("place", place).Msg("geocode request failed")
		return domain.GeocodeResult{}, false
	}
	if len(out) == 0 {
		return domain.GeocodeResult{}, false
	}
	it := out[0]
	return toResult(p.name, it.Lat, it.Lon, it.DisplayName, place)
}
