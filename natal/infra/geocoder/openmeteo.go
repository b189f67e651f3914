package geocoder

import (
	"context"
	"net/url"
	"strings"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/upstream"

	"github.com/rs/zerolog"
)

const OpenMeteoURL = "https://geocoding-api.open-meteo.com/v1/search"

type openMeteoResponse struct {
	Results []struct {
		Latitude    coord  `json:"latitude"`
		Longitude   coord  `json:"longitude"`
		Name        string `json:"name"`
		CountryCode string `json:"country_code"`
	} `json:"results"`
}

type OpenMeteo struct {
	url    string
	client *upstream.Client
	log    zerolog.Logger
}

func NewOpenMeteo(endpoint string, client *upstream.Client, log zerolog.Logger) *OpenMeteo {
	if endpoint == "" {
		endpoint = OpenMeteoURL
	}
	return &OpenMeteo{url: endpoint, client: client, log: log}
}

func (p *OpenMeteo) Name() string { return "open-meteo" }

func (p *OpenMeteo) Resolve(ctx context.Context, place string) (domain.GeocodeResult, bool) {
	params := url.Values{
		"name":     {place},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}

	var out openMeteoResponse
	if err := p.client.GetJSON(ctx, upstream.Call{URL: p.url, Params: params}, &out); err != nil {
		p.log.Warn().Err(err).Str("provider", p.Name()).Str("place", place).Msg("geocode request failed")
		return domain.GeocodeResult{}, false
	}
	if len(out.Results) == 0 {
		return domain.GeocodeResult{}, false
	}
	it := out.Results[0]
	name := strings.Trim(it.Name+", "+it.CountryCode, ", ")
	return toResult(p.Name(), it.Latitude, it.Longitude, name, place)
}
