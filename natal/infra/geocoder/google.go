package geocoder

import (
	"context"
	"net/url"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/upstream"

	"github.com/rs/zerolog"
)

const GoogleURL = "https://maps.googleapis.com/maps/api/geocode/json"

type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat coord `json:"lat"`
				Lng coord `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Google exige chave; o registro não o instancia sem GOOGLE_MAPS_API_KEY.
type Google struct {
	url    string
	apiKey string
	client *upstream.Client
	log    zerolog.Logger
}

func NewGoogle(endpoint, apiKey string, client *upstream.Client, log zerolog.Logger) *Google {
	if endpoint == "" {
		endpoint = GoogleURL
	}
	return &Google{url: endpoint, apiKey: apiKey, client: client, log: log}
}

func (p *Google) Name() string { return "google" }

func (p *Google) Resolve(ctx context.Context, place string) (domain.GeocodeResult, bool) {
	if p.apiKey == "" {
		return domain.GeocodeResult{}, false
	}
	params := url.Values{"address": {place}, "key": {p.apiKey}}

	var out googleResponse
	if err := p.client.GetJSON(ctx, upstream.Call{URL: p.url, Params: params}, &out); err != nil {
		p.log.Warn().Err(err).Str("provider", p.Name()).Str("place", place).Msg("geocode request failed")
		return domain.GeocodeResult{}, false
	}
	if out.Status != "OK" || len(out.Results) == 0 {
		p.log.Debug().Str("status", out.Status).Str("place", place).Msg("google returned no result")
		return domain.GeocodeResult{}, false
	}
	it := out.Results[0]
	loc := it.Geometry.Location
	return toResult(p.Name(), loc.Lat, loc.Lng, it.FormattedAddress, place)
}
