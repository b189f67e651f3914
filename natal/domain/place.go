package domain

import (
	"context"
	"strings"
)

// GeocodeResult é imutável depois de produzido por um provider.
type GeocodeResult struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	DisplayName string  `json:"name"`
	Source      string  `json:"source"`
}

// Valid verifica se as coordenadas estão dentro dos limites WGS84.
func (g GeocodeResult) Valid() bool {
	return g.Latitude >= -90 && g.Latitude <= 90 && g.Longitude >= -180 && g.Longitude <= 180
}

// GeocodeProvider é um back-end de geocoding: "lugar -> coordenadas ou nada".
//
// Falhas de rede, status e payload malformado são tratadas internamente e
// resultam em ok=false; nenhum erro atravessa para a cadeia.
type GeocodeProvider interface {
	Name() string
	Resolve(ctx context.Context, place string) (GeocodeResult, bool)
}

// Geocoder é a visão da cadeia de providers usada pelo orquestrador.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (GeocodeResult, bool)
}

// NormalizePlace gera a forma usada como chave de cache: trim, espaços
// colapsados e minúsculas. Nunca deve ser usada como valor de exibição.
func NormalizePlace(place string) string {
	return strings.ToLower(strings.Join(strings.Fields(place), " "))
}
