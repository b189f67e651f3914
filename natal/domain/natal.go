package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	DefaultTime = "12:00"
	// DefaultName é ecoado quando a requisição não traz nome.
	DefaultName = "Unknown"
)

// NatalRequest é a entrada do cálculo.
//
// Name não é semântico: nunca entra na chave de cache. Latitude/Longitude e
// Timezone são opcionais; quando presentes, pulam geocoding e resolução de fuso.
type NatalRequest struct {
	Name        string   `json:"name,omitempty"`
	Date        string   `json:"date"`
	Time        string   `json:"time,omitempty"`
	Place       string   `json:"place"`
	HouseSystem string   `json:"house_system,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
}

// HasCoordinates indica se o cliente já mandou lat/lon resolvidos.
func (r NatalRequest) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// RequestKey gera o fingerprint determinístico da parte astrologicamente
// relevante da requisição. Espera uma requisição já normalizada (hora padrão
// aplicada e sistema de casas validado).
func RequestKey(r NatalRequest) string {
	var b strings.Builder
	b.WriteString("v1|")
	b.WriteString(strings.TrimSpace(r.Date))
	b.WriteByte('|')
	b.WriteString(strings.TrimSpace(r.Time))
	b.WriteByte('|')
	b.WriteString(NormalizePlace(r.Place))
	b.WriteByte('|')
	b.WriteString(ParseHouseSystem(r.HouseSystem).String())
	b.WriteByte('|')
	if r.HasCoordinates() {
		b.WriteString(strconv.FormatFloat(*r.Latitude, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(*r.Longitude, 'f', 6, 64))
	}
	b.WriteByte('|')
	b.WriteString(strings.TrimSpace(r.Timezone))

	sum := sha256.Sum256([]byte(b.String()))
	return "natal:" + hex.EncodeToString(sum[:])
}

// BodyPoint é a posição formatada de um corpo celeste.
type BodyPoint struct {
	Longitude float64 `json:"longitude"`
	Sign      string  `json:"sign"`
	DegInSign float64 `json:"deg_in_sign"`
	DegStr    string  `json:"deg_str"`
	SpeedLon  float64 `json:"speed_lon"`
}

// AnglePoint é a posição formatada de ASC/MC.
type AnglePoint struct {
	Longitude float64 `json:"longitude"`
	Sign      string  `json:"sign"`
	DegInSign float64 `json:"deg_in_sign"`
	DegStr    string  `json:"deg_str"`
}

// ResolvedInput são os metadados de entrada já resolvidos.
type ResolvedInput struct {
	Name          string  `json:"name"`
	PlaceQuery    string  `json:"place_query"`
	ResolvedPlace string  `json:"resolved_place"`
	Geocoder      string  `json:"geocoder"`
	Latitude      float64 `json:"lat"`
	Longitude     float64 `json:"lon"`
	Timezone      string  `json:"timezone"`
	LocalDatetime string  `json:"local_datetime"`
	UTCDatetime   string  `json:"utc_datetime"`
	JulianDayUT   float64 `json:"julian_day_ut"`
	HouseSystem   string  `json:"house_system"`
}

// NatalResult é o mapa completo. Tratado como valor imutável depois de ir para o cache.
type NatalResult struct {
	Input     ResolvedInput         `json:"input"`
	Positions map[string]BodyPoint  `json:"positions"`
	Angles    map[string]AnglePoint `json:"angles"`
	Houses    map[string]float64    `json:"houses"`
}
