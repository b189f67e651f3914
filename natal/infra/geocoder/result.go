package geocoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
)

// coord aceita número ou string numérica ("41.89" no Nominatim).
type coord struct {
	v     float64
	valid bool
}

func (c *coord) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = coord{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("coordinate %q: %w", s, err)
		}
		*c = coord{v: f, valid: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*c = coord{v: f, valid: true}
	return nil
}

// toResult monta o resultado final; ok=false quando faltam coordenadas ou estão
// fora da faixa WGS84.
func toResult(source string, lat, lon coord, name, place string) (domain.GeocodeResult, bool) {
	if !lat.valid || !lon.valid {
		return domain.GeocodeResult{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = place
	}
	res := domain.GeocodeResult{Latitude: lat.v, Longitude: lon.v, DisplayName: name, Source: source}
	if !res.Valid() {
		return domain.GeocodeResult{}, false
	}
	return res, true
}
