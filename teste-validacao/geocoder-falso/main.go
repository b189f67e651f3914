// Geocoder falso compatível com o /search do Nominatim, para validar a
// cadeia de geocoding e o retry sem depender da rede.
//
//	go run ./teste-validacao/geocoder-falso
//	NOMINATIM_URL=http://localhost:8082/search GEOCODER_ORDER=nominatim go run ./cmd/astrocalc
//
// FLAKY_EVERY=N responde 503 a cada N-ésima requisição; LATENCY atrasa todas.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
)

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

var places = map[string]place{
	"rome":                {"41.8933203", "12.4829321", "Roma, Lazio, Italia"},
	"rome, italy":         {"41.8933203", "12.4829321", "Roma, Lazio, Italia"},
	"new york":            {"40.7127281", "-74.0060152", "City of New York, New York, United States"},
	"london":              {"51.5074456", "-0.1277653", "London, Greater London, England, United Kingdom"},
	"sydney":              {"-33.8698439", "151.2082848", "Sydney, New South Wales, Australia"},
	"são paulo":           {"-23.5506507", "-46.6333824", "São Paulo, Região Sudeste, Brasil"},
	"reykjavik":           {"64.145981", "-21.9422367", "Reykjavík, Höfuðborgarsvæðið, Ísland"},
	"fora do mapa":        {"123.0", "12.0", "coordenada inválida (teste)"},
	"null island":         {"0", "0", "Null Island"},
	"kathmandu":           {"27.708317", "85.3205817", "Kathmandu, Bagmati Province, Nepal"},
	"st. john's":          {"47.5614705", "-52.7126162", "St. John's, Newfoundland and Labrador, Canada"},
	"apia":                {"-13.8344", "-171.7518", "Apia, Tuamasaga, Samoa"},
	"longyearbyen":        {"78.2231722", "15.6463709", "Longyearbyen, Svalbard, Norge"},
	"mcmurdo station":     {"-77.8419", "166.6863", "McMurdo Station, Antarctica"},
	"lord howe island":    {"-31.5553", "159.0821", "Lord Howe Island, New South Wales, Australia"},
	"chatham islands":     {"-43.95", "-176.55", "Chatham Islands, New Zealand"},
	"tarawa":              {"1.4518", "172.9717", "Tarawa, Kiribati"},
	"kiritimati":          {"1.8721", "-157.4278", "Kiritimati, Kiribati"},
	"ponta delgada":       {"37.7412", "-25.6756", "Ponta Delgada, Açores, Portugal"},
	"fernando de noronha": {"-3.8547", "-32.4247", "Fernando de Noronha, Pernambuco, Brasil"},
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	addr := ":8082"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	flakyEvery, _ := strconv.Atoi(os.Getenv("FLAKY_EVERY"))
	latency, _ := time.ParseDuration(os.Getenv("LATENCY"))

	var count atomic.Int64
	http.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		n := count.Add(1)
		q := r.URL.Query().Get("q")
		log.Info().Int64("n", n).Str("q", q).Str("ua", r.UserAgent()).Msg("search")

		if latency > 0 {
			time.Sleep(latency)
		}
		if flakyEvery > 0 && n%int64(flakyEvery) == 0 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}

		out := []place{}
		if p, ok := places[domain.NormalizePlace(q)]; ok {
			out = append(out, p)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})

	log.Info().Str("addr", addr).Int("places", len(places)).Msg("geocoder falso rodando")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("erro ao subir o servidor")
	}
}

