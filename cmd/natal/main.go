// Command natal calcula um mapa natal uma vez e imprime o JSON.
//
//	natal --date 1990-07-15 --time 14:45 --place "Rome, Italy"
//	natal --date 1990-07-15 --lat 41.9 --lon 12.5 --tz Europe/Rome --hsys K
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/application"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/ephemeris"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/geocoder"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/tz"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

// exit codes por classe de erro
const (
	exitInvalid  = 2
	exitGeocode  = 3
	exitTimezone = 4
	exitFailure  = 1
)

func main() {
	var (
		req     domain.NatalRequest
		lat     float64
		lon     float64
		order   string
		ephe    string
		verbose bool
		timeout time.Duration
	)
	flag.StringVar(&req.Name, "name", "", "nome (só ecoado na saída)")
	flag.StringVar(&req.Date, "date", "", "data de nascimento YYYY-MM-DD")
	flag.StringVar(&req.Time, "time", domain.DefaultTime, "hora local HH:MM")
	flag.StringVar(&req.Place, "place", "", "lugar de nascimento")
	flag.StringVarP(&req.HouseSystem, "hsys", "s", "P", "sistema de casas (P K O R C B V)")
	flag.Float64Var(&lat, "lat", 0, "latitude (pula geocoding junto com --lon)")
	flag.Float64Var(&lon, "lon", 0, "longitude")
	flag.StringVar(&req.Timezone, "tz", "", "zona IANA (pula a resolução de fuso)")
	flag.StringVar(&order, "geocoders", os.Getenv("GEOCODER_ORDER"), "ordem dos geocoders, separada por vírgula")
	flag.StringVar(&ephe, "ephe", envOr("EPHE_PATH", "./ephe"), "diretório dos arquivos VSOP87")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "tempo máximo total")
	flag.BoolVarP(&verbose, "verbose", "v", false, "log de depuração no stderr")
	flag.Parse()

	lvl := zerolog.WarnLevel
	if verbose {
		lvl = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

	latSet, lonSet := flag.CommandLine.Changed("lat"), flag.CommandLine.Changed("lon")
	if latSet != lonSet {
		fail(fmt.Errorf("%w: --lat and --lon must be given together", domain.ErrInvalidInput))
	}
	if latSet {
		req.Latitude, req.Longitude = &lat, &lon
	}

	finder, err := tz.NewFinder()
	if err != nil {
		fail(err)
	}

	providers := geocoder.Build(geocoder.ParseOrder(order), geocoder.Config{
		UserAgent:    envOr("GEOCODER_UA", "house-of-venus-astrocalc/1.0"),
		GoogleAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		MapsCoAPIKey: os.Getenv("MAPSCO_API_KEY"),
		NominatimURL: os.Getenv("NOMINATIM_URL"),
		NominatimRPS: 1,
		Log:          log,
	})

	svc := &application.NatalService{
		Geocoder:  &application.GeocodeChain{Providers: providers, Log: log},
		Zones:     &application.TimezoneResolver{Locator: finder, Log: log},
		Engine:    ephemeris.Open(ephe, log),
		Admission: application.AdmissionService{Pool: infra.NewChanPool(1)},
		Log:       log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := svc.Compute(ctx, req)
	if err != nil {
		fail(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fail(err)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "natal:", err)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		os.Exit(exitInvalid)
	case errors.Is(err, domain.ErrGeocodingExhausted):
		os.Exit(exitGeocode)
	case errors.Is(err, domain.ErrTimezoneNotFound):
		os.Exit(exitTimezone)
	}
	os.Exit(exitFailure)
}
