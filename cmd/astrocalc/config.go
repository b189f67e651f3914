package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/application"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/geocoder"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/upstream"

	"github.com/joho/godotenv"
)

type config struct {
	listenAddr string
	logLevel   string
	logFormat  string
	apiKey     string
	corsOrigin string

	rateEnabled bool
	rateRPS     float64
	rateBurst   int
	rateKey     string
	trustXFF    bool
	retryAfter  time.Duration
	addHeaders  bool

	admissionSlots   int
	admissionTimeout time.Duration
	bodyWorkers      int

	geocoderOrder []string
	geocoderUA    string
	googleAPIKey  string
	mapsCoAPIKey  string
	googleURL     string
	nominatimURL  string
	openMeteoURL  string
	mapsCoURL     string
	nominatimRPS  float64
	retry         upstream.Policy

	geoTTL       time.Duration
	geoCacheSize int
	geoDriver    string
	geoDSN       string

	tzTTL           time.Duration
	tzCacheSize     int
	overpassURL     string
	overpassTimeout time.Duration

	resultTTL          time.Duration
	resultCacheSize    int
	resultRedisEnabled bool

	usageRedisEnabled bool
	usagePrefix       string
	usageLocation     *time.Location

	redisAddr     string
	redisPassword string
	redisDB       int

	ephePath string
}

func (c config) redisNeeded() bool { return c.resultRedisEnabled || c.usageRedisEnabled }

// loadDotenv carrega o primeiro .env encontrado; variáveis já definidas no
// ambiente têm precedência.
func loadDotenv() string {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return path
		}
	}
	return ""
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", "")
	if cfg.listenAddr == "" {
		// PORT é o padrão de PaaS (Render, Heroku)
		cfg.listenAddr = ":" + getenvDefault("PORT", "8080")
	}
	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.logFormat = getenvDefault("LOG_FORMAT", "json")
	cfg.apiKey = os.Getenv("API_KEY")
	cfg.corsOrigin = getenvDefault("CORS_ALLOW_ORIGIN", "*")

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateRPS = getenvFloatDefault("RATE_RPS", 5)
	// IMPORTANTE: o "burst" permite uma rajada inicial. Com RPS < 1 o padrão
	// 10 daria a impressão de que o limiter não funciona.
	if burst, ok := getenvInt("RATE_BURST"); ok {
		cfg.rateBurst = burst
	} else {
		cfg.rateBurst = 10
		if getenvIsSet("RATE_RPS") && cfg.rateRPS > 0 && cfg.rateRPS < 1 {
			cfg.rateBurst = 1
		}
	}
	cfg.rateKey = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.retryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)

	cfg.admissionSlots = getenvIntDefault("ADMISSION_POOL_SIZE", application.DefaultAdmissionSlots)
	cfg.admissionTimeout = getenvDurationDefault("ADMISSION_TIMEOUT", application.DefaultAdmissionTimeout)
	cfg.bodyWorkers = getenvIntDefault("BODY_WORKERS", 4)

	cfg.geocoderOrder = geocoder.ParseOrder(os.Getenv("GEOCODER_ORDER"))
	cfg.geocoderUA = getenvDefault("GEOCODER_UA", "house-of-venus-astrocalc/1.0")
	cfg.googleAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.mapsCoAPIKey = os.Getenv("MAPSCO_API_KEY")
	cfg.googleURL = os.Getenv("GOOGLE_GEOCODE_URL")
	cfg.nominatimURL = os.Getenv("NOMINATIM_URL")
	cfg.openMeteoURL = os.Getenv("OPEN_METEO_URL")
	cfg.mapsCoURL = os.Getenv("MAPSCO_URL")
	cfg.nominatimRPS = getenvFloatDefault("NOMINATIM_RPS", 1)
	cfg.retry = upstream.Policy{
		MaxAttempts: getenvIntDefault("RETRY_MAX", upstream.DefaultMaxAttempts),
		BaseSleep:   getenvDurationDefault("RETRY_BASE_SLEEP", upstream.DefaultBaseSleep),
		MaxSleep:    getenvDurationDefault("RETRY_MAX_SLEEP", upstream.DefaultMaxSleep),
		Jitter:      getenvDurationDefault("RETRY_JITTER", upstream.DefaultJitter),
		Timeout:     getenvDurationDefault("HTTP_TIMEOUT", upstream.DefaultTimeout),
	}

	cfg.geoTTL = getenvDurationDefault("GEO_TTL", getenvDurationDefault("GEO_TTL_SECONDS", 24*time.Hour))
	cfg.geoCacheSize = getenvIntDefault("GEO_CACHE_SIZE", infra.DefaultCacheSize)
	cfg.geoDriver = getenvDefault("GEO_STORE_DRIVER", "sqlite")
	cfg.geoDSN = os.Getenv("GEO_STORE_DSN")

	cfg.tzTTL = getenvDurationDefault("TZ_TTL", application.DefaultTimezoneTTL)
	cfg.tzCacheSize = getenvIntDefault("TZ_CACHE_SIZE", 20000)
	cfg.overpassURL = os.Getenv("OVERPASS_URL")
	cfg.overpassTimeout = getenvDurationDefault("OVERPASS_TIMEOUT", 25*time.Second)

	cfg.resultTTL = getenvDurationDefault("RESULT_TTL", application.DefaultResultTTL)
	cfg.resultCacheSize = getenvIntDefault("RESULT_CACHE_SIZE", 2000)
	cfg.resultRedisEnabled = getenvBoolDefault("RESULT_REDIS_ENABLED", false)

	cfg.usageRedisEnabled = getenvBoolDefault("USAGE_REDIS_ENABLED", false)
	cfg.usagePrefix = getenvDefault("USAGE_REDIS_PREFIX", "astrocalc:usage")

	cfg.redisAddr = os.Getenv("REDIS_ADDR")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	cfg.ephePath = getenvDefault("EPHE_PATH", "./ephe")

	loc, err := time.LoadLocation(getenvDefault("USAGE_TZ", "UTC"))
	if err != nil {
		return config{}, fmt.Errorf("invalid USAGE_TZ: %w", err)
	}
	cfg.usageLocation = loc

	if cfg.rateEnabled && cfg.rateRPS <= 0 {
		return config{}, errors.New("RATE_RPS must be > 0")
	}
	if cfg.rateEnabled && cfg.rateBurst <= 0 {
		return config{}, errors.New("RATE_BURST must be > 0")
	}
	if cfg.admissionSlots <= 0 {
		return config{}, errors.New("ADMISSION_POOL_SIZE must be > 0")
	}
	if cfg.geoTTL <= 0 || cfg.tzTTL <= 0 || cfg.resultTTL <= 0 {
		return config{}, errors.New("GEO_TTL, TZ_TTL and RESULT_TTL must be > 0")
	}
	if cfg.redisNeeded() && strings.TrimSpace(cfg.redisAddr) == "" {
		return config{}, errors.New("REDIS_ADDR is required when RESULT_REDIS_ENABLED or USAGE_REDIS_ENABLED is true")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	i, ok := getenvInt(k)
	if !ok {
		return def
	}
	return i
}

func getenvInt(k string) (int, bool) {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return i, true
}

func getenvIsSet(k string) bool {
	v, ok := os.LookupEnv(k)
	return ok && v != ""
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// getenvDurationDefault aceita sintaxe Go ("2s", "6h") ou segundos ("0.6", "86400").
func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return time.Duration(secs * float64(time.Second))
}
