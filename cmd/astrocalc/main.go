package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/application"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/ephemeris"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/geocoder"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/sqlstore"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/tz"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	envFile := loadDotenv()

	cfg, err := readConfig()
	if err != nil {
		log := newLogger("info", "json")
		log.Fatal().Err(err).Msg("config error")
	}
	log := newLogger(cfg.logLevel, cfg.logFormat)
	if envFile != "" {
		log.Info().Str("path", envFile).Msg("loaded .env")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.redisNeeded() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancelPing()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.redisAddr).Msg("redis ping error")
		}
	}

	// telemetria: memória sempre, Redis como espelho opcional
	memUsage := infra.NewMemoryUsageStore(infra.WithUsageLocation(cfg.usageLocation))
	usage := domain.UsageStore(memUsage)
	var mirror domain.UsageStore
	if cfg.usageRedisEnabled {
		mirror = infra.NewRedisUsageStore(
			rdb,
			infra.WithUsagePrefix(cfg.usagePrefix),
			infra.WithRedisUsageLocation(cfg.usageLocation),
		)
		usage = infra.TeeUsage{memUsage, mirror}
	}

	// geocoding
	geoCache := &infra.Tiered[domain.GeocodeResult]{
		L1:  infra.NewTTLCache[domain.GeocodeResult](cfg.geoTTL, infra.WithMaxSize(cfg.geoCacheSize)),
		Log: log,
	}
	if cfg.geoDSN != "" {
		store, err := sqlstore.Open(ctx, cfg.geoDriver, cfg.geoDSN, cfg.geoTTL, log)
		if err != nil {
			log.Fatal().Err(err).Str("driver", cfg.geoDriver).Msg("geocode store error")
		}
		defer func() { _ = store.Close() }()
		if n, err := store.Prune(ctx); err != nil {
			log.Warn().Err(err).Msg("geocode store prune failed")
		} else if n > 0 {
			log.Info().Int64("removed", n).Msg("pruned expired geocodes")
		}
		geoCache.L2 = store
	}

	providers := geocoder.Build(cfg.geocoderOrder, geocoder.Config{
		UserAgent:    cfg.geocoderUA,
		GoogleAPIKey: cfg.googleAPIKey,
		MapsCoAPIKey: cfg.mapsCoAPIKey,
		GoogleURL:    cfg.googleURL,
		NominatimURL: cfg.nominatimURL,
		OpenMeteoURL: cfg.openMeteoURL,
		MapsCoURL:    cfg.mapsCoURL,
		NominatimRPS: cfg.nominatimRPS,
		Policy:       cfg.retry,
		Log:          log,
	})
	chain := &application.GeocodeChain{
		Providers: providers,
		Cache:     geoCache,
		Usage:     usage,
		Log:       log,
	}

	// fuso horário
	finder, err := tz.NewFinder()
	if err != nil {
		log.Fatal().Err(err).Msg("timezone finder error")
	}
	locators := tz.Chain{finder}
	if cfg.overpassURL != "" {
		locators = append(locators, tz.NewOverpass(cfg.overpassURL, cfg.overpassTimeout, log))
	}
	tzCache := infra.NewTTLCache[string](cfg.tzTTL, infra.WithMaxSize(cfg.tzCacheSize))
	zones := &application.TimezoneResolver{Locator: locators, Cache: tzCache, Log: log}

	engine := ephemeris.Open(cfg.ephePath, log)

	// cache de resultados
	resultCache := &infra.Tiered[domain.NatalResult]{
		L1:  infra.NewTTLCache[domain.NatalResult](cfg.resultTTL, infra.WithMaxSize(cfg.resultCacheSize)),
		Log: log,
	}
	if cfg.resultRedisEnabled {
		resultCache.L2 = infra.NewRedisResultCache(rdb, "", cfg.resultTTL, log)
	}

	pool := infra.NewChanPool(cfg.admissionSlots)
	svc := &application.NatalService{
		Geocoder:    chain,
		Zones:       zones,
		Engine:      engine,
		Cache:       resultCache,
		Admission:   application.AdmissionService{Pool: pool, AcquireTimeout: cfg.admissionTimeout},
		Usage:       usage,
		Log:         log,
		BodyWorkers: cfg.bodyWorkers,
	}

	handler := &natal.Handler{
		Natal:          svc,
		BusyRetryAfter: cfg.admissionTimeout,
		Status: &natal.Status{
			Caches: map[string]domain.Sizer{
				"geocode":  geoCache,
				"timezone": tzCache,
				"result":   resultCache,
			},
			Admission: pool,
			Providers: chain.ProviderNames,
			Engine:    engine.Backend(),
			Usage:     memUsage,
			Mirror:    mirror,
			Started:   time.Now(),
			Log:       log,
		},
	}

	h := http.Handler(handler.Routes())
	if cfg.rateEnabled {
		limiters := infra.NewLimiterStore(cfg.rateRPS, cfg.rateBurst)
		limiters.StartJanitor(ctx)
		h = natal.RateLimit(natal.RateLimitOptions{
			Store:               limiters,
			Usage:               usage,
			KeyHeader:           cfg.rateKey,
			TrustXForwardedFor:  cfg.trustXFF,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.retryAfter,
			AddRateLimitHeaders: cfg.addHeaders,
		})(h)
	}
	h = natal.APIKey(cfg.apiKey)(h)
	h = natal.CORS(cfg.corsOrigin)(h)
	h = natal.Recover(h)
	h = natal.RequestLog(log)(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", cfg.listenAddr).
		Str("engine", engine.Backend()).
		Strs("geocoders", chain.ProviderNames()).
		Bool("api_key", cfg.apiKey != "").
		Msg("astrocalc listening")
	log.Info().Bool("enabled", cfg.rateEnabled).Float64("rps", cfg.rateRPS).Int("burst", cfg.rateBurst).
		Str("key_header", cfg.rateKey).Bool("trust_xff", cfg.trustXFF).Msg("rate limit")
	log.Info().Int("slots", cfg.admissionSlots).Dur("timeout", cfg.admissionTimeout).Msg("admission")
	log.Info().Bool("result_redis", cfg.resultRedisEnabled).Bool("usage_redis", cfg.usageRedisEnabled).
		Bool("geocode_sql", cfg.geoDSN != "").Msg("cache tiers")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var l zerolog.Logger
	if strings.EqualFold(format, "console") {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		l = zerolog.New(os.Stderr)
	}
	return l.Level(lvl).With().Timestamp().Str("service", natal.ServiceName).Logger()
}
