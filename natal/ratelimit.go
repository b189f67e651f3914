package natal

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/application"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
)

type KeyFunc func(r *http.Request) string

type RateLimitOptions struct {
	Store               domain.LimiterStore
	Usage               domain.UsageStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// RateLimit aplica o token bucket por cliente. Rejeições viram eventos
// rate_limited na telemetria; health checks e preflight não consomem token.
func RateLimit(opts RateLimitOptions) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}

	svc := application.RateLimitService{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt(r) {
				next.ServeHTTP(w, r)
				return
			}
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", key)
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", formatFloat(ri.RPS()))
					w.Header().Set("X-RateLimit-Burst", formatInt(ri.Burst()))
				}
			}

			dec := svc.Decide(domain.Key(key))
			if !dec.Allowed {
				if opts.Usage != nil {
					ev := domain.UsageEvent{Kind: domain.UsageRateLimited, At: time.Now()}
					if err := opts.Usage.Record(r.Context(), ev); err != nil {
						zerolog.Ctx(r.Context()).Warn().Err(err).Msg("usage record failed")
					}
				}
				w.Header().Set("Retry-After", retryAfterSeconds(dec.RetryAfter.Seconds()))
				writeJSON(w, opts.RejectStatus, map[string]string{"error": http.StatusText(opts.RejectStatus)})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
