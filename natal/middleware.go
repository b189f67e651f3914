package natal

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const RequestIDHeader = "X-Request-Id"

// statusRecorder guarda o status escrito para o log de acesso.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// RequestLog propaga/gera o X-Request-Id, injeta um logger com request_id no
// contexto (zerolog.Ctx) e registra uma linha de acesso por requisição.
func RequestLog(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			l := log.With().Str("request_id", id).Logger()
			r = r.WithContext(l.WithContext(r.Context()))

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// Recover transforma panics de handler em 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				zerolog.Ctx(r.Context()).Error().Interface("panic", v).Msg("handler panic")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// CORS responde preflight com 204 e adiciona os headers em toda resposta.
func CORS(allowOrigin string) func(next http.Handler) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
			h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			if allowOrigin != "*" {
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PublicPaths não exigem API key nem gastam token do rate limit.
var PublicPaths = []string{"/", "/health", "/healthz"}

// exempt: preflight CORS e PublicPaths.
func exempt(r *http.Request) bool {
	return r.Method == http.MethodOptions || slices.Contains(PublicPaths, r.URL.Path)
}

// APIKey exige X-API-Key igual a key. Desligado quando key é vazia;
// preflight e PublicPaths passam sempre.
func APIKey(key string) func(next http.Handler) http.Handler {
	if key == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt(r) {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "Invalid or missing API key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
