package natal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
)

const (
	ServiceName  = "house-of-venus-astrocalc"
	maxBodyBytes = 64 << 10
)

// Computer é o caso de uso chamado pelo POST /natal.
type Computer interface {
	Compute(ctx context.Context, req domain.NatalRequest) (domain.NatalResult, error)
}

// Handler expõe o cálculo e os endpoints de saúde/diagnóstico.
type Handler struct {
	Natal  Computer
	Status *Status
	// BusyRetryAfter vai no Retry-After das respostas 503.
	BusyRetryAfter time.Duration
	Now            func() time.Time
}

// Routes registra as rotas num ServeMux novo.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /status", h.status)
	mux.HandleFunc("POST /natal", h.natal)
	return mux
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"service":  ServiceName,
		"time_utc": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if h.Status == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	writeJSON(w, http.StatusOK, h.Status.Report(r.Context()))
}

func (h *Handler) natal(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.Natal.Compute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeError traduz a taxonomia de domain para status HTTP.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrGeocodingExhausted):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrBusy):
		status = http.StatusServiceUnavailable
		retry := h.BusyRetryAfter
		if retry <= 0 {
			retry = time.Second
		}
		w.Header().Set("Retry-After", retryAfterSeconds(retry.Seconds()))
	}

	ev := zerolog.Ctx(r.Context()).Warn()
	if status == http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Int("status", status).Msg("natal request failed")

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// natalPayload aceita latitude/longitude como número ou string.
type natalPayload struct {
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Place       string          `json:"place"`
	HouseSystem string          `json:"house_system"`
	Latitude    json.RawMessage `json:"latitude"`
	Longitude   json.RawMessage `json:"longitude"`
	Timezone    string          `json:"timezone"`
}

// decodeRequest lê JSON e, se o corpo não for um objeto JSON, tenta
// form-urlencoded.
func decodeRequest(r *http.Request) (domain.NatalRequest, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return domain.NatalRequest{}, fmt.Errorf("%w: read body: %v", domain.ErrInvalidInput, err)
	}

	var p natalPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		form, ferr := url.ParseQuery(string(raw))
		if ferr != nil {
			return domain.NatalRequest{}, fmt.Errorf("%w: body is neither JSON nor form data", domain.ErrInvalidInput)
		}
		p = natalPayload{
			Name:        form.Get("name"),
			Date:        form.Get("date"),
			Time:        form.Get("time"),
			Place:       form.Get("place"),
			HouseSystem: form.Get("house_system"),
			Timezone:    form.Get("timezone"),
		}
		if v := form.Get("latitude"); v != "" {
			p.Latitude = json.RawMessage(strconv.Quote(v))
		}
		if v := form.Get("longitude"); v != "" {
			p.Longitude = json.RawMessage(strconv.Quote(v))
		}
	}

	req := domain.NatalRequest{
		Name:        strings.TrimSpace(p.Name),
		Date:        p.Date,
		Time:        p.Time,
		Place:       p.Place,
		HouseSystem: p.HouseSystem,
		Timezone:    p.Timezone,
	}
	if req.Name == "" {
		req.Name = domain.DefaultName
	}
	if req.Latitude, err = coordinate("latitude", p.Latitude); err != nil {
		return domain.NatalRequest{}, err
	}
	if req.Longitude, err = coordinate("longitude", p.Longitude); err != nil {
		return domain.NatalRequest{}, err
	}
	return req, nil
}

func coordinate(field string, raw json.RawMessage) (*float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
		if s == "" {
			return nil, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, field)
	}
	return &v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
