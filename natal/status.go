package natal

import (
	"context"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/rs/zerolog"
)

// Status monta o relatório do GET /status. Somente leitura.
type Status struct {
	Caches    map[string]domain.Sizer
	Admission domain.PoolInfo
	Providers func() []string
	Engine    string
	Usage     domain.UsageStore
	// Mirror é o espelho Redis da telemetria, quando habilitado.
	Mirror  domain.UsageStore
	Started time.Time
	Log     zerolog.Logger
}

type AdmissionReport struct {
	InUse    int `json:"in_use"`
	Capacity int `json:"capacity"`
}

// StatusReport é o corpo JSON do GET /status.
type StatusReport struct {
	Status     string                `json:"status"`
	Service    string                `json:"service"`
	Uptime     string                `json:"uptime,omitempty"`
	Engine     string                `json:"engine,omitempty"`
	Caches     map[string]int        `json:"caches"`
	Admission  *AdmissionReport      `json:"admission,omitempty"`
	Geocoders  []string              `json:"geocoders"`
	Usage      *domain.UsageSnapshot `json:"usage,omitempty"`
	UsageRedis *domain.UsageSnapshot `json:"usage_redis,omitempty"`
}

func (s *Status) Report(ctx context.Context) StatusReport {
	rep := StatusReport{
		Status:    "ok",
		Service:   ServiceName,
		Engine:    s.Engine,
		Caches:    make(map[string]int, len(s.Caches)),
		Geocoders: []string{},
	}
	if !s.Started.IsZero() {
		rep.Uptime = time.Since(s.Started).Round(time.Second).String()
	}

	for name, c := range s.Caches {
		if c != nil {
			rep.Caches[name] = c.Len()
		}
	}

	if s.Admission != nil {
		rep.Admission = &AdmissionReport{InUse: s.Admission.InUse(), Capacity: s.Admission.Capacity()}
	}
	if s.Providers != nil {
		rep.Geocoders = s.Providers()
	}

	rep.Usage = s.snapshot(ctx, s.Usage, "memory")
	rep.UsageRedis = s.snapshot(ctx, s.Mirror, "redis")
	return rep
}

func (s *Status) snapshot(ctx context.Context, store domain.UsageStore, name string) *domain.UsageSnapshot {
	if store == nil {
		return nil
	}
	snap, err := store.Snapshot(ctx)
	if err != nil {
		s.Log.Warn().Err(err).Str("store", name).Msg("usage snapshot failed")
		return nil
	}
	return &snap
}
