package infra

import (
	"context"
	"sync"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
)

const dayLayout = "2006-01-02"

// MemoryUsageStore mantém contadores de vida do processo e do dia corrente.
//
// O balde diário é zerado de forma preguiçosa: o primeiro acesso (Record ou
// Snapshot) em que a data local difere da data guardada zera o dia. Não existe
// goroutine de timer.
type MemoryUsageStore struct {
	mu            sync.Mutex
	total         domain.Counters
	daily         domain.Counters
	providerHits  map[string]int64
	dailyProvider map[string]int64
	lastHit       *domain.LastHit
	resetDate     string

	now func() time.Time
	loc *time.Location
}

type MemoryUsageOption func(*MemoryUsageStore)

// WithUsageClock injeta o relógio (usado em testes).
func WithUsageClock(now func() time.Time) MemoryUsageOption {
	return func(s *MemoryUsageStore) { s.now = now }
}

// WithUsageLocation define o fuso usado para a virada do dia (padrão: time.Local).
func WithUsageLocation(loc *time.Location) MemoryUsageOption {
	return func(s *MemoryUsageStore) { s.loc = loc }
}

func NewMemoryUsageStore(opts ...MemoryUsageOption) *MemoryUsageStore {
	s := &MemoryUsageStore{
		providerHits:  make(map[string]int64),
		dailyProvider: make(map[string]int64),
		now:           time.Now,
		loc:           time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetDate = s.now().In(s.loc).Format(dayLayout)
	return s
}

func (s *MemoryUsageStore) Record(_ context.Context, ev domain.UsageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollLocked()

	switch ev.Kind {
	case domain.UsageNatalCall:
		s.total.NatalCalls++
		s.daily.NatalCalls++
	case domain.UsageNatalComputed:
		s.total.NatalComputed++
		s.daily.NatalComputed++
	case domain.UsageCacheHit:
		s.total.CacheHits++
		s.daily.CacheHits++
	case domain.UsageProviderCall:
		s.total.ProviderCalls++
		s.daily.ProviderCalls++
	case domain.UsageRateLimited:
		s.total.RateLimited++
		s.daily.RateLimited++
	case domain.UsageProviderHit:
		if ev.Provider != "" {
			s.providerHits[ev.Provider]++
			s.dailyProvider[ev.Provider]++
		}
		if ev.Geocode != nil {
			at := ev.At
			if at.IsZero() {
				at = s.now()
			}
			s.lastHit = &domain.LastHit{Provider: ev.Provider, Place: ev.Place, Result: *ev.Geocode, At: at}
		}
	}
	return nil
}

func (s *MemoryUsageStore) Snapshot(_ context.Context) (domain.UsageSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollLocked()

	snap := domain.UsageSnapshot{
		Total:         s.total,
		Daily:         s.daily,
		DailyDate:     s.resetDate,
		ProviderHits:  make(map[string]int64, len(s.providerHits)),
		DailyProvider: make(map[string]int64, len(s.dailyProvider)),
	}
	for k, v := range s.providerHits {
		snap.ProviderHits[k] = v
	}
	for k, v := range s.dailyProvider {
		snap.DailyProvider[k] = v
	}
	if s.lastHit != nil {
		lh := *s.lastHit
		snap.LastHit = &lh
	}
	return snap, nil
}

func (s *MemoryUsageStore) rollLocked() {
	today := s.now().In(s.loc).Format(dayLayout)
	if today == s.resetDate {
		return
	}
	s.daily = domain.Counters{}
	s.dailyProvider = make(map[string]int64)
	s.resetDate = today
}
