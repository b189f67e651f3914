package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
)

type fakeProvider struct {
	name   string
	res    domain.GeocodeResult
	ok     bool
	panics bool
	calls  atomic.Int32
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Resolve(_ context.Context, _ string) (domain.GeocodeResult, bool) {
	p.calls.Add(1)
	if p.panics {
		panic("boom")
	}
	return p.res, p.ok
}

type mapCache[V any] struct {
	mu sync.Mutex
	m  map[string]V
}

func newMapCache[V any]() *mapCache[V] { return &mapCache[V]{m: make(map[string]V)} }

func (c *mapCache[V]) Get(_ context.Context, key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache[V]) Set(_ context.Context, key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = v
}

func (c *mapCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

type zoneMap struct {
	mu sync.Mutex
	m  map[string]string
}

func (z *zoneMap) Get(key string) (string, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	v, ok := z.m[key]
	return v, ok
}

func (z *zoneMap) Set(key, zone string) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.m == nil {
		z.m = make(map[string]string)
	}
	z.m[key] = zone
}

type fakeLocator struct {
	exact, closest string
	exactCalls     atomic.Int32
	closestCalls   atomic.Int32
}

func (l *fakeLocator) ZoneAt(context.Context, float64, float64) (string, bool) {
	l.exactCalls.Add(1)
	return l.exact, l.exact != ""
}

func (l *fakeLocator) ClosestZoneAt(context.Context, float64, float64) (string, bool) {
	l.closestCalls.Add(1)
	return l.closest, l.closest != ""
}

// fakeEngine devolve longitudes determinísticas derivadas do dia juliano.
type fakeEngine struct {
	failBody   domain.Body
	fail       bool
	failHouses bool
	calls      atomic.Int32
}

func (e *fakeEngine) BodyPosition(jd float64, body domain.Body) (domain.BodyPosition, error) {
	e.calls.Add(1)
	if e.fail && body == e.failBody {
		return domain.BodyPosition{}, errors.New("out of range")
	}
	return domain.BodyPosition{Longitude: float64(body)*33.3 + jd/1000, SpeedLongitude: 1}, nil
}

func (e *fakeEngine) Houses(jd, lat, lon float64, system domain.HouseSystem) (domain.Houses, error) {
	if e.failHouses {
		return domain.Houses{}, errors.New("houses failed")
	}
	var h domain.Houses
	for i := range h.Cusps {
		h.Cusps[i] = float64(i)*30 + 5
	}
	h.Ascendant = 5
	h.Midheaven = 275
	return h, nil
}

type fakeGeocoder struct {
	res   domain.GeocodeResult
	ok    bool
	calls atomic.Int32
}

func (g *fakeGeocoder) Geocode(context.Context, string) (domain.GeocodeResult, bool) {
	g.calls.Add(1)
	return g.res, g.ok
}

type fakeZones struct {
	zone string
}

func (z fakeZones) ResolveTimezone(context.Context, float64, float64) (string, bool) {
	return z.zone, z.zone != ""
}

type usageLog struct {
	mu     sync.Mutex
	events []domain.UsageEvent
}

func (u *usageLog) Record(_ context.Context, ev domain.UsageEvent) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.events = append(u.events, ev)
	return nil
}

func (u *usageLog) Snapshot(context.Context) (domain.UsageSnapshot, error) {
	return domain.UsageSnapshot{}, nil
}

func (u *usageLog) count(kind domain.UsageKind) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, ev := range u.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
