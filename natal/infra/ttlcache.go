package infra

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const (
	DefaultCacheSize = 8000
	DefaultPruneScan = 1000
)

type ttlEntry[V any] struct {
	key       string
	value     V
	createdAt time.Time
	ttl       time.Duration
}

// TTLCache é um cache em memória com TTL por entrada.
//
// Expiração é preguiçosa: Get descarta entradas vencidas. Não há goroutine de
// limpeza; quando Len() passa de maxSize, Set varre no máximo pruneScan entradas
// mais antigas (ordem de inserção) e remove as vencidas. O limite de tamanho é
// portanto "soft": se nada venceu, o cache pode crescer acima de maxSize.
type TTLCache[V any] struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
	ttl     time.Duration
	maxSize int
	scan    int
	now     func() time.Time
}

type TTLOption func(*ttlOptions)

type ttlOptions struct {
	maxSize int
	scan    int
	now     func() time.Time
}

func WithMaxSize(n int) TTLOption {
	return func(o *ttlOptions) { o.maxSize = n }
}

func WithPruneScan(n int) TTLOption {
	return func(o *ttlOptions) { o.scan = n }
}

// WithClock injeta o relógio (usado em testes).
func WithClock(now func() time.Time) TTLOption {
	return func(o *ttlOptions) { o.now = now }
}

func NewTTLCache[V any](ttl time.Duration, opts ...TTLOption) *TTLCache[V] {
	o := ttlOptions{maxSize: DefaultCacheSize, scan: DefaultPruneScan, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSize <= 0 {
		o.maxSize = DefaultCacheSize
	}
	if o.scan <= 0 {
		o.scan = DefaultPruneScan
	}
	return &TTLCache[V]{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: o.maxSize,
		scan:    o.scan,
		now:     o.now,
	}
}

func (c *TTLCache[V]) TTL() time.Duration { return c.ttl }

// Get retorna o valor se ainda válido. Entrada com now-createdAt > ttl é
// removida e conta como miss.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	v, _, ok := c.GetRemaining(key)
	return v, ok
}

// GetRemaining é Get mais o tempo de vida que ainda resta à entrada.
func (c *TTLCache[V]) GetRemaining(key string) (V, time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, 0, false
	}
	ent := el.Value.(*ttlEntry[V])
	age := c.now().Sub(ent.createdAt)
	if age > ent.ttl {
		c.removeLocked(el)
		return zero, 0, false
	}
	return ent.value, ent.ttl - age, true
}

// Set grava com o TTL padrão do cache.
func (c *TTLCache[V]) Set(key string, value V) {
	c.SetTTL(key, value, c.ttl)
}

func (c *TTLCache[V]) SetTTL(key string, value V, ttl time.Duration) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*ttlEntry[V])
		ent.value = value
		ent.createdAt = now
		ent.ttl = ttl
		c.order.MoveToBack(el)
		return
	}

	el := c.order.PushBack(&ttlEntry[V]{key: key, value: value, createdAt: now, ttl: ttl})
	c.items[key] = el

	if len(c.items) > c.maxSize {
		c.pruneLocked(now)
	}
}

func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *TTLCache[V]) pruneLocked(now time.Time) {
	el := c.order.Front()
	for i := 0; el != nil && i < c.scan; i++ {
		next := el.Next()
		ent := el.Value.(*ttlEntry[V])
		if now.Sub(ent.createdAt) > ent.ttl {
			c.removeLocked(el)
		}
		el = next
	}
}

func (c *TTLCache[V]) removeLocked(el *list.Element) {
	ent := c.order.Remove(el).(*ttlEntry[V])
	delete(c.items, ent.key)
}

// MemoryTier usa um TTLCache como Tier (L2 em processo).
type MemoryTier[V any] struct {
	C *TTLCache[V]
}

func NewMemoryTier[V any](c *TTLCache[V]) MemoryTier[V] { return MemoryTier[V]{C: c} }

func (m MemoryTier[V]) Get(_ context.Context, key string) (V, time.Duration, bool) {
	return m.C.GetRemaining(key)
}

func (m MemoryTier[V]) Set(_ context.Context, key string, value V) { m.C.Set(key, value) }
func (m MemoryTier[V]) Len() int                                   { return m.C.Len() }
