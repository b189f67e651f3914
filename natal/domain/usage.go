package domain

import (
	"context"
	"time"
)

type UsageKind string

const (
	UsageNatalCall     UsageKind = "natal_call"
	UsageNatalComputed UsageKind = "natal_computed"
	UsageCacheHit      UsageKind = "cache_hit"
	UsageProviderCall  UsageKind = "provider_call"
	UsageProviderHit   UsageKind = "provider_hit"
	UsageRateLimited   UsageKind = "rate_limited"
)

// UsageEvent representa um evento de uso do serviço.
//
// Provider é preenchido em provider_call/provider_hit; Geocode só em provider_hit
// (vira o snapshot do último geocoding bem sucedido).
//
// Observação: cuidado com cardinalidade. Provider vem de um registro fixo,
// nunca de texto do cliente.
type UsageEvent struct {
	Kind     UsageKind
	Provider string
	Place    string
	Geocode  *GeocodeResult

	At time.Time
}

// Counters são os contadores agregados por janela.
type Counters struct {
	NatalCalls    int64 `json:"natal_calls"`
	NatalComputed int64 `json:"natal_computed"`
	CacheHits     int64 `json:"cache_hits"`
	ProviderCalls int64 `json:"provider_calls"`
	RateLimited   int64 `json:"rate_limited"`
}

// LastHit é o snapshot do geocoding bem sucedido mais recente.
type LastHit struct {
	Provider string        `json:"provider"`
	Place    string        `json:"place"`
	Result   GeocodeResult `json:"result"`
	At       time.Time     `json:"at"`
}

// UsageSnapshot é a visão de leitura da telemetria.
type UsageSnapshot struct {
	Total         Counters         `json:"total"`
	Daily         Counters         `json:"daily"`
	DailyDate     string           `json:"daily_date"`
	ProviderHits  map[string]int64 `json:"provider_hits"`
	DailyProvider map[string]int64 `json:"daily_provider_hits"`
	LastHit       *LastHit         `json:"last_hit,omitempty"`
}

// UsageStore é a estratégia de persistência da telemetria.
//
// Implementações podem armazenar em memória, Redis, etc.
// Quem chama deve tratar erro como best-effort (não derrubar request).
type UsageStore interface {
	Record(ctx context.Context, ev UsageEvent) error
	Snapshot(ctx context.Context) (UsageSnapshot, error)
}
