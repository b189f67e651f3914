package domain

import "context"

// ZoneLocator mapeia coordenadas para um nome de zona IANA.
//
// ZoneAt faz a busca exata (ponto dentro do polígono/fronteira).
// ClosestZoneAt é a busca aproximada usada quando ZoneAt não encontra nada.
type ZoneLocator interface {
	ZoneAt(ctx context.Context, lat, lon float64) (string, bool)
	ClosestZoneAt(ctx context.Context, lat, lon float64) (string, bool)
}

// ZoneResolver é a visão com cache usada pelo orquestrador.
type ZoneResolver interface {
	ResolveTimezone(ctx context.Context, lat, lon float64) (string, bool)
}

// ZoneCache guarda zonas por coordenada arredondada.
type ZoneCache interface {
	Get(key string) (string, bool)
	Set(key, zone string)
}
