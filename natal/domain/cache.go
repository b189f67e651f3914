package domain

import "context"

// GeocodeCache guarda resultados de geocoding por lugar normalizado.
type GeocodeCache interface {
	Get(ctx context.Context, key string) (GeocodeResult, bool)
	Set(ctx context.Context, key string, res GeocodeResult)
}

// ResultCache guarda mapas calculados pela chave da requisição.
//
// Implementações tratam erro de backend como miss (best-effort): o cache é
// otimização, não mecanismo de corretude.
type ResultCache interface {
	Get(ctx context.Context, key string) (NatalResult, bool)
	Set(ctx context.Context, key string, res NatalResult)
}

// Sizer é implementado por caches que expõem o número de entradas.
type Sizer interface {
	Len() int
}
