package domain

import "context"

// SlotPool representa um recurso com capacidade finita (ex: cálculos pesados simultâneos).
//
// A semântica é: Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

// PoolInfo é implementado por pools que expõem ocupação para diagnóstico.
type PoolInfo interface {
	InUse() int
	Capacity() int
}
