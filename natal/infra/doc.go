// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - ChanPool: semáforo com capacidade fixa para o controle de admissão
//   - TTLCache: cache em memória com expiração preguiçosa na leitura
//   - LimiterStore: token bucket por cliente usando golang.org/x/time/rate
//   - MemoryUsageStore / RedisUsageStore: telemetria de uso
//   - RedisResultCache: camada compartilhada para mapas calculados
//
// Subpacotes cobrem os colaboradores externos: upstream (HTTP resiliente),
// geocoder, tz, ephemeris e sqlstore.
package infra
