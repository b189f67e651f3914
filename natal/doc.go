// Package natal fornece os adapters HTTP (net/http) do serviço de mapa natal.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos (sem net/http)
//   - application: casos de uso (orquestração, admissão, decisão de rate limit)
//   - infra: implementações concretas (caches, Redis, SQL, geocoders, efemérides)
//   - natal (este pacote): handlers, middlewares e tradução de erros para status
//
// Fluxo de uma requisição:
//
//  1. Request id + log de acesso
//  2. CORS e preflight
//  3. API key (quando configurada)
//  4. Rate limit por cliente (429 + Retry-After)
//  5. Handler: decodifica JSON/form, chama NatalService e mapeia o erro
//
// As variáveis de ambiente do binário (cmd/astrocalc) controlam cada etapa,
// como API_KEY, RATE_RPS, RATE_BURST e ADMISSION_TIMEOUT.
package natal
