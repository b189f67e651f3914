// Package sqlstore persiste resultados de geocoding em SQL (sqlite ou
// postgres) para sobreviverem a reinícios do processo.
package sqlstore
