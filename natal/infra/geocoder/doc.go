// Package geocoder implementa os providers de geocoding (Google, Nominatim,
// Open-Meteo, maps.co) e o registro nome -> fábrica que monta a ordem da cadeia.
//
// Todo provider usa o cliente resiliente de upstream e converte qualquer falha
// (rede, status, JSON fora do formato, coordenada inválida) em "ausente".
package geocoder
