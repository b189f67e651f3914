// Package application contém os casos de uso do cálculo de mapa natal.
//
// Ele depende apenas do pacote domain e não conhece net/http nem as
// implementações concretas de cache, geocoding ou efemérides.
// Ex.: NatalService.Compute(req) orquestra cache -> admissão -> geocoding ->
// fuso -> localização -> motor, e retorna um NatalResult ou um erro tipado.
package application
