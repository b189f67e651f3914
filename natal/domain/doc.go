// Package domain define contratos e tipos de domínio do cálculo de mapa natal.
//
// Este pacote não depende de net/http nem de implementações concretas
// (HTTP de geocoding, Redis, efemérides). A intenção é permitir testes de
// unidade puros e desacoplar as regras de negócio dos detalhes de infraestrutura.
package domain
