// Package ephemeris implementa domain.Engine sobre github.com/soniakeys/meeus/v3.
//
// Dois back-ends de posição heliocêntrica:
//   - VSOP87 (planetposition), com os arquivos VSOP87B.* em EPHE_PATH;
//   - elementos keplerianos médios (JPL, 1800-2050), sem arquivos, usado como
//     fallback quando EPHE_PATH não tem os dados.
//
// Lua vem de moonposition e Plutão de pluto em ambos. As casas são calculadas
// aqui (houses.go) a partir do tempo sidéreo aparente e da obliquidade verdadeira.
package ephemeris
