package domain

import "strings"

type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
)

// Bodies são os corpos rastreados no mapa, na ordem de exibição.
var Bodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

var bodyNames = [...]string{"Sun", "Moon", "Mercury", "Venus", "Mars", "Jupiter", "Saturn", "Uranus", "Neptune", "Pluto"}

func (b Body) String() string {
	if b < 0 || int(b) >= len(bodyNames) {
		return "Unknown"
	}
	return bodyNames[b]
}

// BodyPosition segue o contrato do motor: graus, UA e graus/dia.
type BodyPosition struct {
	Longitude      float64
	Latitude       float64
	Distance       float64
	SpeedLongitude float64
	SpeedLatitude  float64
	SpeedDistance  float64
}

type HouseSystem byte

const (
	Placidus      HouseSystem = 'P'
	Koch          HouseSystem = 'K'
	Porphyry      HouseSystem = 'O'
	Regiomontanus HouseSystem = 'R'
	Campanus      HouseSystem = 'C'
	Alcabitius    HouseSystem = 'B'
	Vehlow        HouseSystem = 'V'
)

const houseSystemCodes = "PKORCBV"

// ParseHouseSystem aceita um código de uma letra; qualquer outro valor vira Placidus.
func ParseHouseSystem(code string) HouseSystem {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) == 1 && strings.Contains(houseSystemCodes, c) {
		return HouseSystem(c[0])
	}
	return Placidus
}

func (h HouseSystem) String() string { return string(rune(h)) }

// Houses carrega as 12 cúspides (índice 0 = casa 1) e os ângulos.
type Houses struct {
	Cusps     [12]float64
	Ascendant float64
	Midheaven float64
}

// Engine é o motor astronômico (colaborador externo).
//
// Entradas inválidas (ex: dia juliano fora da faixa suportada) retornam erro,
// nunca zeros.
type Engine interface {
	BodyPosition(jdUT float64, body Body) (BodyPosition, error)
	Houses(jdUT, lat, lon float64, system HouseSystem) (Houses, error)
}
