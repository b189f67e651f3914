package domain

import (
	"fmt"
	"math"
)

var ZodiacSigns = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// NormalizeLongitude leva qualquer longitude para [0, 360).
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	// -1e-15 + 360 arredonda para 360 em float64
	if lon >= 360 {
		lon = 0
	}
	return lon
}

// SignOf retorna o signo, o grau dentro do signo em [0, 30) e a longitude normalizada.
func SignOf(lon float64) (sign string, degInSign, abs float64) {
	abs = NormalizeLongitude(lon)
	idx := int(math.Floor(abs / 30))
	if idx > 11 {
		idx = 11
	}
	return ZodiacSigns[idx], abs - float64(idx)*30, abs
}

// FormatDegree formata o grau dentro do signo como D°MM'.
//
// Minutos arredondados para 60 sobem um grau (9°59.99' -> 10°00'), mas nunca
// para 30°00': o valor fica preso em 29°59' para não sair do signo.
func FormatDegree(deg float64) string {
	total := int(math.Round(deg * 60))
	if total < 0 {
		total = 0
	}
	if total >= 30*60 {
		total = 30*60 - 1
	}
	return fmt.Sprintf("%d°%02d'", total/60, total%60)
}
