package application

import (
	"time"
	_ "time/tzdata"

	"github.com/soniakeys/meeus/v3/julian"
)

// Localized é o instante civil resolvido em uma zona.
type Localized struct {
	Local       time.Time
	UTC         time.Time
	JulianDayUT float64
}

// Localize interpreta a data/hora de parede na zona loc.
//
// Hora ambígua (volta do horário de verão): vale o instante mais cedo, ainda
// no horário de verão. Hora inexistente (salto do horário de verão): soma 1h
// à hora ingênua e resolve de novo; é aproximação para transições que não
// sejam de uma hora exata.
func Localize(year int, month time.Month, day, hour, minute int, loc *time.Location) Localized {
	wall := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)

	t, ok := resolveWall(wall, loc)
	if !ok {
		t, ok = resolveWall(wall.Add(time.Hour), loc)
	}
	if !ok {
		t = time.Date(year, month, day, hour, minute, 0, 0, loc)
	}

	utc := t.UTC()
	return Localized{Local: t, UTC: utc, JulianDayUT: JulianDayUT(utc)}
}

// resolveWall acha os instantes cuja hora de parede em loc é igual a wall.
// Os offsets candidatos vêm de um dia antes e um dia depois, o que cobre
// qualquer transição única na janela.
func resolveWall(wall time.Time, loc *time.Location) (time.Time, bool) {
	var best time.Time
	found := false
	seen := make(map[int]bool, 3)
	for _, probe := range []time.Duration{-24 * time.Hour, 0, 24 * time.Hour} {
		_, off := wall.Add(probe).In(loc).Zone()
		if seen[off] {
			continue
		}
		seen[off] = true

		cand := wall.Add(-time.Duration(off) * time.Second).In(loc)
		if !sameWall(cand, wall) {
			continue
		}
		if !found || cand.Before(best) {
			best, found = cand, true
		}
	}
	return best, found
}

func sameWall(t, wall time.Time) bool {
	return t.Year() == wall.Year() && t.Month() == wall.Month() && t.Day() == wall.Day() &&
		t.Hour() == wall.Hour() && t.Minute() == wall.Minute()
}

// JulianDayUT converte um instante UTC em dia juliano (gregoriano proléptico).
func JulianDayUT(utc time.Time) float64 {
	utc = utc.UTC()
	frac := (float64(utc.Hour()) + float64(utc.Minute())/60 +
		(float64(utc.Second())+float64(utc.Nanosecond())/1e9)/3600) / 24
	return julian.CalendarGregorianToJD(utc.Year(), int(utc.Month()), float64(utc.Day())+frac)
}
