package ephemeris

import "math"

// DeltaT devolve TT-UT em segundos para um ano decimal (polinômios de
// Espenak & Meeus, faixa 1800-2200).
func DeltaT(year float64) float64 {
	switch {
	case year < 1860:
		t := year - 1800
		return 13.72 - 0.332447*t + 0.0068612*t*t + 0.0041116*math.Pow(t, 3) -
			0.00037436*math.Pow(t, 4) + 0.0000121272*math.Pow(t, 5) -
			0.0000001699*math.Pow(t, 6) + 0.000000000875*math.Pow(t, 7)
	case year < 1900:
		t := year - 1860
		return 7.62 + 0.5737*t - 0.251754*t*t + 0.01680668*math.Pow(t, 3) -
			0.0004473624*math.Pow(t, 4) + math.Pow(t, 5)/233174
	case year < 1920:
		t := year - 1900
		return -2.79 + 1.494119*t - 0.0598939*t*t + 0.0061966*math.Pow(t, 3) -
			0.000197*math.Pow(t, 4)
	case year < 1941:
		t := year - 1920
		return 21.20 + 0.84493*t - 0.076100*t*t + 0.0020936*math.Pow(t, 3)
	case year < 1961:
		t := year - 1950
		return 29.07 + 0.407*t - t*t/233 + math.Pow(t, 3)/2547
	case year < 1986:
		t := year - 1975
		return 45.45 + 1.067*t - t*t/260 - math.Pow(t, 3)/718
	case year < 2005:
		t := year - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*math.Pow(t, 3) +
			0.000651814*math.Pow(t, 4) + 0.00002373599*math.Pow(t, 5)
	case year < 2050:
		t := year - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case year < 2150:
		u := (year - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-year)
	default:
		u := (year - 1820) / 100
		return -20 + 32*u*u
	}
}

// yearOf converte dia juliano em ano decimal aproximado.
func yearOf(jd float64) float64 {
	return 2000 + (jd-2451545.0)/365.25
}

// ttFromUT devolve o dia juliano das efemérides (TT) para um JD em UT.
func ttFromUT(jdUT float64) float64 {
	return jdUT + DeltaT(yearOf(jdUT))/86400
}
