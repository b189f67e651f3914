package ephemeris

import (
	"math"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
)

// maxPoleLat evita tan(90°) nas fórmulas de polo.
const maxPoleLat = 89.9999

// cuspAt é a longitude eclíptica do ponto que cruza o círculo de posição de
// polo f na ascensão (oblíqua) x. Com f = 0 é a conversão AR -> longitude; com
// f = latitude e x = ARMC+90 é o Ascendente.
func cuspAt(x, f, eps float64) float64 {
	return norm360(atan2d(sind(x), cosd(x)*cosd(eps)-tand(f)*sind(eps)))
}

// ascDiff é a diferença ascensional de um ponto de declinação dec na latitude
// lat; NaN quando o ponto é circumpolar.
func ascDiff(dec, lat float64) float64 {
	v := tand(lat) * tand(dec)
	if v > 1 || v < -1 {
		return math.NaN()
	}
	return asind(v)
}

func declination(lon, eps float64) float64 {
	return asind(sind(eps) * sind(lon))
}

// computeHouses devolve as 12 cúspides, ASC e MC em graus.
//
// armc e lat em graus; eps é a obliquidade verdadeira. Quando o sistema não
// tem solução (latitudes polares para P, K e B), cai para Porphyry.
func computeHouses(armc, eps, lat float64, system domain.HouseSystem) domain.Houses {
	armc = norm360(armc)
	lat = math.Max(-maxPoleLat, math.Min(maxPoleLat, lat))

	asc := cuspAt(armc+90, lat, eps)
	mc := cuspAt(armc, 0, eps)

	var inner [4]float64 // casas 11, 12, 2, 3
	ok := true

	switch system {
	case domain.Koch:
		inner, ok = koch(armc, eps, lat, mc)
	case domain.Regiomontanus:
		inner = regiomontanus(armc, eps, lat)
	case domain.Campanus:
		inner = campanus(armc, eps, lat)
	case domain.Alcabitius:
		inner, ok = alcabitius(armc, eps, lat, asc)
	case domain.Porphyry:
		inner = porphyry(asc, mc)
	case domain.Vehlow:
		return vehlow(asc, mc)
	default:
		inner, ok = placidus(armc, eps, lat)
	}
	if !ok {
		inner = porphyry(asc, mc)
	}

	var h domain.Houses
	h.Ascendant, h.Midheaven = asc, mc
	h.Cusps[0] = asc
	h.Cusps[9] = mc
	h.Cusps[10], h.Cusps[11] = inner[0], inner[1]
	h.Cusps[1], h.Cusps[2] = inner[2], inner[3]
	for _, i := range []int{0, 1, 2, 9, 10, 11} {
		h.Cusps[(i+6)%12] = norm360(h.Cusps[i] + 180)
	}
	return h
}

func porphyry(asc, mc float64) [4]float64 {
	q1 := norm360(asc - mc) // MC -> ASC
	q2 := 180 - q1          // ASC -> IC
	return [4]float64{
		norm360(mc + q1/3),
		norm360(mc + 2*q1/3),
		norm360(asc + q2/3),
		norm360(asc + 2*q2/3),
	}
}

func regiomontanus(armc, eps, lat float64) [4]float64 {
	var out [4]float64
	for i, a := range [4]float64{30, 60, 120, 150} {
		f := math.Atan(tand(lat)*sind(a)) * rad2deg
		out[i] = cuspAt(armc+a, f, eps)
	}
	return out
}

func campanus(armc, eps, lat float64) [4]float64 {
	var out [4]float64
	for i, a := range [4]float64{30, 60, 120, 150} {
		d := atan2d(sind(a)*cosd(lat), cosd(a))
		f := asind(sind(lat) * sind(a))
		out[i] = cuspAt(armc+d, f, eps)
	}
	return out
}

// placidus itera cada cúspide até a distância meridiana ser a fração certa
// do semi-arco do próprio ponto.
func placidus(armc, eps, lat float64) ([4]float64, bool) {
	type part struct {
		fraction float64
		below    bool
	}
	parts := [4]part{{1.0 / 3, false}, {2.0 / 3, false}, {2.0 / 3, true}, {1.0 / 3, true}}

	var out [4]float64
	for i, p := range parts {
		ra := armc + 30*float64(i+1)
		if p.below {
			ra = armc + 180 - 90*p.fraction
		}
		lon := cuspAt(ra, 0, eps)
		converged := false
		for iter := 0; iter < 100; iter++ {
			ad := ascDiff(declination(lon, eps), lat)
			if math.IsNaN(ad) {
				return out, false
			}
			if p.below {
				ra = armc + 180 - (90-ad)*p.fraction
			} else {
				ra = armc + (90+ad)*p.fraction
			}
			next := cuspAt(ra, 0, eps)
			if math.Abs(diff180(next, lon)) < 1e-7 {
				lon = next
				converged = true
				break
			}
			lon = next
		}
		if !converged {
			return out, false
		}
		out[i] = lon
	}
	return out, true
}

func koch(armc, eps, lat, mc float64) ([4]float64, bool) {
	ad := ascDiff(declination(mc, eps), lat)
	if math.IsNaN(ad) {
		return [4]float64{}, false
	}
	ad3 := ad / 3
	return [4]float64{
		cuspAt(armc+30-2*ad3, lat, eps),
		cuspAt(armc+60-ad3, lat, eps),
		cuspAt(armc+120+ad3, lat, eps),
		cuspAt(armc+150+2*ad3, lat, eps),
	}, true
}

// alcabitius trisecciona em AR os semi-arcos diurno e noturno do Ascendente.
func alcabitius(armc, eps, lat, asc float64) ([4]float64, bool) {
	ad := ascDiff(declination(asc, eps), lat)
	if math.IsNaN(ad) {
		return [4]float64{}, false
	}
	dsa := 90 + ad
	nsa := 180 - dsa
	raAsc := armc + dsa
	return [4]float64{
		cuspAt(armc+dsa/3, 0, eps),
		cuspAt(armc+2*dsa/3, 0, eps),
		cuspAt(raAsc+nsa/3, 0, eps),
		cuspAt(raAsc+2*nsa/3, 0, eps),
	}, true
}

// vehlow: casas iguais de 30° com o Ascendente no meio da casa 1.
func vehlow(asc, mc float64) domain.Houses {
	h := domain.Houses{Ascendant: asc, Midheaven: mc}
	start := asc - 15
	for i := range h.Cusps {
		h.Cusps[i] = norm360(start + 30*float64(i))
	}
	return h
}
