package ephemeris

import "math"

// elements são os elementos keplerianos médios (J2000, eclíptica e equinócio
// J2000) e suas taxas por século juliano, da tabela 1800-2050 do JPL.
type elements struct {
	a, e, i, l, peri, node                   float64
	aDot, eDot, iDot, lDot, periDot, nodeDot float64
}

var (
	elMercury = elements{0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593, 0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081}
	elVenus   = elements{0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255, 0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418}
	elEarth   = elements{1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0, 0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0}
	elMars    = elements{1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891, 0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343}
	elJupiter = elements{5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909, -0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106}
	elSaturn  = elements{9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448, -0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794}
	elUranus  = elements{19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503, -0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589}
	elNeptune = elements{30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574, 0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664}
)

// keplerSource implementa source com elementos médios.
type keplerSource struct {
	el elements
}

func (k keplerSource) position(jde float64) (l, b, r float64) {
	T := (jde - 2451545.0) / 36525
	el := k.el

	a := el.a + el.aDot*T
	e := el.e + el.eDot*T
	inc := el.i + el.iDot*T
	lm := el.l + el.lDot*T
	peri := el.peri + el.periDot*T
	node := el.node + el.nodeDot*T

	w := peri - node
	m := norm360(lm - peri)
	E := solveKepler(m*deg2rad, e)

	xp := a * (math.Cos(E) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(E)

	cw, sw := cosd(w), sind(w)
	cn, sn := cosd(node), sind(node)
	ci, si := cosd(inc), sind(inc)

	x := (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp
	y := (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp
	z := (sw*si)*xp + (cw*si)*yp

	r = math.Sqrt(x*x + y*y + z*z)
	l = math.Atan2(y, x) + precessionInLongitude(T)
	b = math.Asin(z / r)
	return l, b, r
}

// solveKepler resolve M = E - e sin E por Newton (radianos).
func solveKepler(m, e float64) float64 {
	E := m
	if e > 0.8 {
		E = math.Pi
	}
	for i := 0; i < 30; i++ {
		d := (E - e*math.Sin(E) - m) / (1 - e*math.Cos(E))
		E -= d
		if math.Abs(d) < 1e-12 {
			break
		}
	}
	return E
}

// precessionInLongitude é a precessão geral em longitude desde J2000
// (radianos), T em séculos julianos.
func precessionInLongitude(T float64) float64 {
	arcsec := 5029.0966*T + 1.11113*T*T - 0.000006*T*T*T
	return arcsec / 3600 * deg2rad
}
