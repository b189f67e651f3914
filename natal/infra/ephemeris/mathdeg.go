package ephemeris

import "math"

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

func sind(x float64) float64  { return math.Sin(x * deg2rad) }
func cosd(x float64) float64  { return math.Cos(x * deg2rad) }
func tand(x float64) float64  { return math.Tan(x * deg2rad) }
func asind(x float64) float64 { return math.Asin(x) * rad2deg }

func atan2d(y, x float64) float64 { return math.Atan2(y, x) * rad2deg }

// norm360 leva o ângulo para [0, 360).
func norm360(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	if x >= 360 {
		x = 0
	}
	return x
}

// diff180 é a diferença a-b em (-180, 180].
func diff180(a, b float64) float64 {
	d := norm360(a - b)
	if d > 180 {
		d -= 360
	}
	return d
}
