package natal

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }

// sem notação científica para valores comuns
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// retryAfterSeconds arredonda para cima; Retry-After nunca vai como 0.
func retryAfterSeconds(secs float64) string {
	n := int(secs)
	if float64(n) < secs {
		n++
	}
	if n < 1 {
		n = 1
	}
	return formatInt(n)
}
