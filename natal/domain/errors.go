package domain

import "errors"

// Taxonomia de falhas que atravessam a fronteira do orquestrador.
// Os adapters HTTP classificam com errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrGeocodingExhausted = errors.New("geocoding exhausted")
	ErrTimezoneNotFound   = errors.New("timezone not found")
	ErrEphemeris          = errors.New("ephemeris computation failed")
	ErrBusy               = errors.New("server busy")
)

// IsRetryable indica falhas em que o cliente pode repetir a mesma requisição.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrGeocodingExhausted)
}
