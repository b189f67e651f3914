// Package upstream é o cliente HTTP de saída usado pelos providers de
// geocoding: retry com backoff exponencial e jitter (github.com/sethvargo/go-retry),
// timeout por chamada, corpo limitado e throttle opcional (x/time/rate).
package upstream
