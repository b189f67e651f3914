package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 1 << 20

var (
	// ErrUpstreamFatal é um status não-2xx fora da lista de retentáveis.
	ErrUpstreamFatal = errors.New("upstream fatal status")
	// ErrUpstreamUnavailable significa tentativas esgotadas.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Call descreve uma requisição de saída.
type Call struct {
	Method  string
	URL     string
	Params  url.Values
	Headers http.Header
	// Timeout por tentativa; zero usa Policy.Timeout.
	Timeout time.Duration
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client é seguro para uso concorrente.
type Client struct {
	Name      string
	HTTP      *http.Client
	Policy    Policy
	UserAgent string
	// Limiter opcional (ex: 1 req/s para o Nominatim).
	Limiter *rate.Limiter
	Log     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

func WithPolicy(p Policy) Option {
	return func(c *Client) { c.Policy = p }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.UserAgent = ua }
}

// WithRateLimit limita chamadas de saída a rps por segundo (rps <= 0 desliga).
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.Limiter = nil
			return
		}
		c.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.Log = l }
}

func New(name string, opts ...Option) *Client {
	c := &Client{
		Name:   name,
		HTTP:   &http.Client{},
		Policy: DefaultPolicy(),
		Log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Policy = c.Policy.withDefaults()
	return c
}

// Do executa a chamada com retry.
//
// Cada tentativa usa seu próprio timeout e não herda o cancelamento de ctx;
// ctx só interrompe a espera entre tentativas e o throttle.
// Erros: ErrUpstreamFatal (status não retentável), ErrUpstreamUnavailable
// (tentativas esgotadas) ou o erro de ctx.
func (c *Client) Do(ctx context.Context, call Call) (*Response, error) {
	if call.Method == "" {
		call.Method = http.MethodGet
	}
	target, err := url.Parse(call.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad url: %v", ErrUpstreamFatal, err)
	}
	if len(call.Params) > 0 {
		q := target.Query()
		for k, vs := range call.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	timeout := call.Timeout
	if timeout <= 0 {
		timeout = c.Policy.Timeout
	}

	log := c.Log.With().Str("provider", c.Name).Str("host", target.Host).Logger()
	attempts := 0

	b := c.Policy.backoff(nil, func(attempt int, delay time.Duration) {
		log.Warn().Int("attempt", attempt).Int("max", c.Policy.MaxAttempts).Dur("delay", delay).Msg("upstream retry")
	})

	var out *Response
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		resp, err := c.once(ctx, call, target.String(), timeout)
		if err != nil {
			log.Debug().Err(err).Int("attempt", attempts).Msg("upstream transport error")
			return retry.RetryableError(err)
		}
		if retryableStatus[resp.StatusCode] {
			return retry.RetryableError(fmt.Errorf("HTTP %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("%w: HTTP %d", ErrUpstreamFatal, resp.StatusCode)
		}
		out = resp
		return nil
	})
	if err == nil {
		return out, nil
	}
	if errors.Is(err, ErrUpstreamFatal) {
		log.Warn().Err(err).Msg("upstream rejected request")
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	log.Error().Err(err).Int("attempts", attempts).Msg("upstream retries exhausted")
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrUpstreamUnavailable, target.Host, attempts, err)
}

func (c *Client) once(ctx context.Context, call Call, target string, timeout time.Duration) (*Response, error) {
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, call.Method, target, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range call.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// GetJSON faz GET e decodifica o corpo em v.
func (c *Client) GetJSON(ctx context.Context, call Call, v any) error {
	call.Method = http.MethodGet
	if call.Headers == nil {
		call.Headers = http.Header{}
	}
	if call.Headers.Get("Accept") == "" {
		call.Headers.Set("Accept", "application/json")
	}
	resp, err := c.Do(ctx, call)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode %s response: %w", c.Name, err)
	}
	return nil
}
