package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/application"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"
	"github.com/Adonis4U/house-of-venus-astrocalc/natal/infra/upstream"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() upstream.Policy {
	return upstream.Policy{MaxAttempts: 2, BaseSleep: time.Millisecond, MaxSleep: 2 * time.Millisecond, Timeout: time.Second}
}

func jsonServer(t *testing.T, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(name string) *upstream.Client {
	return upstream.New(name, upstream.WithPolicy(testPolicy()), upstream.WithUserAgent("house-of-venus-astrocalc/test"))
}

func TestNominatim_ParsesStringCoordinates(t *testing.T) {
	srv := jsonServer(t, `[{"lat":"41.8933203","lon":"12.4829321","display_name":"Roma, Lazio, Italia"}]`, func(r *http.Request) {
		assert.Equal(t, "Rome", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "house-of-venus-astrocalc/test", r.Header.Get("User-Agent"))
	})
	p := NewNominatim(srv.URL, testClient("nominatim"), zerolog.Nop())

	res, ok := p.Resolve(context.Background(), "Rome")
	require.True(t, ok)
	assert.InDelta(t, 41.8933203, res.Latitude, 1e-9)
	assert.InDelta(t, 12.4829321, res.Longitude, 1e-9)
	assert.Equal(t, "Roma, Lazio, Italia", res.DisplayName)
	assert.Equal(t, "nominatim", res.Source)
}

func TestOSMSearch_MalformedPayloadsAreAbsent(t *testing.T) {
	bodies := []string{
		`[]`,
		`{"error":"nope"}`,
		`[{"lat":"north","lon":"12"}]`,
		`[{"lat":"91.5","lon":"12"}]`,
		`[{"lon":"12"}]`,
		`not json`,
	}
	for _, body := range bodies {
		srv := jsonServer(t, body, nil)
		p := NewMapsCo(srv.URL, "", testClient("maps.co"), zerolog.Nop())
		_, ok := p.Resolve(context.Background(), "x")
		assert.False(t, ok, body)
	}
}

func TestMapsCo_SendsAPIKeyWhenConfigured(t *testing.T) {
	srv := jsonServer(t, `[{"lat":"1","lon":"2","display_name":"X"}]`, func(r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
	})
	p := NewMapsCo(srv.URL, "secret", testClient("maps.co"), zerolog.Nop())
	res, ok := p.Resolve(context.Background(), "x")
	require.True(t, ok)
	assert.Equal(t, "maps.co", res.Source)
}

func TestOpenMeteo_NameWithCountryCode(t *testing.T) {
	srv := jsonServer(t, `{"results":[{"latitude":41.89193,"longitude":12.51133,"name":"Rome","country_code":"IT"}]}`, func(r *http.Request) {
		assert.Equal(t, "Rome", r.URL.Query().Get("name"))
		assert.Equal(t, "1", r.URL.Query().Get("count"))
	})
	p := NewOpenMeteo(srv.URL, testClient("open-meteo"), zerolog.Nop())

	res, ok := p.Resolve(context.Background(), "Rome")
	require.True(t, ok)
	assert.Equal(t, "Rome, IT", res.DisplayName)
	assert.Equal(t, "open-meteo", res.Source)

	empty := jsonServer(t, `{"generationtime_ms":0.3}`, nil)
	_, ok = NewOpenMeteo(empty.URL, testClient("open-meteo"), zerolog.Nop()).Resolve(context.Background(), "Nowhere")
	assert.False(t, ok)
}

func TestGoogle_StatusMustBeOK(t *testing.T) {
	okBody := `{"status":"OK","results":[{"formatted_address":"Rome, Metropolitan City of Rome, Italy","geometry":{"location":{"lat":41.9027835,"lng":12.4963655}}}]}`
	srv := jsonServer(t, okBody, func(r *http.Request) {
		assert.Equal(t, "k", r.URL.Query().Get("key"))
	})
	res, ok := NewGoogle(srv.URL, "k", testClient("google"), zerolog.Nop()).Resolve(context.Background(), "Rome")
	require.True(t, ok)
	assert.Equal(t, "google", res.Source)
	assert.InDelta(t, 12.4963655, res.Longitude, 1e-9)

	denied := jsonServer(t, `{"status":"REQUEST_DENIED","results":[]}`, nil)
	_, ok = NewGoogle(denied.URL, "k", testClient("google"), zerolog.Nop()).Resolve(context.Background(), "Rome")
	assert.False(t, ok)

	_, ok = NewGoogle(srv.URL, "", testClient("google"), zerolog.Nop()).Resolve(context.Background(), "Rome")
	assert.False(t, ok)
}

func TestProvider_UpstreamFailureIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, ok := NewNominatim(srv.URL, testClient("nominatim"), zerolog.Nop()).Resolve(context.Background(), "Rome")
	assert.False(t, ok)
}

func names(ps []domain.GeocodeProvider) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name())
	}
	return out
}

func TestBuild_DedupAliasesAndUnknown(t *testing.T) {
	cfg := Config{Policy: testPolicy(), Log: zerolog.Nop()}

	got := Build([]string{"openmeteo", "Nominatim", "open-meteo", "bing", "mapsco"}, cfg)
	assert.Equal(t, []string{"open-meteo", "nominatim", "maps.co"}, names(got))
}

func TestBuild_CredentialProviderSilentlyExcluded(t *testing.T) {
	cfg := Config{Policy: testPolicy(), Log: zerolog.Nop()}
	assert.Equal(t, []string{"nominatim"}, names(Build([]string{"google", "nominatim"}, cfg)))

	cfg.GoogleAPIKey = "k"
	assert.Equal(t, []string{"google", "nominatim"}, names(Build([]string{"google", "nominatim"}, cfg)))
}

func TestBuild_FallsBackToDefaultOrder(t *testing.T) {
	cfg := Config{Policy: testPolicy(), Log: zerolog.Nop()}

	assert.Equal(t, []string{"nominatim", "open-meteo", "maps.co"}, names(Build([]string{"google", "bing"}, cfg)))
	assert.Equal(t, []string{"nominatim", "open-meteo", "maps.co"}, names(Build(nil, cfg)))
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, []string{"google", "nominatim", "maps.co"}, ParseOrder(" google, nominatim,,maps.co "))
	assert.Empty(t, ParseOrder(""))
}

// Sem chave do Google, a cadeia padrão começa no Nominatim.
func TestChain_GoogleWithoutKeyFallsToNominatim(t *testing.T) {
	nominatim := jsonServer(t, `[{"lat":"41.89","lon":"12.48","display_name":"Rome, Italy"}]`, nil)
	cfg := Config{Policy: testPolicy(), Log: zerolog.Nop(), NominatimURL: nominatim.URL}

	chain := &application.GeocodeChain{Providers: Build(nil, cfg)}
	res, ok := chain.Geocode(context.Background(), "Rome")
	require.True(t, ok)
	assert.Equal(t, "Rome, Italy", res.DisplayName)
	assert.Equal(t, "nominatim", res.Source)
}
