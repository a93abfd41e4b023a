package ddragon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/versions.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `["14.20.1","14.19.1"]`)
	})
	mux.HandleFunc("/cdn/14.20.1/data/en_US/champion.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version":"14.20.1","data":{
			"Ahri":{"id":"Ahri","key":"103","name":"Ahri"},
			"MonkeyKing":{"id":"MonkeyKing","key":"62","name":"Wukong"}}}`)
	})
	mux.HandleFunc("/cdn/14.20.1/data/en_US/champion/Ahri.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"Ahri":{"id":"Ahri","name":"Ahri","skins":[
			{"id":"103000","num":0,"name":"default","chromas":false},
			{"id":"103001","num":1,"name":"Dynasty Ahri","chromas":false}]}}}`)
	})
	mux.HandleFunc("/cdn/img/champion/splash/Ahri_1.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xff, 0xd8, 0xff})
	})
	mux.HandleFunc("/cdn/img/champion/splash/Ahri_9.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL))
	ctx := context.Background()

	version, err := c.LatestVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "14.20.1", version)

	champions, err := c.Champions(ctx, version)
	require.NoError(t, err)
	require.Len(t, champions, 2)
	assert.Equal(t, "Wukong", champions["MonkeyKing"].Name)

	skins, err := c.ChampionSkins(ctx, version, "Ahri")
	require.NoError(t, err)
	require.Len(t, skins, 2)
	assert.Equal(t, Skin{ID: "103001", Num: 1, Name: "Dynasty Ahri"}, skins[1])

	splash, err := c.Splash(ctx, "Ahri", 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, splash)
}

func TestClient_Errors(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL))
	ctx := context.Background()

	_, err := c.ChampionSkins(ctx, "14.20.1", "Zed")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsRetryable(err))

	_, err = c.Splash(ctx, "Ahri", 9)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "2s", apiErr.RetryAfter.String())
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.True(t, IsRetryable(errors.New("connection reset")))
	assert.True(t, IsRetryable(&APIError{StatusCode: http.StatusBadGateway}))
	assert.False(t, IsRetryable(&APIError{StatusCode: http.StatusForbidden}))
}

func TestClient_CancelledContext(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Versions(ctx)
	assert.Error(t, err)
}

func TestClient_RateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `["14.20.1"]`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0.1, 1))

	_, err := c.Versions(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Versions(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load(), "the limited request never reached the server")
}
