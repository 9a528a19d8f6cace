package entropy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/portrait/internal/config"
)

func TestLocalSaltIsRandom(t *testing.T) {
	a, err := Local{}.Salt(context.Background())
	require.NoError(t, err)
	b, err := Local{}.Salt(context.Background())
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestRemoteSalt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  abc|123-XYZ\n"))
	}))
	defer srv.Close()

	r := NewRemote(&RemoteConfig{URL: srv.URL, Timeout: time.Second})
	token, err := r.Salt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123XYZ", token)
}

func TestRemoteSaltFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{name: "empty body", handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("|||")) }},
		{name: "timeout", handler: func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			w.Write([]byte("late"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := NewRemote(&RemoteConfig{URL: srv.URL, Timeout: 100 * time.Millisecond})
			token, err := r.Salt(context.Background())
			require.NoError(t, err)
			assert.Len(t, token, 32)
		})
	}
}

func TestRemoteSaltThrottled(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("remote"))
	}))
	defer srv.Close()

	r := NewRemote(&RemoteConfig{URL: srv.URL, Timeout: time.Second, RequestsPerMinute: 1})

	first, err := r.Salt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "remote", first)

	second, err := r.Salt(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "remote", second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestNew(t *testing.T) {
	assert.IsType(t, Local{}, New(&config.EntropyConfig{Source: "local"}))
	assert.IsType(t, Local{}, New(&config.EntropyConfig{Source: "remote"}))
	assert.IsType(t, &Remote{}, New(&config.EntropyConfig{Source: "remote", URL: "http://127.0.0.1:1"}))
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "abc", sanitizeToken(" a|b c "))
	assert.Equal(t, "", sanitizeToken("ñ|€"))
	long := sanitizeToken("0123456789012345678901234567890123456789012345678901234567890123456789")
	assert.Len(t, long, maxTokenLength)
}
