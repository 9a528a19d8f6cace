package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/portrait/internal/gatekeeper"
	"github.com/timmy/portrait/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		config CORSConfig
		want   bool
	}{
		{name: "allow all", origin: "https://a.com", config: CORSConfig{AllowAllOrigins: true}, want: true},
		{name: "listed", origin: "https://A.com", config: CORSConfig{AllowedOrigins: []string{"https://a.com"}}, want: true},
		{name: "wildcard entry", origin: "https://b.com", config: CORSConfig{AllowedOrigins: []string{"*"}}, want: true},
		{name: "not listed", origin: "https://b.com", config: CORSConfig{AllowedOrigins: []string{"https://a.com"}}, want: false},
		{name: "empty list", origin: "https://b.com", config: CORSConfig{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOriginAllowed(tt.origin, tt.config))
		})
	}
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS(CORSConfig{AllowedOrigins: []string{"https://a.com"}}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://a.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://a.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestLoggerMiddlewareInjectsFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", ServiceName: "test", Writer: &buf})

	r := gin.New()
	r.Use(LoggerMiddleware(log))
	var caller, requestID string
	r.GET("/x", func(c *gin.Context) {
		caller = GetCaller(c)
		requestID = logger.GetRequestID(c.Request.Context())
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/x?a=1", nil)
	req.RemoteAddr = "198.51.100.4:5000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, gatekeeper.HashCaller("198.51.100.4"), caller)
	assert.Equal(t, w.Header().Get("X-Request-ID"), requestID)
	assert.NotContains(t, buf.String(), "198.51.100.4")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var last map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, "warning", last["level"])
	assert.Equal(t, float64(http.StatusTeapot), last[logger.FieldStatus])
	assert.Equal(t, caller, last[logger.FieldCaller])
	assert.Contains(t, last["message"], "path=/x?a=1")
}

func TestGetLoggerCarriesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "error", Format: "json", Writer: &buf})

	r := gin.New()
	r.Use(LoggerMiddleware(log))
	r.GET("/x", func(c *gin.Context) {
		GetLogger(c).Error("handler failed")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.Split(strings.TrimSpace(buf.String()), "\n")[0]), &line))
	assert.Equal(t, "handler failed", line["message"])
	assert.Equal(t, w.Header().Get("X-Request-ID"), line[logger.FieldRequestID])
	assert.Equal(t, "api", line[logger.FieldComponent])
}

func TestLoggerMiddlewareKeepsValidRequestID(t *testing.T) {
	log := logger.New(&logger.Config{Level: "error", Writer: &bytes.Buffer{}})
	r := gin.New()
	r.Use(LoggerMiddleware(log))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	id := "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get("X-Request-ID"))
}

func TestRecoverReturns500(t *testing.T) {
	r := gin.New()
	r.Use(Recover())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}
