package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/playeradmin/internal/logger"
)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.6367.91 Safari/537.36"

func TestParseUA(t *testing.T) {
	ua := ParseUA(chromeMac, "fr-CA,fr;q=0.9,en;q=0.8")
	assert.Equal(t, "Chrome", ua.Browser)
	assert.Equal(t, "124.0.6367", ua.Version)
	assert.Equal(t, "Desktop", ua.Device)
	assert.False(t, ua.IsBot)
	assert.Equal(t, "fr-ca", ua.PrimaryLang)

	bot := ParseUA("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", "")
	assert.True(t, bot.IsBot)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:4242"
	assert.Equal(t, "10.0.0.9", clientIP(r).String())

	r.Header.Set("X-Real-Ip", "192.0.2.4")
	assert.Equal(t, "192.0.2.4", clientIP(r).String())

	r.Header.Set("X-Forwarded-For", "garbage, 198.51.100.7, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", clientIP(r).String())
}

func TestNewResolver(t *testing.T) {
	rs, err := NewResolver("")
	require.NoError(t, err)
	assert.NoError(t, rs.Close())

	_, err = NewResolver("/does/not/exist.mmdb")
	assert.Error(t, err)
}

func TestMiddleware_AttachesInfoAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	rs, err := NewResolver("")
	require.NoError(t, err)

	var got *Info
	h := rs.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		logger.FromContext(r.Context()).Infow("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/players?x=1", nil)
	req.Header.Set("User-Agent", chromeMac)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "Chrome", got.UA.Browser)
	assert.Equal(t, "192.0.2.1", got.Geo.IP.String()) // httptest default RemoteAddr

	require.Equal(t, 2, logs.Len())
	access := logs.All()[1]
	assert.Equal(t, "request", access.Message)
	assert.EqualValues(t, http.StatusTeapot, access.ContextMap()["status"])
	assert.Equal(t, "/players", access.ContextMap()["path"])
}
