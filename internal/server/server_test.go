package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(":0", Info{
		BotName:     func() string { return "voxgate_bot" },
		TokenSet:    true,
		MaxUploadMB: 50,
		TimeoutSecs: 300,
		AdminChatID: 42,
	})
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.True(t, got.BotTokenSet)
	assert.GreaterOrEqual(t, got.UptimeS, int64(0))
	assert.Contains(t, got.UptimeH, "d ")
	assert.True(t, strings.HasSuffix(got.UptimeH, "s"))
}

func TestIndexPage(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "voxgate_bot — Transcription Bot")
	assert.Contains(t, body, "max 50 MB")
	assert.Contains(t, body, "Request timeout: 300s")
	assert.Contains(t, body, "https://t.me/voxgate_bot")
	assert.NotContains(t, body, "%s")
	assert.NotContains(t, body, "%d")
}

func TestIndexPageFallbackName(t *testing.T) {
	t.Parallel()

	s := NewServer(":0", Info{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "MyBot — Transcription Bot")
}

func TestKeepaliveSVG(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/static/keepalive.svg", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Service Active")
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "0d 0h 0m 0s"},
		{d: 61 * time.Second, want: "0d 0h 1m 1s"},
		{d: 26*time.Hour + 3*time.Minute + 4*time.Second, want: "1d 2h 3m 4s"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, formatUptime(tc.d), "duration %s", tc.d)
	}
}
