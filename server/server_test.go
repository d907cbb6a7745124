package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/kronos/internal/profile"
	apiv1 "github.com/hrygo/kronos/server/router/api/v1"
	"github.com/hrygo/kronos/store"
	"github.com/hrygo/kronos/store/db"
)

func newTestServer(t *testing.T, p *profile.Profile) *Server {
	t.Helper()
	p.Mode = "dev"
	p.DSN = filepath.Join(t.TempDir(), "kronos_test.db")
	require.NoError(t, p.Validate())

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))

	s, err := NewServer(context.Background(), p, st)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return s
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t, &profile.Profile{DefaultTimezone: "UTC"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dates/parse", strings.NewReader(`{"text":"2017-01-01"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp apiv1.ParseDatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "2017-01-01", resp.Matches[0].Parsed.Date)
}

func TestServer_RateLimited(t *testing.T) {
	s := newTestServer(t, &profile.Profile{DefaultTimezone: "UTC", RateLimit: 0.001, RateBurst: 1})

	codes := make([]int, 2)
	for i := range codes {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/system/metrics", nil))
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewServer_InvalidTimezone(t *testing.T) {
	p := &profile.Profile{Mode: "dev", Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "x.db"), DefaultTimezone: "Mars/Olympus"}
	_, err := NewServer(context.Background(), p, nil)
	assert.Error(t, err)
}
