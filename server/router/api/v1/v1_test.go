package v1

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/kronos/internal/profile"
	"github.com/hrygo/kronos/plugin/kronos"
	"github.com/hrygo/kronos/plugin/kronos/finalize"
	"github.com/hrygo/kronos/server/middleware"
	"github.com/hrygo/kronos/store"
	"github.com/hrygo/kronos/store/db/sqlite"
)

var fixedNow = time.Date(2020, 3, 11, 12, 16, 2, 0, time.UTC)

type testAPI struct {
	service *APIV1Service
	echo    *echo.Echo
}

func newTestAPI(t *testing.T, dateService kronos.DateService, limiter *middleware.RateLimiter) *testAPI {
	t.Helper()
	p := &profile.Profile{
		Mode:            "dev",
		Driver:          "sqlite",
		DSN:             filepath.Join(t.TempDir(), "kronos_test.db"),
		DefaultTimezone: "US/Pacific",
	}
	require.NoError(t, p.Validate())

	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	if dateService == nil {
		dateService, err = kronos.NewService(kronos.Config{
			DefaultTimezone: p.DefaultTimezone,
			Now:             func() time.Time { return fixedNow },
		})
		require.NoError(t, err)
	}

	svc := NewAPIV1Service(p, st, dateService)
	svc.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	e := echo.New()
	svc.RegisterRoutes(e, limiter)
	return &testAPI{service: svc, echo: e}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestParseDates(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	tests := []struct {
		name string
		body string
		want []finalize.Output
	}{
		{
			name: "tomorrow noon",
			body: `{"text":"tomorrow noon"}`,
			want: []finalize.Output{{DateTime: "2020-03-12 12:00:00"}},
		},
		{
			name: "profile policy",
			body: `{"text":"friday"}`,
			want: []finalize.Output{{Date: "2020-03-06"}},
		},
		{
			name: "prefer future override",
			body: `{"text":"friday","prefer_future":true}`,
			want: []finalize.Output{{Date: "2020-03-13"}},
		},
		{
			name: "interval to date",
			body: `{"text":"next week","interval_to_date":true}`,
			want: []finalize.Output{{Date: "2020-03-16"}},
		},
		{
			name: "now in request timezone",
			body: `{"text":"now","timezone":"Asia/Kolkata"}`,
			want: []finalize.Output{{DateTime: "2020-03-11 17:46:02+05:30"}},
		},
		{
			name: "invalid date is local",
			body: `{"text":"2015-13-12"}`,
			want: []finalize.Output{{ParsingError: true}},
		},
		{
			name: "no phrases",
			body: `{"text":"lorem ipsum"}`,
			want: []finalize.Output{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/dates/parse", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

			resp := decode[ParseDatesResponse](t, rec)
			got := make([]finalize.Output, len(resp.Matches))
			for i, m := range resp.Matches {
				got[i] = m.Parsed
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDates_Spans(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/dates/parse", `{"text":"I need the report now, by tomorrow noon, or next week"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ParseDatesResponse](t, rec)
	require.Len(t, resp.Matches, 3)
	assert.Equal(t, "now", resp.Matches[0].Text)
	assert.Equal(t, 18, resp.Matches[0].Start)
	assert.Equal(t, 21, resp.Matches[0].End)
	assert.Equal(t, "2020-03-11 05:16:02-07:00", resp.Matches[0].Parsed.DateTime)
	assert.Equal(t, &finalize.Interval{Start: "2020-03-16", End: "2020-03-22"}, resp.Matches[2].Parsed.Interval)
}

func TestParseDates_Errors(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty text", `{"text":"  "}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"malformed body", `{"text":`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"text too long", `{"text":"` + strings.Repeat("a", MaxTextLength+1) + `"}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown timezone", `{"text":"tomorrow","timezone":"Mars/Olympus"}`, http.StatusBadRequest, "INVALID_TIMEZONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/dates/parse", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestParseDates_ServiceFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
		{"canceled", errors.Wrap(context.Canceled, "scan"), http.StatusRequestTimeout, "CONTEXT_CANCELED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := kronos.NewMockDateService()
			mock.Err = tt.err
			api := newTestAPI(t, mock, nil)

			rec := api.do(t, http.MethodPost, "/api/v1/dates/parse", `{"text":"tomorrow"}`)
			assert.Equal(t, tt.status, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotContains(t, resp.Message, "boom")
			assert.Equal(t, []string{"Parse"}, mock.Calls())
		})
	}
}

func TestBatchParseDates(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/dates/parse/batch",
		`{"texts":["tomorrow","next week","lorem ipsum","friday"],"prefer_future":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[BatchParseDatesResponse](t, rec)
	require.Len(t, resp.Results, 4)
	require.Len(t, resp.Results[0].Matches, 1)
	assert.Equal(t, "2020-03-12", resp.Results[0].Matches[0].Parsed.Date)
	require.Len(t, resp.Results[1].Matches, 1)
	assert.Equal(t, "2020-03-16", resp.Results[1].Matches[0].Parsed.Interval.Start)
	assert.Empty(t, resp.Results[2].Matches)
	require.Len(t, resp.Results[3].Matches, 1)
	assert.Equal(t, "2020-03-13", resp.Results[3].Matches[0].Parsed.Date)
}

func TestBatchParseDates_Errors(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"no texts", `{"texts":[]}`, "INVALID_ARGUMENT"},
		{"blank text", `{"texts":["tomorrow",""]}`, "INVALID_ARGUMENT"},
		{"too many texts", `{"texts":[` + strings.TrimSuffix(strings.Repeat(`"today",`, MaxBatchSize+1), ",") + `]}`, "INVALID_ARGUMENT"},
		{"unknown timezone", `{"texts":["today"],"timezone":"Mars/Olympus"}`, "INVALID_TIMEZONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/dates/parse/batch", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestPendingResolution_CreateThenFinalize(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/dates/resolutions", `{"text":"I need the report now, by tomorrow noon, or next week"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[PendingResolutionResponse](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 3, created.Spans)
	assert.Equal(t, "2020-03-11T12:16:02Z", created.Reference)

	tests := []struct {
		name string
		body string
		now  string
		last finalize.Output
	}{
		{"default timezone", `{}`, "2020-03-11 05:16:02-07:00", finalize.Output{Interval: &finalize.Interval{Start: "2020-03-16", End: "2020-03-22"}}},
		{"caller timezone", `{"timezone":"Asia/Kolkata","interval_to_date":true}`, "2020-03-11 17:46:02+05:30", finalize.Output{Date: "2020-03-16"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/dates/resolutions/"+created.ID+"/finalize", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			resp := decode[ParseDatesResponse](t, rec)
			require.Len(t, resp.Matches, 3)
			assert.Equal(t, tt.now, resp.Matches[0].Parsed.DateTime)
			assert.Equal(t, "2020-03-12 12:00:00", resp.Matches[1].Parsed.DateTime)
			assert.Equal(t, tt.last, resp.Matches[2].Parsed)
		})
	}
}

func TestPendingResolution_Errors(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/dates/resolutions/missing/finalize", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[ErrorResponse](t, rec).Code)

	rec = api.do(t, http.MethodPost, "/api/v1/dates/resolutions", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/dates/resolutions", `{"text":"tomorrow"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[PendingResolutionResponse](t, rec).ID

	rec = api.do(t, http.MethodPost, "/api/v1/dates/resolutions/"+id+"/finalize", `{"timezone":"Mars/Olympus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_TIMEZONE", decode[ErrorResponse](t, rec).Code)
}

func TestGetMetrics(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/dates/parse", `{"text":"tomorrow or 2015-13-12"}`).Code)
	require.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/v1/dates/parse", `{"text":"today","timezone":"Mars/Olympus"}`).Code)

	rec := api.do(t, http.MethodGet, "/api/v1/system/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["request_total"])
	assert.EqualValues(t, 1, body["request_failed"])
	assert.EqualValues(t, 2, body["match_total"])
	assert.EqualValues(t, 1, body["parsing_errors"])
	assert.EqualValues(t, 50, body["success_rate"])

	scanCache, ok := body["scan_cache"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, scanCache["misses"])
	assert.EqualValues(t, 1, scanCache["size"])
}

func TestRateLimit(t *testing.T) {
	api := newTestAPI(t, nil, middleware.NewRateLimiter(0.001, 1))

	rec := api.do(t, http.MethodPost, "/api/v1/dates/parse", `{"text":"today"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/dates/parse", `{"text":"today"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
