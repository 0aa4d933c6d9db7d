package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/jbeeko/contacts-worker/internal/config"
	"github.com/jbeeko/contacts-worker/internal/errs"
	"github.com/jbeeko/contacts-worker/internal/kv"
	"github.com/jbeeko/contacts-worker/internal/server"
	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(buf *bytes.Buffer) *server.Server {
	cfg := config.Default()
	cfg.Server.BodyLimit = "16B"
	logger := zerolog.New(buf)
	return server.NewWithStore(cfg, &logger, kv.NewMemoryStore())
}

func newEcho(s *server.Server) *echo.Echo {
	m := NewMiddlewares(s)

	e := echo.New()
	e.HTTPErrorHandler = m.Global.GlobalErrorHandler
	e.Use(
		RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		m.Global.Recover(),
		m.Global.BodyLimit(),
	)
	return e
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var e errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newEcho(newTestServer(&buf))
	e.GET("/ping", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from core")
		return c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"message":"from core"`)
	assert.Contains(t, buf.String(), `"request_id":"abc-123"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36, "generated ids are UUIDs")
}

func TestRequestID_ReplacesMalformedIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newEcho(newTestServer(&buf))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	for _, id := range []string{
		"line\nbreak",
		"spaces are not allowed",
		`{"json":1}`,
		strings.Repeat("a", 129),
	} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, id)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		got := rec.Header().Get(RequestIDHeader)
		assert.NotEqual(t, id, got)
		assert.Len(t, got, 36, "replaced by a UUID for %q", id)
		assert.Equal(t, got, rec.Body.String())
	}

	assert.True(t, validRequestID("trace-01.abc_DEF:9"))
	assert.True(t, validRequestID(strings.Repeat("a", 128)))
}

func TestTracing_TransactionName(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := newTestServer(&buf)
	s.Config.Contacts.MountPath = "api/v1/contacts"
	tm := NewTracingMiddleware(s, nil)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/v1/contacts", "GET /api/v1/contacts"},
		{http.MethodPost, "/API/v1/contacts/", "POST /api/v1/contacts"},
		{http.MethodPut, "/api/v1/contacts/42", "PUT /api/v1/contacts/{id}"},
		{http.MethodGet, "/api/v1/contacts/42/extra", "GET (unrouted)"},
		{http.MethodGet, "/api/v1", "GET (unrouted)"},
		{http.MethodDelete, "/other/42", "DELETE (unrouted)"},
		{"BREW", "/api/v1/contacts", "UNDEFINED /api/v1/contacts"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tm.transactionName(tt.method, tt.path), "%s %s", tt.method, tt.path)
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"http error", errs.NewNotFoundError("contact 42 not found", false, nil), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped http error", pkgerrors.Wrap(errs.NewNoHandlerError(), "ctx"), http.StatusBadRequest, errs.CodeNoHandler},
		{"backend failure", pkgerrors.New("dial tcp: connection refused"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"echo not found", echo.ErrNotFound, http.StatusBadRequest, errs.CodeNoHandler},
		{"echo method not allowed", echo.ErrMethodNotAllowed, http.StatusBadRequest, errs.CodeNoHandler},
		{"echo too large", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "REQUEST_ENTITY_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			e := newEcho(newTestServer(&buf))
			e.GET("/fail", func(echo.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decode(t, rec)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.Equal(t, tt.wantStatus, env.Status)
			assert.Contains(t, buf.String(), `"status":`+strconv.Itoa(tt.wantStatus))
		})
	}
}

func TestGlobalErrorHandler_HidesBackendDetails(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newEcho(newTestServer(&buf))
	e.GET("/fail", func(echo.Context) error { return pkgerrors.New("password=hunter2") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Contains(t, buf.String(), "hunter2", "the real error is logged")
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newEcho(newTestServer(&buf))
	e.GET("/panic", func(echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "recovered from panic")
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newEcho(newTestServer(&buf))
	e.POST("/echo", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
