package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"DeBrief/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes func(e *echo.Echo)

func (r routes) RegisterRoutes(e *echo.Echo) { r(e) }

func newTestServer() *Server {
	return NewServer(routes(func(e *echo.Echo) {
		e.GET("/boom", func(echo.Context) error { panic("kaboom") })
		e.GET("/missing", func(c echo.Context) error {
			return AppErrorResponse(c, NotFoundErrorf("%s is not on the watchlist", "MSFT"))
		})
		e.GET("/plain-error", func(c echo.Context) error {
			return AppErrorResponse(c, errors.New("disk full"))
		})
	}), WithServerLogger(logger.Nop()))
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServer_RecoversFromPanic(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_AppErrorStatus(t *testing.T) {
	s := newTestServer()

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	var env struct {
		Status int         `json:"status"`
		Data   []*AppError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusNotFound, env.Status)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "ERR_NOT_FOUND", env.Data[0].Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/plain-error", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s := newTestServer()
	assert.Equal(t, http.StatusOK, serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "debrief_http_requests_total")
}

func TestServer_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/missing", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)

	rec := serve(newTestServer(), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPatch)
}

type bindReq struct {
	Symbols string `json:"symbols" validate:"required,symbols"`
	Limit   int    `json:"limit" default:"10" validate:"lte=100"`
}

func TestReadAndValidateRequest(t *testing.T) {
	e := echo.New()
	bind := func(body string) (*bindReq, interface{}) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		r := &bindReq{}
		return r, ReadAndValidateRequest(c, r)
	}

	r, verr := bind(`{"symbols":"AAPL, brk.b ^GSPC"}`)
	require.Nil(t, verr)
	assert.Equal(t, 10, r.Limit)

	_, verr = bind(`{"symbols":"AAPL","limit":500}`)
	require.NotNil(t, verr)
	errs := verr.([]ValidationError)
	assert.Equal(t, "limit", errs[0].Field)
	assert.Equal(t, "ERR_LTE", errs[0].Code)

	_, verr = bind(`{"symbols":"not a ticker!"}`)
	require.NotNil(t, verr)
	assert.Equal(t, "ERR_SYMBOLS", verr.([]ValidationError)[0].Code)

	_, verr = bind(`{`)
	assert.NotNil(t, verr)
}

func TestClient_StatusAndDecodeErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.Error(w, "nope", http.StatusNotFound)
		case "/garbage":
			_, _ = w.Write([]byte("<html>"))
		default:
			assert.Equal(t, "DeBrief-test", r.Header.Get("User-Agent"))
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer ts.Close()

	c := NewClient(WithUserAgent("DeBrief-test"))
	ctx := context.Background()

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.SendAndParse(ctx, &RequestOptions{
		Method:      MethodGet,
		URL:         ts.URL + "/ok",
		QueryParams: map[string][]string{"interval": {"1d"}},
	}, &out))
	assert.True(t, out.OK)

	err := c.SendAndParse(ctx, &RequestOptions{Method: MethodGet, URL: ts.URL + "/missing"}, &out)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	err = c.SendAndParse(ctx, &RequestOptions{Method: MethodGet, URL: ts.URL + "/garbage"}, &out)
	assert.ErrorIs(t, err, ErrDecode)
}
