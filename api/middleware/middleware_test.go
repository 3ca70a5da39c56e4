package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/irsalhamdi/prep-center/api/middleware"
	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/irsalhamdi/prep-center/api/webtest"
	"github.com/irsalhamdi/prep-center/api/weberr"
	"github.com/irsalhamdi/prep-center/rate"
	"github.com/stretchr/testify/require"
)

func ok(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, map[string]string{"status": "ok"}, http.StatusOK)
}

func TestRateLimit(t *testing.T) {
	lim := rate.NewLimiter(2, time.Minute, rate.Every(time.Hour))
	t.Cleanup(lim.Close)

	do := func(addr string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = addr
		return webtest.Do(ok, r, nil, middleware.RateLimit(lim)).Code
	}

	require.Equal(t, http.StatusOK, do("192.0.2.1:4000"))
	require.Equal(t, http.StatusOK, do("192.0.2.1:4001"))
	require.Equal(t, http.StatusTooManyRequests, do("192.0.2.1:4002"))

	require.Equal(t, http.StatusOK, do("192.0.2.2:4000"), "another client has its own bucket")
}

func TestRequestID(t *testing.T) {
	var seen string
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		seen = middleware.ContextRequestID(ctx)
		return ok(ctx, w, r)
	}

	t.Run("generated", func(t *testing.T) {
		w := webtest.Do(h, httptest.NewRequest(http.MethodGet, "/", nil), nil, middleware.RequestID())
		require.NotEmpty(t, seen)
		require.Equal(t, seen, w.Header().Get(middleware.RequestIDHeader))

		first := seen
		webtest.Do(h, httptest.NewRequest(http.MethodGet, "/", nil), nil, middleware.RequestID())
		require.NotEqual(t, first, seen)
	})

	t.Run("forwarded", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(middleware.RequestIDHeader, "edge-42")
		w := webtest.Do(h, r, nil, middleware.RequestID())
		require.Equal(t, "edge-42", seen)
		require.Equal(t, "edge-42", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("sanitized", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(middleware.RequestIDHeader, "edge 42\t")
		webtest.Do(h, r, nil, middleware.RequestID())
		require.Equal(t, "edge42", seen)
	})

	t.Run("truncated", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 300))
		webtest.Do(h, r, nil, middleware.RequestID())
		require.Len(t, seen, 128)
	})
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"request error", weberr.BadRequest(errors.New("email is a required field")), http.StatusBadRequest, "email is a required field"},
		{"not found", weberr.NotFound(errors.New("course[1] not found")), http.StatusNotFound, "the resource could not be found"},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error { return tc.err }
			w := webtest.Do(h, httptest.NewRequest(http.MethodGet, "/", nil), nil)
			require.Equal(t, tc.code, w.Code)

			var got weberr.ErrorResponse
			webtest.DecodeBody(t, w, &got)
			require.Equal(t, tc.body, got.Error)
		})
	}
}

func TestPanics(t *testing.T) {
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("nil map")
	}

	w := webtest.Do(h, httptest.NewRequest(http.MethodGet, "/", nil), nil, middleware.Panics())
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var got weberr.ErrorResponse
	webtest.DecodeBody(t, w, &got)
	require.NotContains(t, got.Error, "nil map")
}
