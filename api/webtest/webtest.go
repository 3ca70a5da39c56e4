package webtest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/prep-center/api/middleware"
	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func NewDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	sdb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock: %v", err)
	}

	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		sdb.Close()
	})

	return sqlx.NewDb(sdb, "postgres"), mock
}

func Do(h web.Handler, r *http.Request, vars map[string]string, mw ...web.Middleware) *httptest.ResponseRecorder {
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}

	h = web.WrapMiddleware(mw, h)
	h = middleware.Errors(Logger())(h)

	w := httptest.NewRecorder()
	_ = h(r.Context(), w, r)
	return w
}

func WithContext(r *http.Request, f func(context.Context) context.Context) *http.Request {
	return r.WithContext(f(r.Context()))
}

func DecodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body %q: %v", w.Body.String(), err)
	}
}
