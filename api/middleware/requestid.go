package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/irsalhamdi/prep-center/api/web"
)

const RequestIDHeader = "X-Request-Id"

const maxRequestIDLen = 128

type reqIDKey struct{}

// RequestID tags the context with the caller's X-Request-Id, or a fresh UUID, and echoes it back on
// the response. Forwarded ids lose control characters and are cut to 128 bytes.
func RequestID() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			id := sanitizeRequestID(r.Header.Get(RequestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, id)
			return handler(context.WithValue(ctx, reqIDKey{}, id), w, r)
		}
		return h
	}
	return m
}

func sanitizeRequestID(id string) string {
	id = strings.Map(func(r rune) rune {
		if r < 0x21 || r > 0x7e {
			return -1
		}
		return r
	}, id)

	if len(id) > maxRequestIDLen {
		id = id[:maxRequestIDLen]
	}
	return id
}

func ContextRequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey{}).(string)
	return id
}
