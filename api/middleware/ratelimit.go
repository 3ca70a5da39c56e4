package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/irsalhamdi/prep-center/api/weberr"
	"github.com/irsalhamdi/prep-center/rate"
)

func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !lim.Check(clientIP(r)) {
				return weberr.TooManyRequests(errors.New("rate limit exceeded"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
