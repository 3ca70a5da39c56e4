package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/sirupsen/logrus"
	"github.com/zenazn/goji/web/mutil"
)

func Logger(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			start := time.Now().UTC()

			lw := mutil.WrapWriter(w)
			err := handler(ctx, lw, r)

			entry := log.WithFields(logrus.Fields{
				"req_id":     ContextRequestID(ctx),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remoteaddr": r.RemoteAddr,
				"statuscode": lw.Status(),
				"bytes":      lw.BytesWritten(),
				"since":      time.Since(start).String(),
			})

			switch {
			case lw.Status() >= http.StatusInternalServerError:
				entry.Error("request completed")
			case r.URL.Path == "/api/health":
				entry.Debug("request completed")
			default:
				entry.Info("request completed")
			}
			return err
		}
		return h
	}
	return m
}
