package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/prep-center/api/middleware"
	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/irsalhamdi/prep-center/config"
	"github.com/irsalhamdi/prep-center/core/auth"
	"github.com/irsalhamdi/prep-center/core/course"
	"github.com/irsalhamdi/prep-center/core/enquiry"
	"github.com/irsalhamdi/prep-center/core/material"
	"github.com/irsalhamdi/prep-center/core/payment"
	"github.com/irsalhamdi/prep-center/core/user"
	"github.com/irsalhamdi/prep-center/rate"
	"github.com/jmoiron/sqlx"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Sessions         *auth.Sessions
	SessionManager   *scs.SessionManager
	Providers        map[string]auth.Provider
	LoginRedirectURL string
	DefaultAvatarURL string
	Photos           user.PhotoStore
	UploadsDir       string
	Paypal           *paypal.Client
	PaypalCfg        config.Paypal
	Stripe           *stripecl.API
	StripeCfg        config.Stripe
	Currency         string
	Limiter          *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Sessions)
	oauth := auth.LoadAndSave(cfg.SessionManager)

	var limit web.Middleware
	if cfg.Limiter != nil {
		limit = middleware.RateLimit(cfg.Limiter)
	}

	a.Handle(http.MethodGet, "/api/health", handleHealth(cfg.DB))

	a.Handle(http.MethodPost, "/api/auth/register", auth.HandleRegister(cfg.DB, cfg.Sessions, cfg.DefaultAvatarURL), limit)
	a.Handle(http.MethodPost, "/api/auth/login", auth.HandleLogin(cfg.DB, cfg.Sessions), limit)
	a.Handle(http.MethodPost, "/api/auth/logout", auth.HandleLogout(cfg.Sessions))
	a.Handle(http.MethodGet, "/api/auth/google", auth.HandleOauthLogin(cfg.SessionManager, cfg.Providers, "google"), limit, oauth)
	a.Handle(http.MethodGet, "/api/auth/google/callback", auth.HandleOauthCallback(cfg.DB, cfg.SessionManager, cfg.Sessions, cfg.Providers, "google", cfg.LoginRedirectURL, cfg.DefaultAvatarURL), oauth)

	a.Handle(http.MethodGet, "/api/profile", user.HandleShowProfile(cfg.DB), authen)
	a.Handle(http.MethodPut, "/api/profile/general", user.HandleUpdateProfile(cfg.DB), authen)
	a.Handle(http.MethodPut, "/api/profile/photo", user.HandleUpdatePhoto(cfg.DB, cfg.Photos), authen)

	a.Handle(http.MethodGet, "/api/courses/{id}", course.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/api/courses", course.HandleList(cfg.DB))

	a.Handle(http.MethodGet, "/api/materials/{course_id}", material.HandleListByCourse(cfg.DB))
	a.Handle(http.MethodGet, "/api/materials", material.HandleList(cfg.DB))

	a.Handle(http.MethodPost, "/api/enquiries", enquiry.HandleCreate(cfg.DB), limit)

	a.Handle(http.MethodPost, "/api/payments/create-session", payment.HandleCreateSession(cfg.DB, cfg.Stripe, cfg.StripeCfg, cfg.Currency))
	a.Handle(http.MethodPost, "/api/payments/webhook", payment.HandleStripeWebhook(cfg.DB, cfg.StripeCfg))
	if cfg.Paypal != nil {
		a.Handle(http.MethodPost, "/api/payments/paypal/orders", payment.HandlePaypalCreate(cfg.DB, cfg.Paypal, cfg.PaypalCfg, cfg.Currency))
		a.Handle(http.MethodPost, "/api/payments/paypal/orders/{id}/capture", payment.HandlePaypalCapture(cfg.DB, cfg.Paypal))
	}
	a.Handle(http.MethodGet, "/api/payments/{session_id}", payment.HandleShow(cfg.DB))

	if cfg.UploadsDir != "" {
		a.Router.PathPrefix("/uploads/").Handler(uploads(cfg.UploadsDir)).Methods(http.MethodGet, http.MethodHead)
	}

	return a.Router
}

// uploads serves the files under dir, never a directory listing.
func uploads(dir string) http.Handler {
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
