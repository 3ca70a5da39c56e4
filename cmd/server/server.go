package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/prep-center/api"
	"github.com/irsalhamdi/prep-center/config"
	"github.com/irsalhamdi/prep-center/core/auth"
	"github.com/irsalhamdi/prep-center/core/payment"
	"github.com/irsalhamdi/prep-center/core/user"
	"github.com/irsalhamdi/prep-center/database"
	"github.com/irsalhamdi/prep-center/rate"
	"github.com/irsalhamdi/prep-center/storage"
	"github.com/joho/godotenv"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	const prefix = "PREPCENTER"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	sessionManager := scs.New()
	sessionManager.Lifetime = 15 * time.Minute
	sessionManager.Cookie.Name = "oauth_session"
	sessionManager.Cookie.Secure = cfg.Auth.SecureCookie
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	sessions := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.SecureCookie)

	photos, err := photoStore(context.Background(), cfg)
	if err != nil {
		return err
	}

	var pp *paypal.Client
	if cfg.Paypal.ClientID != "" {
		pp, err = paypal.NewClient(
			cfg.Paypal.ClientID,
			cfg.Paypal.Secret,
			cfg.Paypal.URL,
		)
		if err != nil {
			return fmt.Errorf("failed to build the paypal client: %w", err)
		}

		if _, err = pp.GetAccessToken(context.TODO()); err != nil {
			return fmt.Errorf("failed to get the first paypal access token: %w", err)
		}
	} else {
		logger.Warn("paypal client id not set, paypal checkout disabled")
	}

	var backends *stripe.Backends
	if cfg.Stripe.APIURL != "" {
		backends = &stripe.Backends{
			API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{URL: stripe.String(cfg.Stripe.APIURL)}),
		}
	}
	strp := &stripecl.API{}
	strp.Init(cfg.Stripe.APISecret, backends)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Oauth.DiscoveryTimeout)
	defer cancel()
	google := cfg.Oauth.Google
	oauthProvs, err := auth.MakeProviders(ctx, []auth.ProviderConfig{
		{Name: "google", Client: google.Client, Secret: google.Secret, URL: google.URL, RedirectURL: google.RedirectURL},
	})
	if err != nil {
		return fmt.Errorf("failed to discover oauth providers: %w", err)
	}
	if len(oauthProvs) == 0 {
		logger.Warn("google client id not set, google login disabled")
	}

	limiter := rate.NewLimiter(cfg.Rate.Burst, time.Duration(cfg.Rate.Expiry)*time.Minute, cfg.Rate.RPS)
	defer limiter.Close()

	sweeper := payment.NewSweeper(logger, db, cfg.Payments.PendingTTL)
	if err := sweeper.Start(cfg.Payments.SweepSchedule); err != nil {
		return err
	}

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:       cfg.Cors.Origin,
		Log:              logger,
		DB:               db,
		Sessions:         sessions,
		SessionManager:   sessionManager,
		Providers:        oauthProvs,
		LoginRedirectURL: cfg.Oauth.LoginRedirectURL,
		DefaultAvatarURL: cfg.Auth.DefaultAvatarURL,
		Photos:           photos,
		UploadsDir:       cfg.Web.UploadsDir,
		Paypal:           pp,
		PaypalCfg:        cfg.Paypal,
		Stripe:           strp,
		StripeCfg:        cfg.Stripe,
		Currency:         cfg.Payments.Currency,
		Limiter:          limiter,
	})

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	return serve(logger, &api, sweeper, shutdown, cfg.Web.ShutdownTimeout)
}

type stopper interface {
	Stop(ctx context.Context) error
}

func serve(logger logrus.FieldLogger, api *http.Server, jobs stopper, shutdown <-chan os.Signal, timeout time.Duration) (err error) {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if serr := jobs.Stop(ctx); serr != nil && err == nil {
			err = fmt.Errorf("could not complete the running payment sweep: %w", serr)
		}
	}()

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}

func photoStore(ctx context.Context, cfg config.Config) (user.PhotoStore, error) {
	if cfg.Storage.Bucket != "" {
		s, err := storage.NewS3(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to build the s3 photo store: %w", err)
		}
		return s, nil
	}

	return storage.NewDisk(cfg.Web.UploadsDir, "/uploads/"), nil
}
