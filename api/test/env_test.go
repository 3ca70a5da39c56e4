package test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/prep-center/api"
	"github.com/irsalhamdi/prep-center/api/webtest"
	"github.com/irsalhamdi/prep-center/config"
	"github.com/irsalhamdi/prep-center/core/auth"
	"github.com/irsalhamdi/prep-center/database/dbtest"
	"github.com/irsalhamdi/prep-center/rate"
	"github.com/irsalhamdi/prep-center/storage"
	"github.com/jmoiron/sqlx"
	"github.com/plutov/paypal/v4"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

const (
	webhookSecret    = "whsec_api_test"
	loginRedirectURL = "http://localhost:3000/profile"
	defaultAvatarURL = "https://via.placeholder.com/150"
)

type TestEnv struct {
	*httptest.Server
	DB       *sqlx.DB
	Stripe   *mockStripe
	Paypal   *mockPaypal
	Google   *fakeGoogle
	Sessions *auth.Sessions
}

type fakeGoogle struct {
	id auth.Identity
}

func (g *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.test/o/oauth2/auth?state=" + state
}

func (g *fakeGoogle) Exchange(ctx context.Context, code string) (auth.Identity, error) {
	if code != "google-code" {
		return auth.Identity{}, errors.New("invalid_grant")
	}
	return g.id, nil
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	db := dbtest.New(t, name)

	ms := &mockStripe{}
	stripeSrv := httptest.NewServer(ms.handle())
	t.Cleanup(stripeSrv.Close)

	mp := &mockPaypal{}
	paypalSrv := httptest.NewServer(mp.handle())
	t.Cleanup(paypalSrv.Close)

	pp, err := paypal.NewClient("client-id", "secret", paypalSrv.URL)
	if err != nil {
		return nil, fmt.Errorf("building paypal client: %w", err)
	}
	if _, err := pp.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("getting paypal token: %w", err)
	}

	strp := &stripecl.API{}
	strp.Init("sk_test_api", &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(stripeSrv.URL),
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
		}),
	})

	google := &fakeGoogle{}
	sessions := auth.NewSessions("api-test-secret", time.Hour, false)

	lim := rate.NewLimiter(1000, time.Minute, 1000)
	t.Cleanup(lim.Close)

	uploads := t.TempDir()

	mux := api.APIMux(api.APIConfig{
		Log:              webtest.Logger(),
		DB:               db,
		Sessions:         sessions,
		SessionManager:   scs.New(),
		Providers:        map[string]auth.Provider{"google": google},
		LoginRedirectURL: loginRedirectURL,
		DefaultAvatarURL: defaultAvatarURL,
		Photos:           storage.NewDisk(uploads, "/uploads/"),
		UploadsDir:       uploads,
		Paypal:           pp,
		PaypalCfg:        config.Paypal{ReturnURL: "http://localhost:3000/payment/success", CancelURL: "http://localhost:3000/payment/cancel"},
		Stripe:           strp,
		StripeCfg: config.Stripe{
			WebhookSecret: webhookSecret,
			SuccessURL:    "http://localhost:3000/payment/success",
			CancelURL:     "http://localhost:3000/payment/cancel",
		},
		Currency: "kzt",
		Limiter:  lim,
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	srv.Client().Jar = jar

	return &TestEnv{
		Server:   srv,
		DB:       db,
		Stripe:   ms,
		Paypal:   mp,
		Google:   google,
		Sessions: sessions,
	}, nil
}

// Request sends body as JSON with the env client, cookies included.
func (env *TestEnv) Request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	r, err := http.NewRequest(method, env.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Body.Close() })
	return w
}

func (env *TestEnv) expect(t *testing.T, method, path string, body any, status int, out any) {
	t.Helper()

	w := env.Request(t, method, path, body)
	if w.StatusCode != status {
		t.Fatalf("%s %s: expected status %d, got %s", method, path, status, w.Status)
	}

	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decoding response: %v", method, path, err)
		}
	}
}

func Login(srv *httptest.Server, email, password string) error {
	b, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}

	w, err := srv.Client().Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot login: status code %s", w.Status)
	}
	return nil
}

func Logout(srv *httptest.Server) error {
	w, err := srv.Client().Post(srv.URL+"/api/auth/logout", "application/json", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot logout: status code %s", w.Status)
	}
	return nil
}
