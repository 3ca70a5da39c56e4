package config

import "time"

type Config struct {
	Web      Web
	Cors     Cors
	DB       DB
	Auth     Auth
	Oauth    Oauth
	Stripe   Stripe
	Paypal   Paypal
	Payments Payments
	Storage  Storage
	Rate     Rate
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:5002"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
	UploadsDir      string        `conf:"default:./uploads"`
}

type Cors struct {
	Origin string `conf:"default:http://localhost:5002"`
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:prepcenter"`
	MaxIdleConns int    `conf:"default:2"`
	MaxOpenConns int    `conf:"default:0"`
	DisableTLS   bool   `conf:"default:true"`
}

type Auth struct {
	JWTSecret        string        `conf:"default:supersecret,mask"`
	TokenTTL         time.Duration `conf:"default:1h"`
	SecureCookie     bool          `conf:"default:false"`
	DefaultAvatarURL string        `conf:"default:https://via.placeholder.com/150"`
}

type Google struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string `conf:"default:http://localhost:5002/api/auth/google/callback"`
}

type Oauth struct {
	Google           Google
	LoginRedirectURL string        `conf:"default:http://localhost:5002/profile"`
	DiscoveryTimeout time.Duration `conf:"default:10s"`
}

type Stripe struct {
	APISecret     string `conf:"mask"`
	WebhookSecret string `conf:"mask"`
	SuccessURL    string `conf:"default:http://localhost:5002/payment/success"`
	CancelURL     string `conf:"default:http://localhost:5002/payment/cancel"`
	APIURL        string
}

type Paypal struct {
	ClientID  string
	Secret    string `conf:"mask"`
	URL       string `conf:"default:https://api-m.sandbox.paypal.com"`
	ReturnURL string `conf:"default:http://localhost:5002/payment/success"`
	CancelURL string `conf:"default:http://localhost:5002/payment/cancel"`
}

type Payments struct {
	Currency      string        `conf:"default:kzt"`
	PendingTTL    time.Duration `conf:"default:24h"`
	SweepSchedule string        `conf:"default:@every 15m"`
}

type Storage struct {
	Bucket       string
	Region       string `conf:"default:us-east-1"`
	Endpoint     string
	AccessKey    string `conf:"mask"`
	SecretKey    string `conf:"mask"`
	UsePathStyle bool   `conf:"default:false"`
	PublicURL    string
}

type Rate struct {
	RPS    float64 `conf:"default:1"`
	Burst  int     `conf:"default:10"`
	Expiry int     `conf:"default:10"`
}
