package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/irsalhamdi/prep-center/api/weberr"
	"github.com/irsalhamdi/prep-center/core/claims"
	"github.com/irsalhamdi/prep-center/core/user"
)

const CookieName = "token"

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

func (s *Sessions) Token(u user.User) (string, error) {
	now := s.now()
	tc := tokenClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tok, nil
}

func (s *Sessions) Issue(w http.ResponseWriter, u user.User) error {
	tok, err := s.Token(u)
	if err != nil {
		return err
	}

	http.SetCookie(w, s.cookie(tok, int(s.ttl/time.Second)))
	return nil
}

func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Sessions) Parse(tok string) (claims.Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(tok, &tc, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return claims.Claims{}, fmt.Errorf("parsing token: %w", err)
	}

	if tc.ExpiresAt == nil {
		return claims.Claims{}, errors.New("token carries no expiry")
	}
	if tc.Subject == "" {
		return claims.Claims{}, errors.New("token carries no subject")
	}

	return claims.Claims{UserID: tc.Subject, Email: tc.Email, Expires: tc.ExpiresAt.Time}, nil
}

func Authenticate(s *Sessions) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				return weberr.NotAuthorized(errors.New("no session cookie"))
			}

			clm, err := s.Parse(c.Value)
			if err != nil {
				return weberr.NotAuthorized(err)
			}

			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}
