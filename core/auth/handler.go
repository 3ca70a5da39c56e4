package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/irsalhamdi/prep-center/api/weberr"
	"github.com/irsalhamdi/prep-center/core/user"
	"github.com/irsalhamdi/prep-center/database"
	"github.com/irsalhamdi/prep-center/random"
	"github.com/irsalhamdi/prep-center/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const oauthStateKey = "oauth_state"

type Register struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type Login struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func HandleRegister(db *sqlx.DB, sessions *Sessions, defaultAvatar string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in Register
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		in.Email = validate.NormalizeEmail(in.Email)

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		h := string(hash)

		now := time.Now().UTC()
		u := user.User{
			ID:           validate.GenerateID(),
			Email:        in.Email,
			PasswordHash: &h,
			AvatarURL:    optional(defaultAvatar),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, u); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				return weberr.BadRequest(errors.New("user already registered"))
			}
			return fmt.Errorf("registering %s: %w", in.Email, err)
		}

		if err := sessions.Issue(w, u); err != nil {
			return err
		}

		return web.Respond(ctx, w, successResponse{Success: true}, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, sessions *Sessions) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in Login
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		in.Email = validate.NormalizeEmail(in.Email)

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		u, err := user.FetchByEmail(ctx, db, in.Email)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotAuthorized(fmt.Errorf("no account for %s", in.Email))
			}
			return fmt.Errorf("fetching %s: %w", in.Email, err)
		}

		if u.PasswordHash == nil {
			return weberr.BadRequest(errors.New("user did not register with a password"))
		}

		if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(in.Password)); err != nil {
			return weberr.NotAuthorized(fmt.Errorf("wrong password for user[%s]", u.ID))
		}

		if err := sessions.Issue(w, u); err != nil {
			return err
		}

		return web.Respond(ctx, w, successResponse{Success: true}, http.StatusOK)
	}
}

func HandleLogout(sessions *Sessions) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		sessions.Clear(w)
		return web.Respond(ctx, w, messageResponse{Message: "logged out"}, http.StatusOK)
	}
}

func HandleOauthLogin(sm *scs.SessionManager, provs map[string]Provider, name string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("provider %s is not configured", name))
		}

		state, err := random.Token(32)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}
		sm.Put(ctx, oauthStateKey, state)

		return web.Redirect(ctx, w, r, prov.AuthCodeURL(state))
	}
}

// HandleOauthCallback finishes the provider round-trip. The account is found by provider subject,
// then by verified email (linking the subject to it), and created otherwise.
func HandleOauthCallback(db *sqlx.DB, sm *scs.SessionManager, sessions *Sessions, provs map[string]Provider, name, redirectURL, defaultAvatar string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("provider %s is not configured", name))
		}

		want := sm.PopString(ctx, oauthStateKey)
		if want == "" || web.Query(r, "state") != want {
			return weberr.NotAuthorized(errors.New("oauth state mismatch"))
		}

		code := web.Query(r, "code")
		if code == "" {
			return weberr.BadRequest(errors.New("code is a required parameter"))
		}

		id, err := prov.Exchange(ctx, code)
		if err != nil {
			return weberr.NotAuthorized(fmt.Errorf("%s exchange: %w", name, err))
		}

		u, err := resolveIdentity(ctx, db, id, defaultAvatar)
		if err != nil {
			return err
		}

		if err := sessions.Issue(w, u); err != nil {
			return err
		}

		return web.Redirect(ctx, w, r, redirectURL)
	}
}

func resolveIdentity(ctx context.Context, db *sqlx.DB, id Identity, defaultAvatar string) (user.User, error) {
	u, err := user.FetchByGoogleID(ctx, db, id.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, database.ErrDBNotFound) {
		return user.User{}, fmt.Errorf("fetching google user %s: %w", id.Subject, err)
	}

	email := validate.NormalizeEmail(id.Email)
	if email == "" {
		return user.User{}, weberr.BadRequest(errors.New("provider did not share an email address"))
	}

	now := time.Now().UTC()

	u, err = user.FetchByEmail(ctx, db, email)
	switch {
	case err == nil:
		if !id.Verified {
			return user.User{}, weberr.NotAuthorized(fmt.Errorf("unverified email %s matches user[%s]", email, u.ID))
		}
		u.GoogleID = &id.Subject
		u.UpdatedAt = now
		if err := user.Update(ctx, db, u); err != nil {
			return user.User{}, fmt.Errorf("linking google id to user[%s]: %w", u.ID, err)
		}
		return u, nil

	case !errors.Is(err, database.ErrDBNotFound):
		return user.User{}, fmt.Errorf("fetching %s: %w", email, err)
	}

	avatar := optional(id.Picture)
	if avatar == nil {
		avatar = optional(defaultAvatar)
	}

	u = user.User{
		ID:        validate.GenerateID(),
		Email:     email,
		GoogleID:  &id.Subject,
		AvatarURL: avatar,
		FirstName: optional(id.GivenName),
		LastName:  optional(id.FamilyName),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Create(ctx, db, u); err != nil {
		return user.User{}, fmt.Errorf("creating google user %s: %w", email, err)
	}

	return u, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// LoadAndSave loads the scs session named by the request cookie into the context and commits it
// right before the handler writes its status line, or once the handler has failed.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var token string
			if c, err := r.Cookie(sm.Cookie.Name); err == nil {
				token = c.Value
			}

			ctx, err := sm.Load(ctx, token)
			if err != nil {
				return fmt.Errorf("loading session: %w", err)
			}

			sw := &sessionWriter{ResponseWriter: w, ctx: ctx, sm: sm}
			herr := handler(ctx, sw, r.WithContext(ctx))
			if !sw.committed {
				sw.commit()
			}
			if herr != nil {
				return herr
			}
			return sw.err
		}
		return h
	}
	return m
}

type sessionWriter struct {
	http.ResponseWriter
	ctx       context.Context
	sm        *scs.SessionManager
	committed bool
	err       error
}

func (sw *sessionWriter) WriteHeader(code int) {
	if !sw.committed {
		sw.commit()
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	if !sw.committed {
		sw.commit()
	}
	return sw.ResponseWriter.Write(b)
}

func (sw *sessionWriter) commit() {
	sw.committed = true

	switch sw.sm.Status(sw.ctx) {
	case scs.Modified:
		token, expiry, err := sw.sm.Commit(sw.ctx)
		if err != nil {
			sw.err = fmt.Errorf("committing session: %w", err)
			return
		}
		http.SetCookie(sw.ResponseWriter, sw.cookie(token, expiry))

	case scs.Destroyed:
		http.SetCookie(sw.ResponseWriter, sw.cookie("", time.Unix(1, 0)))
	}
}

func (sw *sessionWriter) cookie(token string, expiry time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     sw.sm.Cookie.Name,
		Value:    token,
		Path:     sw.sm.Cookie.Path,
		Domain:   sw.sm.Cookie.Domain,
		Secure:   sw.sm.Cookie.Secure,
		HttpOnly: sw.sm.Cookie.HttpOnly,
		SameSite: sw.sm.Cookie.SameSite,
	}

	switch {
	case token == "":
		c.MaxAge = -1
		c.Expires = expiry
	case sw.sm.Cookie.Persist:
		c.Expires = time.Unix(expiry.Unix()+1, 0)
		c.MaxAge = int(time.Until(expiry).Seconds() + 1)
	}
	return c
}
