package user

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/irsalhamdi/prep-center/api/weberr"
	"github.com/irsalhamdi/prep-center/core/claims"
	"github.com/irsalhamdi/prep-center/database"
	"github.com/irsalhamdi/prep-center/validate"
	"github.com/jmoiron/sqlx"
)

const MaxPhotoSize = 5 << 20

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type PhotoStore interface {
	Save(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
}

func current(ctx context.Context, db sqlx.ExtContext) (User, error) {
	clm, err := claims.Get(ctx)
	if err != nil {
		return User{}, weberr.NotAuthorized(err)
	}

	u, err := Fetch(ctx, db, clm.UserID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return User{}, weberr.NotAuthorized(fmt.Errorf("user[%s] in session no longer exists", clm.UserID))
		}
		return User{}, fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
	}
	return u, nil
}

func HandleShowProfile(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := current(ctx, db)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, profileResponse{Profile: u}, http.StatusOK)
	}
}

func HandleUpdateProfile(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var up ProfileUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.BadRequest(fmt.Errorf("invalid profile data: %w", err))
		}

		u, err := current(ctx, db)
		if err != nil {
			return err
		}

		if up.FirstName != nil {
			u.FirstName = optional(*up.FirstName)
		}
		if up.LastName != nil {
			u.LastName = optional(*up.LastName)
		}
		if up.Phone != nil {
			u.Phone = optional(*up.Phone)
		}
		u.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, u); err != nil {
			return fmt.Errorf("updating profile of user[%s]: %w", u.ID, err)
		}

		return web.Respond(ctx, w, profileResponse{Profile: u}, http.StatusOK)
	}
}

func HandleUpdatePhoto(db *sqlx.DB, photos PhotoStore) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := current(ctx, db)
		if err != nil {
			return err
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxPhotoSize+1<<20)
		if err := r.ParseMultipartForm(MaxPhotoSize); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to read upload: %w", err))
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("photo")
		if err != nil {
			return weberr.BadRequest(errors.New("photo is a required field"))
		}
		defer file.Close()

		if header.Size > MaxPhotoSize {
			return weberr.BadRequest(fmt.Errorf("photo exceeds the %d MB limit", MaxPhotoSize>>20))
		}

		head := make([]byte, 512)
		n, err := io.ReadFull(file, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			return weberr.BadRequest(fmt.Errorf("unable to read photo: %w", err))
		}
		head = head[:n]

		contentType := http.DetectContentType(head)
		ext, ok := photoExtensions[contentType]
		if !ok {
			return weberr.BadRequest(fmt.Errorf("photo must be a jpeg, png, gif or webp image, got %s", contentType))
		}

		key := "avatars/" + validate.GenerateID() + ext
		url, err := photos.Save(ctx, key, contentType, io.MultiReader(bytes.NewReader(head), file))
		if err != nil {
			return fmt.Errorf("storing photo of user[%s]: %w", u.ID, err)
		}

		u.AvatarURL = &url
		u.UpdatedAt = time.Now().UTC()
		if err := Update(ctx, db, u); err != nil {
			return fmt.Errorf("updating photo of user[%s]: %w", u.ID, err)
		}

		return web.Respond(ctx, w, photoResponse{PhotoURL: url}, http.StatusOK)
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
