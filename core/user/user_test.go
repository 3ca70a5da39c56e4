package user

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/irsalhamdi/prep-center/api/webtest"
	"github.com/irsalhamdi/prep-center/core/claims"
	"github.com/stretchr/testify/require"
)

const userID = "5a1d7c1e-2f3b-4c5d-8e9f-0a1b2c3d4e5f"

var userColumns = []string{"user_id", "email", "password_hash", "google_id", "avatar_url", "first_name", "last_name", "phone", "created_at", "updated_at"}

func userRow(first any) *sqlmock.Rows {
	now := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(userColumns).
		AddRow(userID, "student@example.kz", "$2a$10$hash", nil, "https://via.placeholder.com/150", first, nil, nil, now, now)
}

func authed(r *http.Request) *http.Request {
	return webtest.WithContext(r, func(ctx context.Context) context.Context {
		return claims.Set(ctx, claims.Claims{UserID: userID, Email: "student@example.kz"})
	})
}

const selectUser = `SELECT .* FROM users WHERE user_id = \$1`

func TestHandleShowProfile(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		db, _ := webtest.NewDB(t)

		r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		w := webtest.Do(HandleShowProfile(db), r, nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logged in", func(t *testing.T) {
		db, mock := webtest.NewDB(t)
		mock.ExpectQuery(selectUser).WithArgs(userID).WillReturnRows(userRow("Aruzhan"))

		r := authed(httptest.NewRequest(http.MethodGet, "/api/profile", nil))
		w := webtest.Do(HandleShowProfile(db), r, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got struct {
			Profile map[string]any `json:"profile"`
		}
		webtest.DecodeBody(t, w, &got)
		require.Equal(t, userID, got.Profile["id"])
		require.Equal(t, "student@example.kz", got.Profile["email"])
		require.Equal(t, "Aruzhan", got.Profile["firstName"])
		require.Equal(t, "https://via.placeholder.com/150", got.Profile["photoUrl"])
		require.NotContains(t, got.Profile, "passwordHash")
		require.NotContains(t, got.Profile, "lastName")
	})

	t.Run("account gone", func(t *testing.T) {
		db, mock := webtest.NewDB(t)
		mock.ExpectQuery(selectUser).WithArgs(userID).WillReturnRows(sqlmock.NewRows(userColumns))

		r := authed(httptest.NewRequest(http.MethodGet, "/api/profile", nil))
		w := webtest.Do(HandleShowProfile(db), r, nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleUpdateProfile(t *testing.T) {
	db, mock := webtest.NewDB(t)
	mock.ExpectQuery(selectUser).WithArgs(userID).WillReturnRows(userRow("Aruzhan"))
	mock.ExpectExec(`UPDATE users SET`).
		WithArgs(nil, "https://via.placeholder.com/150", nil, "Seitkali", "+7 701 000 0000", sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"id":"ignored","firstName":"  ","lastName":"Seitkali","phone":"+7 701 000 0000"}`
	r := authed(httptest.NewRequest(http.MethodPut, "/api/profile/general", strings.NewReader(body)))
	w := webtest.Do(HandleUpdateProfile(db), r, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Profile map[string]any `json:"profile"`
	}
	webtest.DecodeBody(t, w, &got)
	require.Equal(t, "Seitkali", got.Profile["lastName"])
	require.NotContains(t, got.Profile, "firstName")
}

func TestHandleUpdateProfileInvalid(t *testing.T) {
	db, _ := webtest.NewDB(t)

	body := `{"phone":"` + strings.Repeat("7", 40) + `"}`
	r := authed(httptest.NewRequest(http.MethodPut, "/api/profile/general", strings.NewReader(body)))
	w := webtest.Do(HandleUpdateProfile(db), r, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

type memPhotos struct {
	key         string
	contentType string
	data        []byte
}

func (m *memPhotos) Save(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.key, m.contentType, m.data = key, contentType, b
	return "/uploads/" + key, nil
}

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "me.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHandleUpdatePhoto(t *testing.T) {
	db, mock := webtest.NewDB(t)
	mock.ExpectQuery(selectUser).WithArgs(userID).WillReturnRows(userRow(nil))
	mock.ExpectExec(`UPDATE users SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	body, ct := multipartBody(t, "photo", pngHeader)
	r := authed(httptest.NewRequest(http.MethodPut, "/api/profile/photo", body))
	r.Header.Set("Content-Type", ct)

	photos := &memPhotos{}
	w := webtest.Do(HandleUpdatePhoto(db, photos), r, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "image/png", photos.contentType)
	require.Equal(t, pngHeader, photos.data)
	require.True(t, strings.HasPrefix(photos.key, "avatars/"))
	require.True(t, strings.HasSuffix(photos.key, ".png"))

	var got photoResponse
	webtest.DecodeBody(t, w, &got)
	require.Equal(t, "/uploads/"+photos.key, got.PhotoURL)
}

func TestHandleUpdatePhotoRejectsNonImages(t *testing.T) {
	db, mock := webtest.NewDB(t)
	mock.ExpectQuery(selectUser).WithArgs(userID).WillReturnRows(userRow(nil))

	body, ct := multipartBody(t, "photo", []byte("#!/bin/sh\necho hi\n"))
	r := authed(httptest.NewRequest(http.MethodPut, "/api/profile/photo", body))
	r.Header.Set("Content-Type", ct)

	photos := &memPhotos{}
	w := webtest.Do(HandleUpdatePhoto(db, photos), r, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, photos.key)
}

func TestHandleUpdatePhotoMissingField(t *testing.T) {
	db, mock := webtest.NewDB(t)
	mock.ExpectQuery(selectUser).WithArgs(userID).WillReturnRows(userRow(nil))

	body, ct := multipartBody(t, "avatar", pngHeader)
	r := authed(httptest.NewRequest(http.MethodPut, "/api/profile/photo", body))
	r.Header.Set("Content-Type", ct)

	w := webtest.Do(HandleUpdatePhoto(db, &memPhotos{}), r, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
