package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/prep-center/database"
	"github.com/jmoiron/sqlx"
)

const columns = `user_id, email, password_hash, google_id, avatar_url, first_name, last_name, phone, created_at, updated_at`

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users
		(user_id, email, password_hash, google_id, avatar_url, first_name, last_name, phone, created_at, updated_at)
	VALUES
		(:user_id, :email, :password_hash, :google_id, :avatar_url, :first_name, :last_name, :phone, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, u); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return database.ErrDBDuplicatedEntry
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	UPDATE
		users
	SET
		google_id = :google_id,
		avatar_url = :avatar_url,
		first_name = :first_name,
		last_name = :last_name,
		phone = :phone,
		updated_at = :updated_at
	WHERE
		user_id = :user_id`

	n, err := database.NamedExecAffected(ctx, db, q, u)
	if err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return database.ErrDBDuplicatedEntry
		}
		return fmt.Errorf("updating user[%s]: %w", u.ID, err)
	}
	if n == 0 {
		return database.ErrDBNotFound
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	in := struct {
		ID string `db:"user_id"`
	}{
		ID: id,
	}

	const q = `SELECT ` + columns + ` FROM users WHERE user_id = :user_id`
	return fetch(ctx, db, q, in)
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	in := struct {
		Email string `db:"email"`
	}{
		Email: email,
	}

	const q = `SELECT ` + columns + ` FROM users WHERE email = :email`
	return fetch(ctx, db, q, in)
}

func FetchByGoogleID(ctx context.Context, db sqlx.ExtContext, googleID string) (User, error) {
	in := struct {
		GoogleID string `db:"google_id"`
	}{
		GoogleID: googleID,
	}

	const q = `SELECT ` + columns + ` FROM users WHERE google_id = :google_id`
	return fetch(ctx, db, q, in)
}

func fetch(ctx context.Context, db sqlx.ExtContext, q string, in any) (User, error) {
	var u User
	if err := database.NamedQueryStruct(ctx, db, q, in, &u); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return User{}, database.ErrDBNotFound
		}
		return User{}, fmt.Errorf("selecting user: %w", err)
	}
	return u, nil
}
