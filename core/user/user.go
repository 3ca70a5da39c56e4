package user

import "time"

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	GoogleID     *string   `json:"-" db:"google_id"`
	AvatarURL    *string   `json:"photoUrl,omitempty" db:"avatar_url"`
	FirstName    *string   `json:"firstName,omitempty" db:"first_name"`
	LastName     *string   `json:"lastName,omitempty" db:"last_name"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ProfileUp carries the editable part of a profile. Nil fields are left as they are, empty
// strings clear the field.
type ProfileUp struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
}

type profileResponse struct {
	Profile User `json:"profile"`
}

type photoResponse struct {
	PhotoURL string `json:"photoUrl"`
}
