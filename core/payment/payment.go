package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	Pending   Status = "pending"
	Completed Status = "completed"
	Expired   Status = "expired"
)

type Provider string

const (
	Stripe Provider = "stripe"
	Paypal Provider = "paypal"
)

type Payment struct {
	ID        string          `json:"id" db:"payment_id"`
	CourseID  string          `json:"courseId" db:"course_id"`
	Email     string          `json:"email" db:"email"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Currency  string          `json:"currency" db:"currency"`
	Status    Status          `json:"status" db:"status"`
	Provider  Provider        `json:"provider" db:"provider"`
	SessionID string          `json:"sessionId" db:"session_id"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

type Checkout struct {
	CourseID string `json:"courseId" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

type StatusUp struct {
	SessionID string    `db:"session_id"`
	Status    Status    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
