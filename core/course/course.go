package course

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	ID          string          `json:"id" db:"course_id"`
	Title       string          `json:"title" db:"title"`
	Type        string          `json:"type" db:"type"`
	Description string          `json:"description" db:"description"`
	Level       string          `json:"level" db:"level"`
	Duration    string          `json:"duration" db:"duration"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}
