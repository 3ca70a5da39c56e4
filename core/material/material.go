package material

import "time"

type Material struct {
	ID          string    `json:"id" db:"material_id"`
	CourseID    string    `json:"courseId" db:"course_id"`
	Title       string    `json:"title" db:"title"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

type Filter struct {
	CourseID string `db:"course_id"`
	Type     string `db:"type"`
}
