package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/prep-center/database"
	"github.com/jmoiron/sqlx"
)

const columns = `course_id, title, type, description, level, duration, price, created_at, updated_at`

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	in := struct {
		ID string `db:"course_id"`
	}{
		ID: id,
	}

	const q = `SELECT ` + columns + ` FROM courses WHERE course_id = :course_id`

	var c Course
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Course{}, database.ErrDBNotFound
		}
		return Course{}, fmt.Errorf("selecting course[%s]: %w", id, err)
	}
	return c, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Course, error) {
	const q = `SELECT ` + columns + ` FROM courses ORDER BY title`

	cs := make([]Course, 0)
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, fmt.Errorf("selecting courses: %w", err)
	}
	return cs, nil
}

func Upsert(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, title, type, description, level, duration, price, created_at, updated_at)
	VALUES
		(:course_id, :title, :type, :description, :level, :duration, :price, :created_at, :updated_at)
	ON CONFLICT (course_id) DO UPDATE SET
		title = EXCLUDED.title,
		type = EXCLUDED.type,
		description = EXCLUDED.description,
		level = EXCLUDED.level,
		duration = EXCLUDED.duration,
		price = EXCLUDED.price,
		updated_at = EXCLUDED.updated_at`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("upserting course[%s]: %w", c.ID, err)
	}
	return nil
}
