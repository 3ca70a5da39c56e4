package material

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/prep-center/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, m Material) error {
	const q = `
	INSERT INTO materials
		(material_id, course_id, title, type, description, created_at)
	VALUES
		(:material_id, :course_id, :title, :type, :description, :created_at)`

	if err := database.NamedExecContext(ctx, db, q, m); err != nil {
		return fmt.Errorf("inserting material: %w", err)
	}
	return nil
}

func Query(ctx context.Context, db sqlx.ExtContext, f Filter) ([]Material, error) {
	const q = `
	SELECT
		material_id, course_id, title, type, description, created_at
	FROM
		materials
	WHERE
		(:course_id = '' OR CAST(course_id AS TEXT) = :course_id) AND
		(:type = '' OR type = :type)
	ORDER BY
		type, title`

	ms := make([]Material, 0)
	if err := database.NamedQuerySlice(ctx, db, q, f, &ms); err != nil {
		return nil, fmt.Errorf("selecting materials: %w", err)
	}
	return ms, nil
}

func DeleteAll(ctx context.Context, db sqlx.ExtContext) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM materials`); err != nil {
		return fmt.Errorf("deleting materials: %w", err)
	}
	return nil
}
