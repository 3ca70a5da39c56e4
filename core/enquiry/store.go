package enquiry

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/prep-center/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, e Enquiry) error {
	const q = `
	INSERT INTO enquiries
		(enquiry_id, name, email, subject, message, created_at)
	VALUES
		(:enquiry_id, :name, :email, :subject, :message, :created_at)`

	if err := database.NamedExecContext(ctx, db, q, e); err != nil {
		return fmt.Errorf("inserting enquiry: %w", err)
	}
	return nil
}
