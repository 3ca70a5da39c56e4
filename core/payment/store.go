package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/prep-center/database"
	"github.com/jmoiron/sqlx"
)

const columns = `payment_id, course_id, email, amount, currency, status, provider, session_id, created_at, updated_at`

func Create(ctx context.Context, db sqlx.ExtContext, p Payment) error {
	const q = `
	INSERT INTO payments
		(payment_id, course_id, email, amount, currency, status, provider, session_id, created_at, updated_at)
	VALUES
		(:payment_id, :course_id, :email, :amount, :currency, :status, :provider, :session_id, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

func FetchBySessionID(ctx context.Context, db sqlx.ExtContext, sessionID string) (Payment, error) {
	in := struct {
		SessionID string `db:"session_id"`
	}{
		SessionID: sessionID,
	}

	const q = `SELECT ` + columns + ` FROM payments WHERE session_id = :session_id`

	var p Payment
	if err := database.NamedQueryStruct(ctx, db, q, in, &p); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Payment{}, database.ErrDBNotFound
		}
		return Payment{}, fmt.Errorf("selecting payment of session[%s]: %w", sessionID, err)
	}
	return p, nil
}

// UpdateStatus moves the payment of up.SessionID to up.Status unless it already has that status or
// is completed. It reports how many rows changed.
func UpdateStatus(ctx context.Context, db sqlx.ExtContext, up StatusUp) (int64, error) {
	const q = `
	UPDATE
		payments
	SET
		status = :status,
		updated_at = :updated_at
	WHERE
		session_id = :session_id AND
		status <> :status AND
		status <> 'completed'`

	n, err := database.NamedExecAffected(ctx, db, q, up)
	if err != nil {
		return 0, fmt.Errorf("updating status of session[%s]: %w", up.SessionID, err)
	}
	return n, nil
}

func ExpireStale(ctx context.Context, db sqlx.ExtContext, before time.Time, now time.Time) (int64, error) {
	in := struct {
		Before    time.Time `db:"before"`
		UpdatedAt time.Time `db:"updated_at"`
	}{
		Before:    before,
		UpdatedAt: now,
	}

	const q = `
	UPDATE
		payments
	SET
		status = 'expired',
		updated_at = :updated_at
	WHERE
		status = 'pending' AND
		created_at < :before`

	n, err := database.NamedExecAffected(ctx, db, q, in)
	if err != nil {
		return 0, fmt.Errorf("expiring payments pending since %s: %w", before.Format(time.RFC3339), err)
	}
	return n, nil
}
