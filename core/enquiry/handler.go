package enquiry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/irsalhamdi/prep-center/api/weberr"
	"github.com/irsalhamdi/prep-center/validate"
	"github.com/jmoiron/sqlx"
)

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var en EnquiryNew
		if err := web.Decode(w, r, &en); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		en.Name = strings.TrimSpace(en.Name)
		en.Email = strings.TrimSpace(en.Email)
		en.Subject = strings.TrimSpace(en.Subject)
		en.Message = strings.TrimSpace(en.Message)

		if err := validate.Check(en); err != nil {
			return weberr.BadRequest(fmt.Errorf("invalid enquiry data: %w", err))
		}

		e := Enquiry{
			ID:        validate.GenerateID(),
			Name:      en.Name,
			Email:     en.Email,
			Subject:   en.Subject,
			Message:   en.Message,
			CreatedAt: time.Now().UTC(),
		}

		if err := Create(ctx, db, e); err != nil {
			return fmt.Errorf("storing enquiry from %s: %w", e.Email, err)
		}

		return web.Respond(ctx, w, e, http.StatusCreated)
	}
}
