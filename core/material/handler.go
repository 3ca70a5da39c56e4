package material

import (
	"context"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f := Filter{Type: web.Query(r, "type")}

		ms, err := Query(ctx, db, f)
		if err != nil {
			return fmt.Errorf("listing materials: %w", err)
		}

		return web.Respond(ctx, w, ms, http.StatusOK)
	}
}

func HandleListByCourse(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f := Filter{
			CourseID: web.Param(r, "course_id"),
			Type:     web.Query(r, "type"),
		}

		ms, err := Query(ctx, db, f)
		if err != nil {
			return fmt.Errorf("listing materials of course[%s]: %w", f.CourseID, err)
		}

		return web.Respond(ctx, w, ms, http.StatusOK)
	}
}
