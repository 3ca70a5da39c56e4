package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/irsalhamdi/prep-center/database"
	"github.com/jmoiron/sqlx"
)

type healthResponse struct {
	Status string `json:"status"`
}

func handleHealth(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := database.StatusCheck(ctx, db); err != nil {
			return fmt.Errorf("database not ready: %w", err)
		}

		return web.Respond(ctx, w, healthResponse{Status: "ok"}, http.StatusOK)
	}
}
