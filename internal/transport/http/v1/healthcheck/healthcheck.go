package healthcheck

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/transport/http/v1/response"
)

const pingTimeout = 2 * time.Second

// pinger checks that the database answers.
type pinger interface {
	Ping(ctx context.Context) error
}

// Status is the body of GET /healthcheck.
type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Healthcheck handles GET /healthcheck.
func Healthcheck(w http.ResponseWriter, r *http.Request, db pinger) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		slog.ErrorContext(r.Context(), "Health check failed", "error", err)
		response.JSON(w, r, http.StatusServiceUnavailable, Status{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})

		return
	}

	response.JSON(w, r, http.StatusOK, Status{
		Status:   "healthy",
		Database: "connected",
	})
}
