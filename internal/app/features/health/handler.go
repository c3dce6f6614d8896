package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pinger is anything that can prove the database is reachable. The
// connection manager connects on demand before pinging.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB  Pinger
	Log *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(db Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Serve handles GET /healthz.
//
// On success: 200 and
//
//	{ "status":"ok" }
//
// On DB failure: 500 and
//
//	{ "status":"error", "message":"…" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
}
