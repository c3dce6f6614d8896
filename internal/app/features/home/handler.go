package home

import (
	"net/http"

	"go.uber.org/zap"
)

// RootMessage is the body of GET /.
const RootMessage = "EventHub API is running"

// Handler serves the root ping.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		Log: logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / - plain-text liveness for humans and uptime checkers                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(RootMessage)); err != nil {
		h.Log.Debug("root: write failed", zap.Error(err))
	}
}
