package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler interface {
	Check(w http.ResponseWriter, r *http.Request)
}

type healthHandlerImpl struct {
	store Pinger
}

// NewHealthHandler reports healthy when store answers a ping. A nil store
// always reports healthy.
func NewHealthHandler(store Pinger) HealthHandler {
	return &healthHandlerImpl{store: store}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Check implements HealthHandler.
func (h *healthHandlerImpl) Check(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			response.ServiceUnavailable(w, "Store unavailable")
			return
		}
	}

	response.Success(w, healthResponse{Status: "ok"})
}
