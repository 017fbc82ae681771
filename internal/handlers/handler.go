// Package handlers contains the dashboard's HTTP handlers.
package handlers

import (
	"time"

	"github.com/templecast/templecast/internal/logging"
	"github.com/templecast/templecast/internal/models"
	"github.com/templecast/templecast/internal/session"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger  *logging.Logger
	session *session.Session
	version string
	now     func() time.Time
}

// New creates a new handler instance
func New(logger *logging.Logger, sess *session.Session, version string) *Handler {
	return &Handler{
		logger:  logger,
		session: sess,
		version: version,
		now:     time.Now,
	}
}

// zonesResponse shapes the current session state for the API.
func (h *Handler) zonesResponse() models.ZonesResponse {
	state := h.session.State()
	return models.ZonesResponse{
		Zones:        state.Zones,
		LastRefresh:  state.LastRefresh.Format(time.RFC3339),
		AutoRefresh:  state.AutoRefresh,
		FailureCount: state.FailureCount,
	}
}
