// Package models defines the dashboard's HTTP response and request
// shapes.
package models

import "github.com/templecast/templecast/internal/simulation"

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ZonesResponse carries the current zone data plus session state
type ZonesResponse struct {
	Zones        []simulation.ZoneData `json:"zones"`
	LastRefresh  string                `json:"last_refresh"`
	AutoRefresh  bool                  `json:"auto_refresh"`
	FailureCount int                   `json:"failure_count"`
}

// RefreshResponse confirms a manual refresh
type RefreshResponse struct {
	Refreshed bool          `json:"refreshed"`
	Zones     ZonesResponse `json:"zones"`
}

// AutoRefreshRequest toggles auto-refresh
type AutoRefreshRequest struct {
	Enabled bool `json:"enabled"`
}

// AutoRefreshResponse reports the resulting auto-refresh state
type AutoRefreshResponse struct {
	Enabled bool `json:"enabled"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
