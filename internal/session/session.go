// Package session holds the dashboard's explicit refresh state: cached
// zone data, the auto-refresh clock, and the consecutive-failure counter
// that turns auto-refresh off rather than hammering a failing source.
package session

import (
	"sync"
	"time"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/logging"
	"github.com/templecast/templecast/internal/simulation"
)

// Defaults applied when the dashboard config leaves fields zero
const (
	DefaultRefreshInterval = 5 * time.Second
	DefaultMaxFailures     = 3
)

// Generator produces zone data. On failure it may still return usable
// fallback data alongside the error.
type Generator interface {
	GenerateAll() ([]simulation.ZoneData, error)
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Zones        []simulation.ZoneData `json:"zones"`
	LastRefresh  time.Time             `json:"last_refresh"`
	AutoRefresh  bool                  `json:"auto_refresh"`
	FailureCount int                   `json:"failure_count"`
}

// Session is the mutex-guarded dashboard state. Fiber handlers share one
// instance across concurrent requests.
type Session struct {
	mu sync.Mutex

	logger *logging.Logger
	gen    Generator

	refreshInterval time.Duration
	maxFailures     int

	zones       []simulation.ZoneData
	lastRefresh time.Time
	autoRefresh bool
	failures    int
}

// New creates a Session and populates it with an initial generation; an
// initial failure falls back to whatever data the generator could supply.
func New(logger *logging.Logger, gen Generator, cfg config.DashboardConfig) *Session {
	interval := time.Duration(cfg.RefreshInterval) * time.Second
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}

	s := &Session{
		logger:          logger,
		gen:             gen,
		refreshInterval: interval,
		maxFailures:     maxFailures,
		autoRefresh:     true,
	}

	data, err := gen.GenerateAll()
	s.zones = data
	s.lastRefresh = time.Now()
	if err != nil {
		s.failures = 1
		logger.Warn("Initial zone generation failed, serving fallback data", "error", err)
	}
	return s
}

// RefreshIfDue regenerates zone data when auto-refresh is on and the
// interval has elapsed. Returns whether a refresh ran.
func (s *Session) RefreshIfDue(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.autoRefresh {
		return false
	}
	if now.Sub(s.lastRefresh) < s.refreshInterval {
		return false
	}

	s.refreshLocked(now)
	return true
}

// ManualRefresh regenerates zone data regardless of the interval or the
// auto-refresh flag, and re-arms the failure counter first so a working
// source gets a clean slate.
func (s *Session) ManualRefresh(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = 0
	s.refreshLocked(now)
}

// refreshLocked runs one generation cycle. A failure keeps the previous
// zone data and counts toward the auto-refresh shutoff; a success resets
// the counter.
func (s *Session) refreshLocked(now time.Time) {
	data, err := s.gen.GenerateAll()
	s.lastRefresh = now

	if err != nil {
		s.failures++
		if s.zones == nil {
			s.zones = data
		}
		s.logger.Warn("Zone refresh failed, keeping previous data",
			"consecutive_failures", s.failures,
			"error", err)
		if s.autoRefresh && s.failures >= s.maxFailures {
			s.autoRefresh = false
			s.logger.Error("Auto-refresh disabled after repeated failures",
				"failures", s.failures)
		}
		return
	}

	s.zones = data
	s.failures = 0
}

// SetAutoRefresh toggles auto-refresh; enabling it resets the failure
// counter.
func (s *Session) SetAutoRefresh(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoRefresh = enabled
	if enabled {
		s.failures = 0
	}
	s.logger.Info("Auto-refresh toggled", "enabled", enabled)
}

// State returns a copy of the current session state.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	zones := make([]simulation.ZoneData, len(s.zones))
	copy(zones, s.zones)
	return Snapshot{
		Zones:        zones,
		LastRefresh:  s.lastRefresh,
		AutoRefresh:  s.autoRefresh,
		FailureCount: s.failures,
	}
}
