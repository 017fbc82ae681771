package session

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/logging"
	"github.com/templecast/templecast/internal/simulation"
)

// fakeGenerator returns scripted results, falling back data on failure the
// way the simulator does.
type fakeGenerator struct {
	calls int
	fail  func(call int) bool
}

func (g *fakeGenerator) GenerateAll() ([]simulation.ZoneData, error) {
	g.calls++
	data := []simulation.ZoneData{
		{Name: "Gate", CurrentCount: 100 + g.calls, Status: simulation.StatusLow, Color: simulation.ColorLow},
	}
	if g.fail != nil && g.fail(g.calls) {
		return data, errors.New("generation failed")
	}
	return data, nil
}

func testDashboardConfig() config.DashboardConfig {
	return config.DashboardConfig{
		Host:            "127.0.0.1",
		HTTPPort:        8501,
		RefreshInterval: 5,
		MaxFailures:     3,
	}
}

func newTestSession(gen Generator) *Session {
	return New(logging.NewWithWriter(io.Discard, zerolog.Disabled), gen, testDashboardConfig())
}

func TestNewSeedsInitialData(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(gen)

	state := s.State()
	require.Len(t, state.Zones, 1)
	assert.True(t, state.AutoRefresh)
	assert.Equal(t, 0, state.FailureCount)
	assert.Equal(t, 1, gen.calls)
}

func TestRefreshIfDueHonorsInterval(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestSession(gen)
	base := time.Now()
	s.lastRefresh = base

	assert.False(t, s.RefreshIfDue(base.Add(2*time.Second)), "too early")
	assert.True(t, s.RefreshIfDue(base.Add(6*time.Second)), "interval elapsed")
	assert.False(t, s.RefreshIfDue(base.Add(7*time.Second)), "clock restarts after refresh")
}

func TestFailureKeepsPreviousData(t *testing.T) {
	gen := &fakeGenerator{fail: func(call int) bool { return call > 1 }}
	s := newTestSession(gen)
	before := s.State().Zones[0].CurrentCount

	s.ManualRefresh(time.Now())

	state := s.State()
	assert.Equal(t, before, state.Zones[0].CurrentCount, "failed refresh keeps old data")
	assert.Equal(t, 1, state.FailureCount)
	assert.True(t, state.AutoRefresh)
}

func TestThirdConsecutiveFailureDisablesAutoRefresh(t *testing.T) {
	gen := &fakeGenerator{fail: func(call int) bool { return call > 1 }}
	s := newTestSession(gen)
	base := time.Now()
	s.lastRefresh = base

	for i := 1; i <= 3; i++ {
		refreshed := s.RefreshIfDue(base.Add(time.Duration(i) * 6 * time.Second))
		if i < 3 {
			assert.True(t, refreshed)
		}
	}

	state := s.State()
	assert.False(t, state.AutoRefresh, "auto-refresh off after 3 consecutive failures")
	assert.Equal(t, 3, state.FailureCount)

	// Once disabled, the timer no longer triggers refreshes
	calls := gen.calls
	assert.False(t, s.RefreshIfDue(base.Add(time.Hour)))
	assert.Equal(t, calls, gen.calls)
}

func TestSuccessResetsFailureCounter(t *testing.T) {
	gen := &fakeGenerator{fail: func(call int) bool { return call == 2 || call == 3 }}
	s := newTestSession(gen)
	base := time.Now()
	s.lastRefresh = base

	assert.True(t, s.RefreshIfDue(base.Add(6*time.Second)))
	assert.True(t, s.RefreshIfDue(base.Add(12*time.Second)))
	assert.Equal(t, 2, s.State().FailureCount)

	assert.True(t, s.RefreshIfDue(base.Add(18*time.Second)))
	assert.Equal(t, 0, s.State().FailureCount, "success resets the streak")
	assert.True(t, s.State().AutoRefresh)
}

func TestManualRefreshWorksWhileDisabled(t *testing.T) {
	gen := &fakeGenerator{fail: func(call int) bool { return call >= 2 && call <= 4 }}
	s := newTestSession(gen)
	base := time.Now()
	s.lastRefresh = base

	for i := 1; i <= 3; i++ {
		s.RefreshIfDue(base.Add(time.Duration(i) * 6 * time.Second))
	}
	require.False(t, s.State().AutoRefresh)

	// Manual refresh still runs and, succeeding, clears the counter
	s.ManualRefresh(base.Add(time.Hour))

	state := s.State()
	assert.Equal(t, 0, state.FailureCount)
	assert.False(t, state.AutoRefresh, "manual refresh does not flip the toggle")
	assert.Equal(t, 5, gen.calls)
}

func TestSetAutoRefreshReenables(t *testing.T) {
	gen := &fakeGenerator{fail: func(call int) bool { return call > 1 }}
	s := newTestSession(gen)
	base := time.Now()
	s.lastRefresh = base

	for i := 1; i <= 3; i++ {
		s.RefreshIfDue(base.Add(time.Duration(i) * 6 * time.Second))
	}
	require.False(t, s.State().AutoRefresh)

	s.SetAutoRefresh(true)

	state := s.State()
	assert.True(t, state.AutoRefresh)
	assert.Equal(t, 0, state.FailureCount)
}

func TestDefaultsApplied(t *testing.T) {
	gen := &fakeGenerator{}
	s := New(logging.NewWithWriter(io.Discard, zerolog.Disabled), gen, config.DashboardConfig{})

	assert.Equal(t, DefaultRefreshInterval, s.refreshInterval)
	assert.Equal(t, DefaultMaxFailures, s.maxFailures)
}
