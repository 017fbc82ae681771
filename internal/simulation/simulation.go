// Package simulation generates synthetic crowd counts for the dashboard's
// temple zones and classifies them into density levels.
package simulation

import (
	"math/rand"
	"time"

	"github.com/templecast/templecast/internal/logging"
)

// Zone describes one monitored area with its plausible count range.
type Zone struct {
	Name string
	Min  int
	Max  int
}

// DefaultZones are the monitored temple areas.
var DefaultZones = []Zone{
	{Name: "Gate", Min: 50, Max: 600},
	{Name: "Hall", Min: 100, Max: 800},
	{Name: "Exit", Min: 30, Max: 400},
}

// fallbackCounts are used when generation fails.
var fallbackCounts = map[string]int{
	"Gate": 100,
	"Hall": 200,
	"Exit": 50,
}

// Density status labels and their display colors
const (
	StatusLow     = "Low"
	StatusMedium  = "Medium"
	StatusHigh    = "High"
	StatusUnknown = "Unknown"

	ColorLow     = "#90EE90"
	ColorMedium  = "#FFD700"
	ColorHigh    = "#FF6B6B"
	ColorUnknown = "#CCCCCC"
)

// ZoneData is one zone's current state as shown on the dashboard.
type ZoneData struct {
	Name         string    `json:"name"`
	CurrentCount int       `json:"current_count"`
	Color        string    `json:"color"`
	Status       string    `json:"status"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Classify maps a crowd count to its density status and color. Negative
// counts are invalid and classify as Unknown.
func Classify(count int) (status, color string) {
	switch {
	case count < 0:
		return StatusUnknown, ColorUnknown
	case count < 200:
		return StatusLow, ColorLow
	case count <= 400:
		return StatusMedium, ColorMedium
	default:
		return StatusHigh, ColorHigh
	}
}

// Simulator produces zone data. The counts hook exists so failures can be
// injected; the default draws uniformly from each zone's range.
type Simulator struct {
	logger *logging.Logger
	zones  []Zone
	rng    *rand.Rand
	now    func() time.Time
	counts func(Zone) (int, error)
}

// New creates a Simulator over the default zones.
func New(logger *logging.Logger) *Simulator {
	s := &Simulator{
		logger: logger,
		zones:  DefaultZones,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
	s.counts = func(z Zone) (int, error) {
		return z.Min + s.rng.Intn(z.Max-z.Min+1), nil
	}
	return s
}

// Zones returns the configured zones.
func (s *Simulator) Zones() []Zone {
	out := make([]Zone, len(s.zones))
	copy(out, s.zones)
	return out
}

// GenerateAll returns fresh data for every zone. When generation fails the
// fixed fallback counts are returned together with the error so the caller
// can count the failure while still having something to display.
func (s *Simulator) GenerateAll() ([]ZoneData, error) {
	now := s.now()
	data := make([]ZoneData, len(s.zones))
	for i, z := range s.zones {
		count, err := s.counts(z)
		if err != nil {
			s.logger.Warn("Zone data generation failed, using fallback",
				"zone", z.Name,
				"error", err)
			return s.Fallback(now), err
		}
		status, color := Classify(count)
		data[i] = ZoneData{
			Name:         z.Name,
			CurrentCount: count,
			Color:        color,
			Status:       status,
			LastUpdated:  now,
		}
	}
	return data, nil
}

// Fallback returns the fixed safe counts for every zone.
func (s *Simulator) Fallback(now time.Time) []ZoneData {
	data := make([]ZoneData, len(s.zones))
	for i, z := range s.zones {
		count := fallbackCounts[z.Name]
		status, color := Classify(count)
		data[i] = ZoneData{
			Name:         z.Name,
			CurrentCount: count,
			Color:        color,
			Status:       status,
			LastUpdated:  now,
		}
	}
	return data
}
