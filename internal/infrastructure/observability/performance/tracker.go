package performance

import (
	"fmt"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers map[string]*Marker
	mu      sync.RWMutex
	started time.Time
	config  *TrackerConfig
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers        int           `json:"maxMarkers"`        // Maximum number of markers to retain
	SlowOpThreshold   time.Duration `json:"slowOpThreshold"`   // Duration above which an operation is considered slow
	RetentionInterval time.Duration `json:"retentionInterval"` // How often completed markers are pruned
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:        10000,
		SlowOpThreshold:   500 * time.Millisecond,
		RetentionInterval: 10 * time.Minute,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}

	return &Tracker{
		markers: make(map[string]*Marker),
		started: time.Now(),
		config:  config,
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation string) *Marker {
	marker := &Marker{
		Operation: operation,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
	}

	markerID := fmt.Sprintf("%s_%d", operation, time.Now().UnixNano())

	t.mu.Lock()
	if len(t.markers) >= t.config.MaxMarkers {
		t.pruneCompletedLocked()
	}
	t.markers[markerID] = marker
	t.mu.Unlock()

	return marker
}

// IsSlow reports whether a completed marker exceeded the slow-op threshold.
func (t *Tracker) IsSlow(m *Marker) bool {
	return m.Completed && m.Duration > t.config.SlowOpThreshold
}

// ActiveOperations returns the number of markers still in flight.
func (t *Tracker) ActiveOperations() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	active := 0
	for _, m := range t.markers {
		if !m.Completed {
			active++
		}
	}
	return active
}

// CompletedOperations returns the number of retained completed markers.
func (t *Tracker) CompletedOperations() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	completed := 0
	for _, m := range t.markers {
		if m.Completed {
			completed++
		}
	}
	return completed
}

// Uptime returns how long the tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}

// pruneCompletedLocked drops completed markers to make room; callers hold mu.
func (t *Tracker) pruneCompletedLocked() {
	for id, m := range t.markers {
		if m.Completed {
			delete(t.markers, id)
		}
	}
}
