package vitals

import "time"

// Reading is a single vital-sign sample for a monitoring session, as
// delivered to the ingest queue.
type Reading struct {
	SessionID           string    `json:"session_id"`
	Timestamp           time.Time `json:"timestamp"`
	PulseRate           float64   `json:"pulse_rate"`
	BreathingRate       float64   `json:"breathing_rate"`
	PulseConfidence     float64   `json:"pulse_confidence,omitempty"`
	BreathingConfidence float64   `json:"breathing_confidence,omitempty"`
}

// Aggregated is the smoothed view over the readings currently inside
// the buffer window.
type Aggregated struct {
	PulseRate     float64 `json:"pulse_rate"`
	BreathingRate float64 `json:"breathing_rate"`
	HRV           int     `json:"hrv"`
	Confidence    float64 `json:"confidence"`
	ReadingCount  int     `json:"reading_count"`
	WindowSeconds float64 `json:"buffer_duration_seconds"`
	Stable        bool    `json:"is_stable"`
}

const (
	defaultWindow     = 5 * time.Second
	defaultMinStable  = 2
	minReadingsForAny = 1
)

// Buffer smooths noisy vital-sign readings with a sliding time window:
// readings older than the window fall off the front, averages cover
// whatever remains. Not safe for concurrent use; the session tracker
// serializes access per session.
type Buffer struct {
	window    time.Duration
	minStable int
	readings  []Reading
}

// NewBuffer returns a sliding-window buffer. Non-positive arguments
// fall back to a 5-second window and a 2-reading stability floor.
func NewBuffer(window time.Duration, minStable int) *Buffer {
	if window <= 0 {
		window = defaultWindow
	}
	if minStable <= 0 {
		minStable = defaultMinStable
	}
	return &Buffer{window: window, minStable: minStable}
}

// Add appends a reading and prunes everything that has slid out of the
// window relative to the newest timestamp.
func (b *Buffer) Add(r Reading) {
	b.readings = append(b.readings, r)
	cutoff := r.Timestamp.Add(-b.window)
	i := 0
	for i < len(b.readings) && b.readings[i].Timestamp.Before(cutoff) {
		i++
	}
	b.readings = b.readings[i:]
}

// Calibrating reports whether the buffer is still empty of usable data.
func (b *Buffer) Calibrating() bool {
	return len(b.readings) < minReadingsForAny
}

// Stable reports whether enough readings are buffered for reliable
// aggregates.
func (b *Buffer) Stable() bool {
	return len(b.readings) >= b.minStable
}

// Len returns the number of readings currently in the window.
func (b *Buffer) Len() int {
	return len(b.readings)
}

// Aggregate averages the buffered readings. Zero-valued pulse or
// breathing samples are treated as dropouts and excluded from their
// averages. Returns false while calibrating.
func (b *Buffer) Aggregate() (Aggregated, bool) {
	if b.Calibrating() {
		return Aggregated{}, false
	}

	var pulseSum, pulseN, breathSum, breathN, confSum float64
	pulseHistory := make([]float64, 0, len(b.readings))
	for _, r := range b.readings {
		if r.PulseRate > 0 {
			pulseSum += r.PulseRate
			pulseN++
			pulseHistory = append(pulseHistory, r.PulseRate)
		}
		if r.BreathingRate > 0 {
			breathSum += r.BreathingRate
			breathN++
		}
		confSum += r.PulseConfidence
	}

	agg := Aggregated{
		HRV:          hrvFromPulse(pulseHistory),
		Confidence:   confSum / float64(len(b.readings)),
		ReadingCount: len(b.readings),
		Stable:       b.Stable(),
	}
	if pulseN > 0 {
		agg.PulseRate = pulseSum / pulseN
	}
	if breathN > 0 {
		agg.BreathingRate = breathSum / breathN
	}
	if len(b.readings) >= 2 {
		first := b.readings[0].Timestamp
		last := b.readings[len(b.readings)-1].Timestamp
		agg.WindowSeconds = last.Sub(first).Seconds()
	}
	return agg, true
}

// Clear drops all buffered readings.
func (b *Buffer) Clear() {
	b.readings = nil
}
