// Package vitals turns raw vital-sign readings into cognitive load
// figures. Readings arrive from a monitoring session, get smoothed
// through a sliding-window buffer and come out as a focus score, a
// stress level and a cognitive cost delta that adjusts an event's
// estimated cost into its actual one.
package vitals

import "math"

// Physiological reference ranges and scoring weights. Breathing is the
// most direct indicator of mental state, HRV the best stress/recovery
// signal, pulse the noisiest of the three.
const (
	breathingOptimalMax  = 16.0
	breathingWarningMin  = 10.0
	breathingWarningMax  = 18.0
	breathingCriticalMax = 20.0

	pulseOptimalMax  = 80.0
	pulseWarningMin  = 50.0
	pulseWarningMax  = 90.0
	pulseCriticalMax = 100.0

	hrvMin        = 20.0
	hrvMax        = 80.0
	hrvMultiplier = 1.5
	hrvDefault    = 50.0
	hrvMinSamples = 5
	hrvRMSSDScale = 2.0

	weightBreathing = 0.35
	weightPulse     = 0.25
	weightHRV       = 0.40

	stressBreathingPenalty = 3.0
	stressPulsePenalty     = 2.0

	// MaxCostDelta caps how many budget points a single stressed
	// session can add on top of an event's estimated cost.
	MaxCostDelta = 6
)

// LoadResult is the cognitive load computed from one aggregated window
// of readings.
type LoadResult struct {
	HRV        int     `json:"hrv"`
	FocusScore int     `json:"focus_score"`
	Stress     int     `json:"stress_level"`
	CostDelta  float64 `json:"cognitive_cost_delta"`
	Confidence float64 `json:"confidence"`
}

// hrvFromPulse estimates heart rate variability from recent pulse rate
// samples using an RMSSD-style approximation: the steadier the pulse,
// the higher the score.
func hrvFromPulse(pulseHistory []float64) int {
	if len(pulseHistory) < hrvMinSamples {
		return int(hrvDefault)
	}

	sum := 0.0
	n := 0
	for i := 1; i < len(pulseHistory); i++ {
		d := pulseHistory[i] - pulseHistory[i-1]
		sum += d * d
		n++
	}
	if n == 0 {
		return int(hrvDefault)
	}

	rmssd := math.Sqrt(sum / float64(n))
	hrv := hrvDefault - rmssd*hrvRMSSDScale
	return int(math.Round(clamp(hrv, hrvMin, hrvMax)))
}

// breathingScore scores the breathing rate 0-100. Optimal is 12-16 BPM;
// rapid breathing is penalized harder than slow because it signals
// stress rather than measurement noise.
func breathingScore(rate, confidence float64) float64 {
	score := 100.0
	switch {
	case rate < breathingWarningMin:
		score -= (breathingWarningMin - rate) * 10
	case rate > breathingWarningMax:
		score -= (rate - breathingWarningMax) * 8
	case rate > breathingOptimalMax:
		score -= (rate - breathingOptimalMax) * 3
	}
	if confidence > 0 {
		score *= confidence
	}
	return clamp(score, 0, 100)
}

// pulseScore scores the pulse rate 0-100 against a 60-80 BPM resting
// optimum.
func pulseScore(rate, confidence float64) float64 {
	score := 100.0
	switch {
	case rate < pulseWarningMin:
		score -= (pulseWarningMin - rate) * 2
	case rate > pulseWarningMax:
		score -= (rate - pulseWarningMax) * 2
	case rate > pulseOptimalMax:
		score -= rate - pulseOptimalMax
	}
	if confidence > 0 {
		score *= confidence
	}
	return clamp(score, 0, 100)
}

func hrvScore(hrv int) float64 {
	return clamp(float64(hrv)*hrvMultiplier, 0, 100)
}

// ComputeLoad combines an aggregated window of vitals into cognitive
// load figures. Stress is the inverse of focus plus penalties when
// breathing or pulse run past their critical thresholds, and the cost
// delta maps stress linearly onto 0..MaxCostDelta.
func ComputeLoad(agg Aggregated) LoadResult {
	hrv := agg.HRV
	bScore := breathingScore(agg.BreathingRate, agg.Confidence)
	pScore := pulseScore(agg.PulseRate, agg.Confidence)
	hScore := hrvScore(hrv)

	focus := int(clamp(bScore*weightBreathing+pScore*weightPulse+hScore*weightHRV, 0, 100))

	stress := float64(100 - focus)
	if agg.BreathingRate > breathingCriticalMax {
		stress += (agg.BreathingRate - breathingCriticalMax) * stressBreathingPenalty
	}
	if agg.PulseRate > pulseCriticalMax {
		stress += (agg.PulseRate - pulseCriticalMax) * stressPulsePenalty
	}
	stressLevel := int(clamp(stress, 0, 100))

	return LoadResult{
		HRV:        hrv,
		FocusScore: focus,
		Stress:     stressLevel,
		CostDelta:  float64(stressLevel) / 100 * MaxCostDelta,
		Confidence: agg.Confidence,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
