package costing

import (
	"math"
	"time"

	"github.com/quietweek/quietweek/internal/domain/model"
)

// Breakdown itemizes how an event's cost was computed.
type Breakdown struct {
	EventID            string         `json:"event_id"`
	Category           model.Category `json:"category,omitempty"`
	Base               int            `json:"base"`
	DurationComponent  int            `json:"duration_component"`
	ToolSwitch         int            `json:"tool_switch"`
	Participants       int            `json:"participants"`
	NoAgenda           int            `json:"no_agenda"`
	AfternoonDiscount  int            `json:"afternoon_discount"`
	ProximityIncrement int            `json:"proximity_increment"`
	Total              int            `json:"total"`
}

// CostBreakdown returns the itemized cost of an event. prevEnd carries the
// previous event's end time for the proximity component; the zero time
// means there is none.
func CostBreakdown(e *model.Event, prevEnd time.Time) Breakdown {
	b := Breakdown{EventID: e.ID, Category: e.Category}

	if e.Category == model.CategoryRecovery {
		b.Base = recoveryValue(e.DurationMinutes)
		b.Total = b.Base
		return b
	}

	if e.Category == model.CategoryDeepWork {
		b.DurationComponent = int(math.RoundToEven(
			float64(e.DurationMinutes) / minutesPerQuarter * BaseCostPerQuarterHour * deepWorkRateFactor))
		b.Base = b.DurationComponent
		b.ProximityIncrement = proximityComponent(e, prevEnd)
		b.Total = b.Base + b.ProximityIncrement
		return b
	}

	participants := 1
	if e.Participants != nil {
		participants = *e.Participants
	}
	hasAgenda := true
	if e.HasAgenda != nil {
		hasAgenda = *e.HasAgenda
	}
	toolSwitch := e.RequiresToolSwitch != nil && *e.RequiresToolSwitch

	durationCost := float64(e.DurationMinutes) / minutesPerQuarter * BaseCostPerQuarterHour
	b.DurationComponent = int(math.RoundToEven(durationCost))
	running := durationCost

	if toolSwitch {
		b.ToolSwitch = toolSwitchPenalty
		running += toolSwitchPenalty
	}

	participantCost := float64(participants) * perParticipantCost
	b.Participants = int(math.RoundToEven(participantCost))
	running += participantCost

	if !hasAgenda {
		b.NoAgenda = noAgendaPenalty
		running += noAgendaPenalty
	}

	if e.Start.Hour() >= afternoonHour {
		b.AfternoonDiscount = -int(math.RoundToEven(running * (1 - afternoonFactor)))
		running *= afternoonFactor
	}

	b.Base = int(math.RoundToEven(running))
	b.ProximityIncrement = proximityComponent(e, prevEnd)
	b.Total = b.Base + b.ProximityIncrement
	return b
}

func proximityComponent(e *model.Event, prevEnd time.Time) int {
	if prevEnd.IsZero() {
		return 0
	}
	gap := e.Start.Sub(prevEnd).Minutes()
	if gap >= 0 && gap <= ProximityThresholdMinutes {
		return ProximityIncrement
	}
	return 0
}
