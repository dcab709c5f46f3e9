package planner

import (
	"github.com/quietweek/quietweek/internal/domain/costing"
	"github.com/quietweek/quietweek/internal/domain/model"
)

// Apply commits proposed changes onto the live event collection and
// returns how many were actually applied.
//
// selectedIDs narrows the changes to the named events; nil means all.
// Changes already applied, not selected, or whose event has since
// disappeared are skipped silently. Events keep their duration: the end
// time follows the new start. The proximity recompute pass runs once at
// the end so cached costs reflect the new arrangement.
func (o *Optimizer) Apply(events []*model.Event, proposal *Proposal, selectedIDs []string) int {
	var selected map[string]bool
	if selectedIDs != nil {
		selected = make(map[string]bool, len(selectedIDs))
		for _, id := range selectedIDs {
			selected[id] = true
		}
	}

	applied := 0
	for _, change := range proposal.Changes {
		if change.Applied {
			continue
		}
		if selected != nil && !selected[change.EventID] {
			continue
		}
		for _, e := range events {
			if e.ID != change.EventID {
				continue
			}
			duration := e.End.Sub(e.Start)
			e.Start = change.NewStart
			e.End = change.NewStart.Add(duration)
			change.Applied = true
			applied++
			break
		}
	}

	costing.ApplyProximity(events)
	return applied
}
