package service

import (
	"github.com/quietweek/quietweek/internal/domain/costing"
	"github.com/quietweek/quietweek/internal/domain/model"
	"github.com/quietweek/quietweek/internal/domain/planner"
)

// BudgetStatus is the daily budget report.
type BudgetStatus struct {
	DailyBudget     int  `json:"daily_budget"`
	Spent           int  `json:"spent"`
	Remaining       int  `json:"remaining"`
	IsOverdrafted   bool `json:"is_overdrafted"`
	OverdraftAmount int  `json:"overdraft_amount"`
	WeeklyTotal     int  `json:"weekly_total"`
	WeeklyDebt      int  `json:"weekly_debt"`
}

// WeeklyBudget maps day keys to their totals.
type WeeklyBudget struct {
	DailyTotals map[string]int `json:"daily_totals"`
	WeeklyTotal int            `json:"weekly_total"`
}

// DayCost summarizes one day for recovery reporting.
type DayCost struct {
	Day        string `json:"day"`
	Cost       int    `json:"cost"`
	OverBudget bool   `json:"over_budget"`
	Overflow   int    `json:"overflow"`
}

// RecoveryActivity pairs a catalog activity with slots it would fit.
type RecoveryActivity struct {
	costing.RecoveryActivity
	SuggestedSlots []planner.TimeSlot `json:"suggested_slots"`
}

// RecoveryReport is the full recovery suggestion payload.
type RecoveryReport struct {
	WeeklyDebt     int                `json:"weekly_debt"`
	DailyBudget    int                `json:"daily_budget"`
	DailyCosts     map[string]DayCost `json:"daily_costs"`
	OverloadedDays []string           `json:"overloaded_days"`
	Activities     []RecoveryActivity `json:"activities"`
}

// WeekAnalysis carries every event with recomputed costs plus per-day
// totals and the heaviest day.
type WeekAnalysis struct {
	Events      []*model.Event `json:"events"`
	DailyTotals map[string]int `json:"daily_totals"`
	MaxDaily    int            `json:"max_daily_total"`
	DailyBudget int            `json:"daily_budget"`
}

// EventPatch carries the user-enrichable fields of an event. Nil means
// leave unchanged.
type EventPatch struct {
	Title              *string         `json:"title,omitempty"`
	Description        *string         `json:"description,omitempty"`
	Participants       *int            `json:"participants,omitempty"`
	HasAgenda          *bool           `json:"has_agenda,omitempty"`
	RequiresToolSwitch *bool           `json:"requires_tool_switch,omitempty"`
	Category           *model.Category `json:"event_type,omitempty"`
	Flexible           *bool           `json:"is_flexible,omitempty"`
}
