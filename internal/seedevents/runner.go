package seedevents

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/quietweek/quietweek/pkg/logger"
)

// Shapes of the API responses the runner consumes.
type classifyResult struct {
	Classified int `json:"classified"`
}

type analyzeResult struct {
	DailyTotals map[string]int `json:"daily_totals"`
	MaxDaily    int            `json:"max_daily_total"`
	DailyBudget int            `json:"daily_budget"`
}

type proposalResult struct {
	ProposalID           string `json:"proposal_id"`
	CurrentMaxDailyLoad  int    `json:"current_max_daily_debt"`
	ProposedMaxDailyLoad int    `json:"proposed_max_daily_debt"`
	TotalReduction       int    `json:"total_debt_reduction"`
	Changes              []struct {
		EventTitle    string `json:"event_title"`
		OriginalStart string `json:"original_time"`
		NewStart      string `json:"new_time"`
	} `json:"changes"`
}

type applyResult struct {
	Applied int `json:"applied"`
}

type budgetResult struct {
	DailyBudget int  `json:"daily_budget"`
	Spent       int  `json:"spent"`
	Remaining   int  `json:"remaining"`
	Overdrafted bool `json:"is_overdrafted"`
	WeeklyTotal int  `json:"weekly_total"`
}

// Run executes the complete seeding flow.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting quietweek seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("apply", config.Apply))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the demo week
	events := generateEvents(ctx, time.Now().UTC(), stats)

	// Step 3: Submit events concurrently
	if err := submitEvents(ctx, config, events, stats); err != nil {
		return fmt.Errorf("event submission failed: %w", err)
	}

	client := newHTTPClient(config.Timeout)

	// Step 4: Classify anything that arrived without a category
	var classified classifyResult
	if err := postJSON(client, config.BaseURL+"/events/classify", nil, &classified); err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	stats.Classified = classified.Classified
	log.Printf("🏷  Classified %d events", classified.Classified)

	// Step 5: Analyze the week before optimizing
	var before analyzeResult
	if err := getJSON(client, config.BaseURL+"/events/analyze", &before); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	log.Printf("📊 Week before: max daily %d (budget %d)", before.MaxDaily, before.DailyBudget)

	// Step 6: Optimize and print the proposal
	var proposal proposalResult
	if err := postJSON(client, config.BaseURL+"/optimize/week", nil, &proposal); err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}
	printProposal(&proposal)

	// Step 7: Optionally apply it
	if config.Apply && len(proposal.Changes) > 0 {
		var applied applyResult
		req := map[string]string{"proposal_id": proposal.ProposalID}
		if err := postJSON(client, config.BaseURL+"/optimize/week/apply", req, &applied); err != nil {
			return fmt.Errorf("apply failed: %w", err)
		}
		stats.Applied = applied.Applied
		log.Printf("✅ Applied %d schedule changes", applied.Applied)
	}

	// Step 8: Report today's budget
	var budget budgetResult
	if err := getJSON(client, config.BaseURL+"/budget/daily", &budget); err != nil {
		return fmt.Errorf("budget read failed: %w", err)
	}
	log.Printf("💰 Today: spent %d of %d (remaining %d)", budget.Spent, budget.DailyBudget, budget.Remaining)

	stats.EndTime = time.Now()
	printSummary(stats)
	return nil
}

func printProposal(p *proposalResult) {
	log.Printf("🧠 Proposal %s: max daily %d -> %d (reduction %d)",
		p.ProposalID, p.CurrentMaxDailyLoad, p.ProposedMaxDailyLoad, p.TotalReduction)
	for _, c := range p.Changes {
		log.Printf("   • move %q: %s -> %s", c.EventTitle, c.OriginalStart, c.NewStart)
	}
	if len(p.Changes) == 0 {
		log.Printf("   (schedule already within budget)")
	}
}

func printSummary(stats *Stats) {
	log.Printf("==============================================")
	log.Printf("Seed run finished in %s", stats.Duration().Round(time.Millisecond))
	log.Printf("  generated:  %d", stats.Generated)
	log.Printf("  submitted:  %d", stats.Submitted)
	log.Printf("  failed:     %d", stats.Failed)
	log.Printf("  classified: %d", stats.Classified)
	log.Printf("  applied:    %d", stats.Applied)
}
