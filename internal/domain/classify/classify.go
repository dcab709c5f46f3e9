// Package classify assigns a category to calendar events from their text.
//
// The rules are keyword lookups over title and description. They are the
// built-in fallback for the external classification collaborator; category
// order matters since the first matching rule wins.
package classify

import (
	"strings"

	"github.com/quietweek/quietweek/internal/domain/model"
)

var recoveryKeywords = []string{
	"break", "lunch", "walk", "exercise", "gym", "rest", "meditation",
	"yoga", "personal", "recovery", "relax", "nap",
}

var deepWorkKeywords = []string{
	"focus", "deep work", "coding", "writing", "design", "research",
	"study", "development", "implementation", "concentrate", "solo",
}

var adminKeywords = []string{
	"email", "admin", "organize", "paperwork", "schedule", "planning",
	"review docs", "cleanup", "filing", "expense",
}

// Classify returns the category for an event title and description.
// Unmatched events default to meeting.
func Classify(title, description string) model.Category {
	text := strings.ToLower(title + " " + description)

	for _, kw := range recoveryKeywords {
		if strings.Contains(text, kw) {
			return model.CategoryRecovery
		}
	}
	for _, kw := range deepWorkKeywords {
		if strings.Contains(text, kw) {
			return model.CategoryDeepWork
		}
	}
	for _, kw := range adminKeywords {
		if strings.Contains(text, kw) {
			return model.CategoryAdmin
		}
	}
	return model.CategoryMeeting
}

// ClassifyEvents assigns a category to every event that does not have one
// yet and returns how many were classified. Events with a category are
// left alone.
func ClassifyEvents(events []*model.Event) int {
	classified := 0
	for _, e := range events {
		if e.Category != "" {
			continue
		}
		e.Category = Classify(e.Title, e.Description)
		classified++
	}
	return classified
}
