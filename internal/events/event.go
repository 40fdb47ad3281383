// Package events keeps the append-only activation log: one JSON line per
// activation check, for later review of which prompts triggered which skills.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Outcome summarizes what an activation check produced.
type Outcome string

const (
	// OutcomeMatched means at least one skill or enhancement rule fired.
	OutcomeMatched Outcome = "matched"
	// OutcomeFallback means the complexity fallback recommended a workflow.
	OutcomeFallback Outcome = "fallback"
	// OutcomeSilent means nothing was printed.
	OutcomeSilent Outcome = "silent"
)

// ActivationEvent records one activation check.
type ActivationEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
	Cwd       string    `json:"cwd,omitempty"`

	// RulesSource is the rule file that was used.
	RulesSource string  `json:"rules_source,omitempty"`
	Outcome     Outcome `json:"outcome"`

	// PromptLength is counted in runes; the prompt itself is not logged.
	PromptLength int `json:"prompt_length"`

	Skills       []string `json:"skills,omitempty"`
	Enhancements []string `json:"enhancements,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`

	// Recommendation is the fallback workflow skill, if any.
	Recommendation string `json:"recommendation,omitempty"`
	Enhanced       bool   `json:"enhanced,omitempty"`
}

// NewActivationEvent returns an event stamped with a fresh ID and the current time.
func NewActivationEvent(outcome Outcome) ActivationEvent {
	return ActivationEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Outcome:   outcome,
	}
}
