package activation

import (
	"strings"
	"unicode/utf8"

	"github.com/andywolf/skillkit/internal/config"
)

// Workflow identifies one of the fallback workflow recommendations.
type Workflow string

const (
	WorkflowSequential   Workflow = "sequential"
	WorkflowParallel     Workflow = "parallel"
	WorkflowOrchestrated Workflow = "orchestrated"
	WorkflowDefault      Workflow = "default"
)

// Recommendation is the single default workflow suggested when no rule matched.
type Recommendation struct {
	Workflow Workflow `json:"workflow"`
	Skill    string   `json:"skill"`
	Reason   string   `json:"reason"`
}

// Classifier picks a default workflow from marker tokens and prompt length.
type Classifier struct {
	vocabulary config.VocabularyConfig
	short      int
	long       int
	workflows  map[Workflow]Recommendation
}

// NewClassifier builds a Classifier from activation settings.
func NewClassifier(cfg config.ActivationConfig) *Classifier {
	rec := func(w Workflow, wc config.WorkflowConfig) Recommendation {
		return Recommendation{Workflow: w, Skill: wc.Skill, Reason: wc.Reason}
	}
	return &Classifier{
		vocabulary: cfg.Vocabulary,
		short:      cfg.ShortPromptLength,
		long:       cfg.LongPromptLength,
		workflows: map[Workflow]Recommendation{
			WorkflowSequential:   rec(WorkflowSequential, cfg.Workflows.Sequential),
			WorkflowParallel:     rec(WorkflowParallel, cfg.Workflows.Parallel),
			WorkflowOrchestrated: rec(WorkflowOrchestrated, cfg.Workflows.Orchestrated),
			WorkflowDefault:      rec(WorkflowDefault, cfg.Workflows.Default),
		},
	}
}

// Classify returns the recommendation for prompt. The first matching rule
// wins: simple marker, parallel marker, short prompt, complex marker or
// long prompt, otherwise the default workflow. Length is counted in runes.
//
// An explicit parallel marker outranks the short-prompt rule, so a terse
// "run these in parallel" still gets the parallel workflow; a simple marker
// outranks both.
func (c *Classifier) Classify(prompt string) Recommendation {
	normalized := strings.ToLower(prompt)
	length := utf8.RuneCountInString(prompt)

	switch {
	case containsAny(normalized, c.vocabulary.Simple):
		return c.workflows[WorkflowSequential]
	case containsAny(normalized, c.vocabulary.Parallel):
		return c.workflows[WorkflowParallel]
	case length < c.short:
		return c.workflows[WorkflowSequential]
	case containsAny(normalized, c.vocabulary.Complex) || length > c.long:
		return c.workflows[WorkflowOrchestrated]
	default:
		return c.workflows[WorkflowDefault]
	}
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
