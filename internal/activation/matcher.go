// Package activation decides which skills a prompt should activate.
//
// The Matcher evaluates keyword and intent-pattern triggers in rule-file
// order and collects enhancement suggestions; the Classifier supplies a
// default workflow when nothing matched; the Checker ties both to rule
// loading and is the entry point used by the activation hook.
package activation

import (
	"strings"

	"go.uber.org/zap"

	"github.com/andywolf/skillkit/internal/logging"
	"github.com/andywolf/skillkit/internal/skills"
)

// MatchType records which trigger activated a skill.
type MatchType string

const (
	MatchKeyword MatchType = "keyword"
	MatchIntent  MatchType = "intent"
)

// DefaultDisplayCap bounds the number of merged enhancement suggestions.
const DefaultDisplayCap = 5

// Match is a skill activated by a prompt.
type Match struct {
	Skill    string           `json:"skill"`
	Type     MatchType        `json:"matchType"`
	Priority skills.Priority  `json:"priority"`
	Rule     skills.SkillRule `json:"-"`
}

// EnhancementHit is an enhancement rule whose trigger occurred in a prompt.
type EnhancementHit struct {
	Rule         string          `json:"rule"`
	Suggestions  []string        `json:"suggestions"`
	RelatedSkill string          `json:"relatedSkill,omitempty"`
	Priority     skills.Priority `json:"priority,omitempty"`
}

// Result is the outcome of matching one prompt.
type Result struct {
	Skills       []Match          `json:"skills"`
	Enhancements []EnhancementHit `json:"enhancements"`
	// Suggestions is the deduplicated, capped merge of every hit's suggestions.
	Suggestions []string `json:"suggestions"`
}

// Empty reports whether neither a skill nor an enhancement rule matched.
func (r Result) Empty() bool {
	return len(r.Skills) == 0 && len(r.Enhancements) == 0
}

// SkillNames returns matched skill names in match order.
func (r Result) SkillNames() []string {
	names := make([]string, 0, len(r.Skills))
	for _, m := range r.Skills {
		names = append(names, m.Skill)
	}
	return names
}

// Matcher evaluates prompts against a rule set. It holds no state between
// calls; patterns are compiled per call.
type Matcher struct {
	displayCap int
	logger     *zap.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithDisplayCap sets the suggestion display cap.
func WithDisplayCap(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.displayCap = n
		}
	}
}

// WithLogger sets the logger used to report invalid patterns.
func WithLogger(l *zap.Logger) MatcherOption {
	return func(m *Matcher) {
		m.logger = logging.OrNop(l)
	}
}

// NewMatcher creates a Matcher.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{displayCap: DefaultDisplayCap, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match evaluates prompt against every skill and enhancement rule in rs.
// Skill matches keep rule-file order.
func (m *Matcher) Match(prompt string, rs *skills.RuleSet) Result {
	var result Result
	if rs == nil {
		return result
	}

	normalized := strings.ToLower(prompt)

	for _, rule := range rs.Skills {
		match, ok, patternErrs := matchRule(rule, normalized, prompt)
		for _, pe := range patternErrs {
			m.logger.Warn("skipping invalid intent pattern",
				zap.String("skill", rule.Name),
				zap.String("pattern", pe.pattern),
				zap.Error(pe.err))
		}
		if ok {
			result.Skills = append(result.Skills, match)
		}
	}

	for _, rule := range rs.Enhancements {
		if hit, ok := matchEnhancement(rule, normalized); ok {
			result.Enhancements = append(result.Enhancements, hit)
		}
	}

	result.Suggestions = MergeSuggestions(result.Enhancements, m.displayCap)
	return result
}

type patternError struct {
	pattern string
	err     error
}

// matchRule evaluates a single rule. A keyword hit wins over intent
// patterns; intent patterns are only tried when no keyword matched.
func matchRule(rule skills.SkillRule, normalized, original string) (Match, bool, []patternError) {
	triggers := rule.PromptTriggers
	if triggers == nil {
		return Match{}, false, nil
	}

	for _, kw := range triggers.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(kw)) {
			return Match{Skill: rule.Name, Type: MatchKeyword, Priority: rule.Priority, Rule: rule}, true, nil
		}
	}

	var errs []patternError
	for _, pattern := range triggers.IntentPatterns {
		re, err := skills.CompileIntent(pattern)
		if err != nil {
			errs = append(errs, patternError{pattern: pattern, err: err})
			continue
		}
		if re.MatchString(original) {
			return Match{Skill: rule.Name, Type: MatchIntent, Priority: rule.Priority, Rule: rule}, true, errs
		}
	}
	return Match{}, false, errs
}

func matchEnhancement(rule skills.EnhancementRule, normalized string) (EnhancementHit, bool) {
	for _, p := range rule.Patterns {
		if p == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(p)) {
			return EnhancementHit{
				Rule:         rule.Name,
				Suggestions:  rule.Suggestions,
				RelatedSkill: rule.RelatedSkill,
				Priority:     rule.Priority,
			}, true
		}
	}
	return EnhancementHit{}, false
}

// MergeSuggestions merges the suggestions of every hit in first-seen order,
// dropping duplicates, and truncates to limit entries.
func MergeSuggestions(hits []EnhancementHit, limit int) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, hit := range hits {
		for _, s := range hit.Suggestions {
			if seen[s] {
				continue
			}
			seen[s] = true
			merged = append(merged, s)
		}
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// PriorityGroup is the set of matches sharing one priority tier.
type PriorityGroup struct {
	Priority skills.Priority
	Matches  []Match
}

// GroupByPriority groups matches by tier, most urgent first, keeping match
// order within a tier. Empty tiers and unknown priorities are omitted.
func GroupByPriority(matches []Match) []PriorityGroup {
	var groups []PriorityGroup
	for _, tier := range skills.Priorities {
		var inTier []Match
		for _, m := range matches {
			if m.Priority == tier {
				inTier = append(inTier, m)
			}
		}
		if len(inTier) > 0 {
			groups = append(groups, PriorityGroup{Priority: tier, Matches: inTier})
		}
	}
	return groups
}
