package skills

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	validTypes        = []string{string(RuleTypeDomain), string(RuleTypeFile), string(RuleTypeTool)}
	validEnforcements = []string{string(EnforcementSuggest), string(EnforcementBlock), string(EnforcementWarn)}
	validPriorities   = []string{string(PriorityCritical), string(PriorityHigh), string(PriorityMedium), string(PriorityLow)}
)

// CompileIntent compiles an intent pattern the way the matcher runs it:
// case-insensitive against the original prompt.
func CompileIntent(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

func validateSkill(rule SkillRule) []Problem {
	var problems []Problem

	check := func(field, value string, valid bool, allowed []string) {
		switch {
		case value == "":
			problems = append(problems, Problem{Skill: rule.Name, Field: field,
				Message: fmt.Sprintf("missing required field %q", field)})
		case !valid:
			problems = append(problems, Problem{Skill: rule.Name, Field: field,
				Message: fmt.Sprintf("invalid value %q (must be one of: %s)", value, strings.Join(allowed, ", "))})
		}
	}
	check("type", string(rule.Type), rule.Type.Valid(), validTypes)
	check("enforcement", string(rule.Enforcement), rule.Enforcement.Valid(), validEnforcements)
	check("priority", string(rule.Priority), rule.Priority.Valid(), validPriorities)

	if rule.PromptTriggers != nil {
		for _, pattern := range rule.PromptTriggers.IntentPatterns {
			if _, err := CompileIntent(pattern); err != nil {
				problems = append(problems, Problem{Skill: rule.Name, Field: "intentPatterns",
					Message: fmt.Sprintf("invalid regex %q: %v", pattern, err)})
			}
		}
	}

	if rule.FileTriggers != nil {
		for _, pattern := range rule.FileTriggers.ContentPatterns {
			if _, err := regexp.Compile(pattern); err != nil {
				problems = append(problems, Problem{Skill: rule.Name, Field: "contentPatterns",
					Message: fmt.Sprintf("invalid regex %q: %v", pattern, err)})
			}
		}
	}

	return problems
}

func validateEnhancement(rule EnhancementRule) []Problem {
	var problems []Problem
	if len(rule.Patterns) == 0 {
		problems = append(problems, Problem{Skill: rule.Name, Field: "patterns",
			Message: `missing required field "patterns"`})
	}
	if rule.Priority != "" && !rule.Priority.Valid() {
		problems = append(problems, Problem{Skill: rule.Name, Field: "priority",
			Message: fmt.Sprintf("invalid value %q (must be one of: %s)", rule.Priority, strings.Join(validPriorities, ", "))})
	}
	return problems
}

// Warning is a non-fatal finding about a loaded rule set.
type Warning struct {
	Skill   string
	Message string
}

func (w Warning) String() string {
	if w.Skill == "" {
		return w.Message
	}
	return "[" + w.Skill + "] " + w.Message
}

// Lint reports recommended-but-optional issues: skills without a
// description and keywords claimed by more than one skill.
func Lint(rs *RuleSet) []Warning {
	var warnings []Warning

	for _, r := range rs.Skills {
		if r.Description == "" {
			warnings = append(warnings, Warning{Skill: r.Name, Message: `missing recommended field "description"`})
		}
	}

	owners := make(map[string][]string)
	var order []string
	for _, r := range rs.Skills {
		if r.PromptTriggers == nil {
			continue
		}
		for _, kw := range r.PromptTriggers.Keywords {
			key := strings.ToLower(kw)
			if _, ok := owners[key]; !ok {
				order = append(order, key)
			}
			if !contains(owners[key], r.Name) {
				owners[key] = append(owners[key], r.Name)
			}
		}
	}
	for _, key := range order {
		if names := owners[key]; len(names) > 1 {
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("keyword %q is used by multiple skills: %s", key, strings.Join(names, ", ")),
			})
		}
	}

	return warnings
}

// Stats summarizes a rule set.
type Stats struct {
	Skills       int
	ByPriority   map[Priority]int
	WithTriggers int
	Enhancements int
}

// ComputeStats counts skills per priority tier.
func ComputeStats(rs *RuleSet) Stats {
	stats := Stats{
		Skills:       len(rs.Skills),
		ByPriority:   make(map[Priority]int, len(Priorities)),
		Enhancements: len(rs.Enhancements),
	}
	for _, r := range rs.Skills {
		stats.ByPriority[r.Priority]++
		if r.HasTriggers() {
			stats.WithTriggers++
		}
	}
	return stats
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
