// Package skills loads and validates skill activation rules.
//
// A rule file maps skill names to trigger rules (keywords and regex intent
// patterns) plus the metadata that decides how loudly a match is surfaced.
// Key order in the file is significant: matching walks rules in file order,
// so the decoded RuleSet keeps rules in ordered slices rather than maps.
package skills

// RuleType classifies what a skill rule is about.
type RuleType string

const (
	RuleTypeDomain RuleType = "domain"
	RuleTypeFile   RuleType = "file"
	RuleTypeTool   RuleType = "tool"
)

// Valid reports whether t is one of the known rule types.
func (t RuleType) Valid() bool {
	switch t {
	case RuleTypeDomain, RuleTypeFile, RuleTypeTool:
		return true
	}
	return false
}

// Enforcement describes how a matched skill should be surfaced.
type Enforcement string

const (
	EnforcementSuggest Enforcement = "suggest"
	EnforcementBlock   Enforcement = "block"
	EnforcementWarn    Enforcement = "warn"
)

// Valid reports whether e is one of the known enforcement modes.
func (e Enforcement) Valid() bool {
	switch e {
	case EnforcementSuggest, EnforcementBlock, EnforcementWarn:
		return true
	}
	return false
}

// Priority is the urgency tier of a skill or enhancement rule.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Priorities lists the tiers in presentation order, most urgent first.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priority tiers.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank returns the position of p in Priorities, or -1 for unknown tiers.
func (p Priority) Rank() int {
	for i, tier := range Priorities {
		if tier == p {
			return i
		}
	}
	return -1
}

// PromptTriggers are the conditions under which a prompt activates a skill.
type PromptTriggers struct {
	Keywords       []string `yaml:"keywords" json:"keywords,omitempty"`
	IntentPatterns []string `yaml:"intentPatterns" json:"intentPatterns,omitempty"`
}

// FileTriggers are the file conditions of a skill rule. Content patterns
// are regexes applied to file contents, case-sensitive.
type FileTriggers struct {
	PathPatterns    []string `yaml:"pathPatterns" json:"pathPatterns,omitempty"`
	PathExclusions  []string `yaml:"pathExclusions" json:"pathExclusions,omitempty"`
	ContentPatterns []string `yaml:"contentPatterns" json:"contentPatterns,omitempty"`
}

// SkillRule is the activation rule for a single skill.
type SkillRule struct {
	Name           string          `yaml:"-" json:"name"`
	Type           RuleType        `yaml:"type" json:"type"`
	Enforcement    Enforcement     `yaml:"enforcement" json:"enforcement"`
	Priority       Priority        `yaml:"priority" json:"priority"`
	Description    string          `yaml:"description" json:"description,omitempty"`
	PromptTriggers *PromptTriggers `yaml:"promptTriggers" json:"promptTriggers,omitempty"`
	FileTriggers   *FileTriggers   `yaml:"fileTriggers" json:"fileTriggers,omitempty"`
}

// HasTriggers reports whether the rule declares any prompt trigger at all.
func (r SkillRule) HasTriggers() bool {
	return r.PromptTriggers != nil &&
		(len(r.PromptTriggers.Keywords) > 0 || len(r.PromptTriggers.IntentPatterns) > 0)
}

// EnhancementRule maps trigger substrings to context suggestions.
type EnhancementRule struct {
	Name         string   `yaml:"-" json:"name"`
	Patterns     []string `yaml:"patterns" json:"patterns"`
	Suggestions  []string `yaml:"suggestions" json:"suggestions"`
	RelatedSkill string   `yaml:"relatedSkill" json:"relatedSkill,omitempty"`
	Priority     Priority `yaml:"priority" json:"priority,omitempty"`
}

// RuleSet is a validated, immutable view of one rule file.
type RuleSet struct {
	// Source is the path the rules were read from.
	Source       string
	Skills       []SkillRule
	Enhancements []EnhancementRule
}

// Skill looks up a skill rule by name.
func (rs *RuleSet) Skill(name string) (SkillRule, bool) {
	for _, r := range rs.Skills {
		if r.Name == name {
			return r, true
		}
	}
	return SkillRule{}, false
}

// Names returns skill names in file order.
func (rs *RuleSet) Names() []string {
	names := make([]string, 0, len(rs.Skills))
	for _, r := range rs.Skills {
		names = append(names, r.Name)
	}
	return names
}
