package activation

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/andywolf/skillkit/internal/skills"
)

// Scores added per trigger hit when ranking skills for a test case.
const (
	KeywordScore = 10
	IntentScore  = 20
)

// Pass-rate thresholds of an activation test suite, in percent.
const (
	PassThreshold    = 80.0
	PartialThreshold = 60.0
)

// ScoredMatch is a skill ranked by how many of its triggers fired.
type ScoredMatch struct {
	Skill    string          `json:"skill"`
	Score    int             `json:"score"`
	Priority skills.Priority `json:"priority"`
	Reasons  []string        `json:"reasons"`
}

// Rank scores every skill against prompt without short-circuiting, and
// sorts by score, then by priority tier. Skills without a hit are omitted.
func (m *Matcher) Rank(prompt string, rs *skills.RuleSet) []ScoredMatch {
	if rs == nil {
		return nil
	}
	normalized := strings.ToLower(prompt)

	var ranked []ScoredMatch
	for _, rule := range rs.Skills {
		t := rule.PromptTriggers
		if t == nil {
			continue
		}
		sm := ScoredMatch{Skill: rule.Name, Priority: rule.Priority}
		for _, kw := range t.Keywords {
			if kw != "" && strings.Contains(normalized, strings.ToLower(kw)) {
				sm.Score += KeywordScore
				sm.Reasons = append(sm.Reasons, fmt.Sprintf("keyword: %q", kw))
			}
		}
		for _, pattern := range t.IntentPatterns {
			re, err := skills.CompileIntent(pattern)
			if err != nil {
				m.logger.Warn("skipping invalid intent pattern",
					zap.String("skill", rule.Name),
					zap.String("pattern", pattern),
					zap.Error(err))
				continue
			}
			if re.MatchString(prompt) {
				sm.Score += IntentScore
				sm.Reasons = append(sm.Reasons, fmt.Sprintf("pattern: %q", pattern))
			}
		}
		if sm.Score > 0 {
			ranked = append(ranked, sm)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return rankOf(ranked[i].Priority) < rankOf(ranked[j].Priority)
	})
	return ranked
}

// rankOf places unknown priorities after every known tier.
func rankOf(p skills.Priority) int {
	if r := p.Rank(); r >= 0 {
		return r
	}
	return len(skills.Priorities)
}

// TestCase is one prompt and the skill it is expected to activate first.
type TestCase struct {
	ID       string `json:"id" yaml:"id"`
	Prompt   string `json:"prompt" yaml:"prompt"`
	Expected string `json:"expected" yaml:"expected"`
}

// CaseResult is the outcome of one test case.
type CaseResult struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
	// UnknownSkill is set when the expected skill has no rule at all.
	UnknownSkill bool          `json:"unknownSkill,omitempty"`
	TopMatches   []ScoredMatch `json:"allMatches"`
}

// Verdict grades a suite by pass rate.
type Verdict string

const (
	VerdictPassed  Verdict = "passed"
	VerdictPartial Verdict = "partial"
	VerdictFailed  Verdict = "failed"
)

// SuiteSummary counts the results of a suite.
type SuiteSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	PassRate float64 `json:"passRate"`
}

// Verdict returns the grade for the summary's pass rate.
func (s SuiteSummary) Verdict() Verdict {
	switch {
	case s.Total > 0 && s.PassRate >= PassThreshold:
		return VerdictPassed
	case s.Total > 0 && s.PassRate >= PartialThreshold:
		return VerdictPartial
	default:
		return VerdictFailed
	}
}

// SuiteResult is the outcome of running test cases against a rule set.
type SuiteResult struct {
	Timestamp   time.Time    `json:"timestamp"`
	RulesSource string       `json:"rulesSource"`
	Summary     SuiteSummary `json:"summary"`
	Details     []CaseResult `json:"details"`
	Failures    []CaseResult `json:"failures"`
}

// RunSuite checks that each case's expected skill ranks first for its prompt.
func (m *Matcher) RunSuite(cases []TestCase, rs *skills.RuleSet) SuiteResult {
	result := SuiteResult{
		Timestamp: time.Now().UTC(),
		Details:   []CaseResult{},
		Failures:  []CaseResult{},
	}
	if rs != nil {
		result.RulesSource = rs.Source
	}

	for _, tc := range cases {
		ranked := m.Rank(tc.Prompt, rs)
		cr := CaseResult{
			ID:         tc.ID,
			Prompt:     tc.Prompt,
			Expected:   tc.Expected,
			TopMatches: ranked,
		}
		if len(cr.TopMatches) > 3 {
			cr.TopMatches = cr.TopMatches[:3]
		}
		if len(ranked) > 0 {
			cr.Actual = ranked[0].Skill
		}
		cr.Passed = cr.Actual != "" && cr.Actual == tc.Expected
		if rs != nil {
			_, known := rs.Skill(tc.Expected)
			cr.UnknownSkill = !known
		}

		result.Details = append(result.Details, cr)
		if cr.Passed {
			result.Summary.Passed++
		} else {
			result.Summary.Failed++
			result.Failures = append(result.Failures, cr)
		}
	}

	result.Summary.Total = len(cases)
	if result.Summary.Total > 0 {
		result.Summary.PassRate = float64(result.Summary.Passed) / float64(result.Summary.Total) * 100
	}
	return result
}

// LoadTestCases reads a JSON or YAML list of test cases. Cases without an
// id are numbered by position.
func LoadTestCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test cases: %w", err)
	}

	var cases []TestCase
	if json.Valid(data) {
		err = json.Unmarshal(data, &cases)
	} else {
		err = yaml.Unmarshal(data, &cases)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse test cases %s: %w", path, err)
	}

	for i := range cases {
		if cases[i].Prompt == "" || cases[i].Expected == "" {
			return nil, fmt.Errorf("test case %d in %s needs a prompt and an expected skill", i+1, path)
		}
		if cases[i].ID == "" {
			cases[i].ID = fmt.Sprintf("%d", i+1)
		}
	}
	return cases, nil
}
