package activation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/andywolf/skillkit/internal/config"
	"github.com/andywolf/skillkit/internal/events"
	"github.com/andywolf/skillkit/internal/logging"
	"github.com/andywolf/skillkit/internal/skills"
)

// Request is the hook payload delivered on stdin by the host runtime.
type Request struct {
	Prompt    string `json:"prompt"`
	Cwd       string `json:"cwd"`
	SessionID string `json:"session_id,omitempty"`
}

// Report is everything an activation check decided to surface.
// A nil *Report means "print nothing".
type Report struct {
	RulesSource    string
	Result         Result
	Groups         []PriorityGroup
	Recommendation *Recommendation
	EnhancedPrompt string
}

// EventSink receives one event per activation check.
type EventSink interface {
	WriteOne(event events.ActivationEvent) error
}

// Checker is the activation entry point: load rules, match, fall back.
type Checker struct {
	cfg        config.ActivationConfig
	rules      config.RulesConfig
	matcher    *Matcher
	classifier *Classifier
	enhancer   Enhancer
	sink       EventSink
	logger     *zap.Logger
	getenv     func(string) string
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithEnhancer installs a prompt enhancer used when rules matched.
func WithEnhancer(e Enhancer) CheckerOption {
	return func(c *Checker) { c.enhancer = e }
}

// WithEventSink records every check to sink.
func WithEventSink(sink EventSink) CheckerOption {
	return func(c *Checker) { c.sink = sink }
}

// WithCheckerLogger sets the logger.
func WithCheckerLogger(l *zap.Logger) CheckerOption {
	return func(c *Checker) { c.logger = logging.OrNop(l) }
}

// WithGetenv overrides environment lookup.
func WithGetenv(getenv func(string) string) CheckerOption {
	return func(c *Checker) { c.getenv = getenv }
}

// NewChecker creates a Checker from configuration.
func NewChecker(cfg *config.Config, opts ...CheckerOption) *Checker {
	c := &Checker{
		cfg:        cfg.Activation,
		rules:      cfg.Rules,
		classifier: NewClassifier(cfg.Activation),
		logger:     zap.NewNop(),
		getenv:     os.Getenv,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.matcher = NewMatcher(WithDisplayCap(c.cfg.DisplayCap), WithLogger(c.logger))
	return c
}

// Check evaluates req. It returns (nil, nil) when there is nothing to say:
// empty or skipped prompt, no rule file anywhere, or a short prompt that
// matched nothing. Errors are returned, never printed; the caller decides
// whether to surface them.
func (c *Checker) Check(ctx context.Context, req Request) (*Report, error) {
	if req.Prompt == "" || c.skipped(req.Prompt) {
		return nil, nil
	}

	cwd := req.Cwd
	if cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			cwd = wd
		}
	}
	loc := skills.Locations{Cwd: cwd, PluginRoot: c.rules.PluginRoot, Home: c.rules.Home}

	rs, err := skills.Load(skills.Candidates(loc, c.rules.FileName))
	if errors.Is(err, skills.ErrConfigurationMissing) {
		c.logger.Debug("no skill rules found", zap.String("cwd", cwd))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load skill rules: %w", err)
	}

	extra, err := skills.LoadEnhancements(skills.Candidates(loc, c.rules.EnhancementFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to load enhancement rules: %w", err)
	}
	if len(extra) > 0 {
		rs.Enhancements = skills.MergeEnhancements(rs.Enhancements, extra)
	}
	c.logger.Debug("skill rules loaded",
		zap.String("source", rs.Source),
		zap.Strings("skills", rs.Names()),
		zap.Int("enhancements", len(rs.Enhancements)))

	report := c.evaluate(ctx, req.Prompt, cwd, rs)
	c.record(req, cwd, rs.Source, report)
	return report, nil
}

// Evaluate runs matching and the fallback against an already loaded rule
// set, without touching the filesystem or the event sink.
func (c *Checker) Evaluate(ctx context.Context, prompt string, rs *skills.RuleSet) *Report {
	return c.evaluate(ctx, prompt, "", rs)
}

func (c *Checker) evaluate(ctx context.Context, prompt, workDir string, rs *skills.RuleSet) *Report {
	result := c.matcher.Match(prompt, rs)
	length := utf8.RuneCountInString(prompt)

	if !result.Empty() {
		report := &Report{
			RulesSource: rs.Source,
			Result:      result,
			Groups:      GroupByPriority(result.Skills),
		}
		if c.enhancer != nil && length > c.cfg.Enhancer.MinPromptLength {
			enhanced, err := c.enhancer.Enhance(ctx, prompt, workDir)
			if err != nil {
				c.logger.Debug("prompt enhancement skipped", zap.Error(err))
			} else {
				report.EnhancedPrompt = enhanced
			}
		}
		return report
	}

	if length > c.cfg.MinPromptLength {
		rec := c.classifier.Classify(prompt)
		return &Report{RulesSource: rs.Source, Recommendation: &rec}
	}
	return nil
}

func (c *Checker) skipped(prompt string) bool {
	if c.getenv(SkipEnhanceEnv) == "1" {
		return true
	}
	lower := strings.ToLower(prompt)
	for _, marker := range c.cfg.SkipMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func (c *Checker) record(req Request, cwd, source string, report *Report) {
	if c.sink == nil {
		return
	}

	outcome := events.OutcomeSilent
	switch {
	case report == nil:
	case report.Recommendation != nil:
		outcome = events.OutcomeFallback
	default:
		outcome = events.OutcomeMatched
	}

	event := events.NewActivationEvent(outcome)
	event.SessionID = req.SessionID
	event.Cwd = cwd
	event.RulesSource = source
	event.PromptLength = utf8.RuneCountInString(req.Prompt)
	if report != nil {
		event.Skills = report.Result.SkillNames()
		for _, hit := range report.Result.Enhancements {
			event.Enhancements = append(event.Enhancements, hit.Rule)
		}
		event.Suggestions = report.Result.Suggestions
		if report.Recommendation != nil {
			event.Recommendation = report.Recommendation.Skill
		}
		event.Enhanced = report.EnhancedPrompt != ""
	}

	if err := c.sink.WriteOne(event); err != nil {
		c.logger.Warn("failed to record activation event", zap.Error(err))
	}
}
