package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config represents the full skillkit configuration
type Config struct {
	Rules      RulesConfig      `mapstructure:"rules"`
	Activation ActivationConfig `mapstructure:"activation"`
	Deps       DepsConfig       `mapstructure:"deps"`
	Log        LogConfig        `mapstructure:"log"`
}

// RulesConfig controls where rule files are looked up
type RulesConfig struct {
	FileName            string `mapstructure:"file_name"`
	EnhancementFileName string `mapstructure:"enhancement_file_name"`
	PluginRoot          string `mapstructure:"plugin_root"` // defaults to $CLAUDE_PLUGIN_ROOT
	Home                string `mapstructure:"home"`        // defaults to the user's home directory
}

// ActivationConfig contains the static weights and vocabulary of the activation check
type ActivationConfig struct {
	DisplayCap        int              `mapstructure:"display_cap"`
	MinPromptLength   int              `mapstructure:"min_prompt_length"`
	ShortPromptLength int              `mapstructure:"short_prompt_length"`
	LongPromptLength  int              `mapstructure:"long_prompt_length"`
	SkipMarkers       []string         `mapstructure:"skip_markers"`
	LogDir            string           `mapstructure:"log_dir"`
	Vocabulary        VocabularyConfig `mapstructure:"vocabulary"`
	Workflows         WorkflowsConfig  `mapstructure:"workflows"`
	Enhancer          EnhancerConfig   `mapstructure:"enhancer"`
}

// VocabularyConfig holds the marker tokens used by the complexity fallback
type VocabularyConfig struct {
	Simple   []string `mapstructure:"simple"`
	Parallel []string `mapstructure:"parallel"`
	Complex  []string `mapstructure:"complex"`
}

// WorkflowConfig is a single default-workflow recommendation
type WorkflowConfig struct {
	Skill  string `mapstructure:"skill"`
	Reason string `mapstructure:"reason"`
}

// WorkflowsConfig holds the four fallback recommendations
type WorkflowsConfig struct {
	Sequential   WorkflowConfig `mapstructure:"sequential"`
	Parallel     WorkflowConfig `mapstructure:"parallel"`
	Orchestrated WorkflowConfig `mapstructure:"orchestrated"`
	Default      WorkflowConfig `mapstructure:"default"`
}

// EnhancerConfig configures the optional external prompt enhancer
type EnhancerConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Command         string   `mapstructure:"command"`
	Args            []string `mapstructure:"args"`
	Timeout         string   `mapstructure:"timeout"`
	MinPromptLength int      `mapstructure:"min_prompt_length"`
}

// DepsConfig contains dependency analysis settings
type DepsConfig struct {
	SkillsDir   string         `mapstructure:"skills_dir"`
	CommandsDir string         `mapstructure:"commands_dir"`
	AgentsDir   string         `mapstructure:"agents_dir"`
	Extensions  []string       `mapstructure:"extensions"`
	Output      string         `mapstructure:"output"`
	PluginsDir  string         `mapstructure:"plugins_dir"`
	Plugins     []PluginConfig `mapstructure:"plugins"`
}

// PluginConfig names one plugin group and the skills packaged in it
type PluginConfig struct {
	Name   string   `mapstructure:"name"`
	Skills []string `mapstructure:"skills"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from the global viper instance
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from the given viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	setDefaults(v)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg, err := LoadFrom(viper.New())
	if err != nil {
		cfg = &Config{}
		applyDefaults(cfg)
	}
	return cfg
}

// setDefaults registers the numeric settings for which zero is a valid
// configured value, so they cannot be defaulted by applyDefaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("activation.min_prompt_length", 20)
	v.SetDefault("activation.short_prompt_length", 50)
	v.SetDefault("activation.long_prompt_length", 200)
	v.SetDefault("activation.enhancer.min_prompt_length", 10)
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Rules.FileName == "" {
		cfg.Rules.FileName = "skill-rules.json"
	}
	if cfg.Rules.EnhancementFileName == "" {
		cfg.Rules.EnhancementFileName = "prompt-enhancement-rules.json"
	}
	if cfg.Rules.PluginRoot == "" {
		cfg.Rules.PluginRoot = os.Getenv("CLAUDE_PLUGIN_ROOT")
	}
	if cfg.Rules.Home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Rules.Home = home
		}
	}

	a := &cfg.Activation
	if a.DisplayCap == 0 {
		a.DisplayCap = 5
	}
	if a.SkipMarkers == nil {
		a.SkipMarkers = []string{"[enhanced]", "__skip_enhance__"}
	}

	if a.Vocabulary.Simple == nil {
		a.Vocabulary.Simple = []string{"간단", "단순", "하나", "simple", "single", "quick", "빠르게"}
	}
	if a.Vocabulary.Parallel == nil {
		a.Vocabulary.Parallel = []string{"여러", "동시", "병렬", "parallel", "concurrent", "각각", "모두", "전부"}
	}
	if a.Vocabulary.Complex == nil {
		a.Vocabulary.Complex = []string{"복잡", "전체", "통합", "대규모", "complex", "full", "entire", "시스템", "아키텍처"}
	}

	defaultWorkflow(&a.Workflows.Sequential, "sequential-task-processor", "간단한 순차 작업에 적합")
	defaultWorkflow(&a.Workflows.Parallel, "parallel-task-executor", "독립 작업 병렬 처리에 최적")
	defaultWorkflow(&a.Workflows.Orchestrated, "dynamic-task-orchestrator", "복잡한 프로젝트 조율에 적합")
	defaultWorkflow(&a.Workflows.Default, "agent-workflow-manager", "자동 워크플로우 분석 및 실행")

	if a.Enhancer.Command == "" {
		a.Enhancer.Command = "claude"
	}
	if a.Enhancer.Args == nil {
		a.Enhancer.Args = []string{"--print"}
	}
	if a.Enhancer.Timeout == "" {
		a.Enhancer.Timeout = "30s"
	}

	d := &cfg.Deps
	if d.SkillsDir == "" {
		d.SkillsDir = "src/skills"
	}
	if d.CommandsDir == "" {
		d.CommandsDir = "src/commands"
	}
	if d.AgentsDir == "" {
		d.AgentsDir = "src/agents"
	}
	if d.Extensions == nil {
		d.Extensions = []string{".md", ".js", ".sh", ".py"}
	}
	if d.Output == "" {
		d.Output = "tests/dependency-analysis.json"
	}
	if d.PluginsDir == "" {
		d.PluginsDir = "plugins"
	}
	if d.Plugins == nil {
		d.Plugins = defaultPlugins()
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

func defaultWorkflow(w *WorkflowConfig, skill, reason string) {
	if w.Skill == "" {
		w.Skill = skill
	}
	if w.Reason == "" {
		w.Reason = reason
	}
}

func defaultPlugins() []PluginConfig {
	return []PluginConfig{
		{Name: "workflow-automation", Skills: []string{
			"agent-workflow-manager", "agent-workflow-advisor", "agent-workflow-orchestrator",
			"intelligent-task-router", "sequential-task-processor", "parallel-task-executor",
			"dynamic-task-orchestrator",
		}},
		{Name: "dev-guidelines", Skills: []string{"frontend-dev-guidelines", "backend-dev-guidelines", "error-tracking"}},
		{Name: "tool-creators", Skills: []string{
			"skill-generator-tool", "skill-developer", "command-creator", "subagent-creator", "hooks-creator",
		}},
		{Name: "quality-review", Skills: []string{"iterative-quality-enhancer", "reflection-review"}},
		{Name: "ai-integration", Skills: []string{"dual-ai-loop", "cli-updater", "cli-adapters"}},
		{Name: "prompt-enhancement", Skills: []string{"meta-prompt-generator", "prompt-enhancer"}},
		{Name: "utilities", Skills: []string{"route-tester"}},
	}
}

// EnhancerTimeout returns the parsed enhancer timeout
func (c *Config) EnhancerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Activation.Enhancer.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate validates the configuration
func (c *Config) Validate() error {
	a := c.Activation
	if a.DisplayCap < 1 {
		return fmt.Errorf("activation display_cap must be at least 1, got %d", a.DisplayCap)
	}
	if a.MinPromptLength < 0 {
		return fmt.Errorf("activation min_prompt_length must not be negative")
	}
	if a.ShortPromptLength > a.LongPromptLength {
		return fmt.Errorf("activation short_prompt_length (%d) must not exceed long_prompt_length (%d)",
			a.ShortPromptLength, a.LongPromptLength)
	}

	if _, err := time.ParseDuration(a.Enhancer.Timeout); err != nil {
		return fmt.Errorf("invalid enhancer timeout: %w", err)
	}
	if a.Enhancer.Enabled && a.Enhancer.Command == "" {
		return fmt.Errorf("enhancer command is required when the enhancer is enabled")
	}

	for _, w := range []WorkflowConfig{a.Workflows.Sequential, a.Workflows.Parallel, a.Workflows.Orchestrated, a.Workflows.Default} {
		if w.Skill == "" {
			return fmt.Errorf("every fallback workflow needs a skill")
		}
	}

	owner := make(map[string]string)
	for i, p := range c.Deps.Plugins {
		if p.Name == "" {
			return fmt.Errorf("plugin group %d has no name", i)
		}
		for _, skill := range p.Skills {
			if prev, ok := owner[skill]; ok {
				return fmt.Errorf("skill %s is mapped to both %s and %s", skill, prev, p.Name)
			}
			owner[skill] = p.Name
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Log.Format)
	}

	return nil
}
