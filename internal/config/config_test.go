package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "negative display cap",
			mutate:  func(c *Config) { c.Activation.DisplayCap = -1 },
			wantErr: true,
			errMsg:  "display_cap",
		},
		{
			name: "short threshold above long threshold",
			mutate: func(c *Config) {
				c.Activation.ShortPromptLength = 300
			},
			wantErr: true,
			errMsg:  "must not exceed long_prompt_length",
		},
		{
			name:    "invalid enhancer timeout",
			mutate:  func(c *Config) { c.Activation.Enhancer.Timeout = "soon" },
			wantErr: true,
			errMsg:  "invalid enhancer timeout",
		},
		{
			name: "enabled enhancer without command",
			mutate: func(c *Config) {
				c.Activation.Enhancer.Enabled = true
				c.Activation.Enhancer.Command = ""
			},
			wantErr: true,
			errMsg:  "enhancer command is required",
		},
		{
			name:    "workflow without skill",
			mutate:  func(c *Config) { c.Activation.Workflows.Parallel.Skill = "" },
			wantErr: true,
			errMsg:  "needs a skill",
		},
		{
			name: "unnamed plugin group",
			mutate: func(c *Config) {
				c.Deps.Plugins = []PluginConfig{{Skills: []string{"a"}}}
			},
			wantErr: true,
			errMsg:  "has no name",
		},
		{
			name: "skill in two plugin groups",
			mutate: func(c *Config) {
				c.Deps.Plugins = []PluginConfig{
					{Name: "one", Skills: []string{"a"}},
					{Name: "two", Skills: []string{"a"}},
				}
			},
			wantErr: true,
			errMsg:  "mapped to both one and two",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: true,
			errMsg:  "invalid log level",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errMsg:  "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.errMsg), "error %q should contain %q", err, tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Setenv("CLAUDE_PLUGIN_ROOT", "/opt/plugin")

	cfg := Default()

	assert.Equal(t, "skill-rules.json", cfg.Rules.FileName)
	assert.Equal(t, "prompt-enhancement-rules.json", cfg.Rules.EnhancementFileName)
	assert.Equal(t, "/opt/plugin", cfg.Rules.PluginRoot)
	assert.Equal(t, 5, cfg.Activation.DisplayCap)
	assert.Equal(t, 20, cfg.Activation.MinPromptLength)
	assert.Equal(t, 50, cfg.Activation.ShortPromptLength)
	assert.Equal(t, 200, cfg.Activation.LongPromptLength)
	assert.Contains(t, cfg.Activation.Vocabulary.Simple, "간단")
	assert.Contains(t, cfg.Activation.Vocabulary.Parallel, "병렬")
	assert.Contains(t, cfg.Activation.Vocabulary.Complex, "complex")
	assert.Equal(t, "sequential-task-processor", cfg.Activation.Workflows.Sequential.Skill)
	assert.Equal(t, "agent-workflow-manager", cfg.Activation.Workflows.Default.Skill)
	assert.False(t, cfg.Activation.Enhancer.Enabled)
	assert.Equal(t, 30*time.Second, cfg.EnhancerTimeout())
	assert.Equal(t, "src/skills", cfg.Deps.SkillsDir)
	assert.Equal(t, []string{".md", ".js", ".sh", ".py"}, cfg.Deps.Extensions)
	assert.Equal(t, "tests/dependency-analysis.json", cfg.Deps.Output)
	assert.Equal(t, "plugins", cfg.Deps.PluginsDir)
	assert.NotEmpty(t, cfg.Deps.Plugins)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Activation: ActivationConfig{
			DisplayCap: 3,
			Vocabulary: VocabularyConfig{Simple: []string{"tiny"}},
			Workflows:  WorkflowsConfig{Parallel: WorkflowConfig{Skill: "fan-out"}},
		},
		Deps: DepsConfig{Plugins: []PluginConfig{}},
	}
	applyDefaults(cfg)

	assert.Equal(t, 3, cfg.Activation.DisplayCap)
	assert.Equal(t, []string{"tiny"}, cfg.Activation.Vocabulary.Simple)
	assert.Equal(t, "fan-out", cfg.Activation.Workflows.Parallel.Skill)
	assert.NotEmpty(t, cfg.Activation.Workflows.Parallel.Reason)
	assert.Empty(t, cfg.Deps.Plugins, "an explicit empty mapping stays empty")
}

func TestLoadFrom_YAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
activation:
  display_cap: 3
  vocabulary:
    parallel: [fan-out]
  enhancer:
    enabled: true
    timeout: 5s
deps:
  skills_dir: skills
  plugins:
    - name: core
      skills: [alpha, beta]
    - name: extras
      skills: [gamma]
log:
  level: debug
`)))

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Activation.DisplayCap)
	assert.Equal(t, []string{"fan-out"}, cfg.Activation.Vocabulary.Parallel)
	assert.Contains(t, cfg.Activation.Vocabulary.Simple, "simple", "unset vocabularies keep defaults")
	assert.True(t, cfg.Activation.Enhancer.Enabled)
	assert.Equal(t, 5*time.Second, cfg.EnhancerTimeout())
	assert.Equal(t, "skills", cfg.Deps.SkillsDir)
	require.Len(t, cfg.Deps.Plugins, 2)
	assert.Equal(t, "core", cfg.Deps.Plugins[0].Name)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Deps.Plugins[0].Skills)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFrom_ZeroThresholdsAreKept(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
activation:
  min_prompt_length: 0
  short_prompt_length: 0
  enhancer:
    min_prompt_length: 0
`)))

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0, cfg.Activation.MinPromptLength)
	assert.Equal(t, 0, cfg.Activation.ShortPromptLength)
	assert.Equal(t, 0, cfg.Activation.Enhancer.MinPromptLength)
	assert.Equal(t, 200, cfg.Activation.LongPromptLength, "unset thresholds keep defaults")
}
