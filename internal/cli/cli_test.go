package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andywolf/skillkit/internal/activation"
	"github.com/andywolf/skillkit/internal/config"
	"github.com/andywolf/skillkit/internal/events"
	"github.com/andywolf/skillkit/internal/skills"
)

const validRules = `{
  "skills": {
    "route-tester": {
      "type": "domain",
      "enforcement": "suggest",
      "priority": "medium",
      "description": "Test authenticated routes",
      "promptTriggers": {"keywords": ["API 라우트", "route"]}
    },
    "backend-dev-guidelines": {
      "type": "domain",
      "enforcement": "suggest",
      "priority": "high",
      "promptTriggers": {"keywords": ["Route", "express"]}
    }
  }
}`

func writeRuleFile(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, ".claude", "skills", skills.RulesFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func isolatedConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv(activation.SkipEnhanceEnv, "")
	cfg := config.Default()
	cfg.Rules.PluginRoot = ""
	cfg.Rules.Home = t.TempDir()
	return cfg
}

func TestReadRequest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    activation.Request
		wantErr bool
	}{
		{
			name:  "hook payload",
			input: `{"prompt": "API 라우트 테스트해줘", "cwd": "/repo", "session_id": "abc", "hook_event_name": "UserPromptSubmit"}`,
			want:  activation.Request{Prompt: "API 라우트 테스트해줘", Cwd: "/repo", SessionID: "abc"},
		},
		{
			name:  "empty input",
			input: "  \n",
		},
		{
			name:    "malformed input",
			input:   `{"prompt": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readRequest(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActivate_Match(t *testing.T) {
	cfg := isolatedConfig(t)
	cwd := t.TempDir()
	writeRuleFile(t, cwd, validRules)

	out, err := activate(context.Background(), cfg, zap.NewNop(), activation.Request{Prompt: "API 라우트 테스트해줘", Cwd: cwd})
	require.NoError(t, err)
	assert.Contains(t, out, "🎯 SKILL ACTIVATION CHECK")
	assert.Contains(t, out, "💡 SUGGESTED SKILLS:\n  → route-tester\n")
	assert.NotContains(t, out, "backend-dev-guidelines")
}

func TestActivate_Fallback(t *testing.T) {
	cfg := isolatedConfig(t)
	cwd := t.TempDir()
	writeRuleFile(t, cwd, validRules)

	out, err := activate(context.Background(), cfg, zap.NewNop(), activation.Request{Prompt: "여러 작업을 병렬로 처리해줘 결과는 하나로 모아줘", Cwd: cwd})
	require.NoError(t, err)
	assert.Contains(t, out, "→ sequential-task-processor")
}

func TestActivate_NoRulesPrintsNothing(t *testing.T) {
	cfg := isolatedConfig(t)

	out, err := activate(context.Background(), cfg, zap.NewNop(), activation.Request{Prompt: "API 라우트 테스트해줘", Cwd: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestActivate_WritesActivationLog(t *testing.T) {
	cfg := isolatedConfig(t)
	cfg.Activation.LogDir = filepath.Join(t.TempDir(), "logs")
	cwd := t.TempDir()
	writeRuleFile(t, cwd, validRules)

	_, err := activate(context.Background(), cfg, zap.NewNop(), activation.Request{Prompt: "please add an express route", Cwd: cwd, SessionID: "s1"})
	require.NoError(t, err)

	recorded, err := events.ReadEvents(filepath.Join(cfg.Activation.LogDir, events.DefaultFilename))
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, events.OutcomeMatched, recorded[0].Outcome)
	assert.Equal(t, []string{"route-tester", "backend-dev-guidelines"}, recorded[0].Skills)
	assert.Equal(t, "s1", recorded[0].SessionID)
}

func TestActivate_EnhancerFailureIsNotFatal(t *testing.T) {
	cfg := isolatedConfig(t)
	cfg.Activation.Enhancer.Enabled = true
	cfg.Activation.Enhancer.Command = filepath.Join(t.TempDir(), "missing-binary")
	cwd := t.TempDir()
	writeRuleFile(t, cwd, validRules)

	out, err := activate(context.Background(), cfg, zap.NewNop(), activation.Request{Prompt: "API 라우트 테스트해줘 부탁해", Cwd: cwd})
	require.NoError(t, err)
	assert.Contains(t, out, "ACTION: Use Skill tool BEFORE responding")
}

func TestEvaluateRules(t *testing.T) {
	cfg := isolatedConfig(t)
	rules := filepath.Join(t.TempDir(), "custom-rules.json")
	require.NoError(t, os.WriteFile(rules, []byte(validRules), 0o644))

	out, err := evaluateRules(context.Background(), cfg, zap.NewNop(), "API 라우트 테스트해줘", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "💡 SUGGESTED SKILLS:\n  → route-tester\n")

	_, err = evaluateRules(context.Background(), cfg, zap.NewNop(), "API 라우트 테스트해줘", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule file not found")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"skills": {"x": {"type": "domain"}}}`), 0o644))
	_, err = evaluateRules(context.Background(), cfg, zap.NewNop(), "anything", bad)
	require.ErrorIs(t, err, skills.ErrConfigurationInvalid)
}

func TestValidateRules(t *testing.T) {
	dir := t.TempDir()
	valid := writeRuleFile(t, dir, validRules)

	var buf bytes.Buffer
	require.NoError(t, validateRules(&buf, []string{valid}, false))
	out := buf.String()
	assert.Contains(t, out, "✅ "+valid+" is valid")
	assert.Contains(t, out, `WARNING: [backend-dev-guidelines] missing recommended field "description"`)
	assert.Contains(t, out, `keyword "route" is used by multiple skills: route-tester, backend-dev-guidelines`)
	assert.Contains(t, out, "Skills: 2 (2 with prompt triggers)")
	assert.Contains(t, out, "  high     1\n")

	buf.Reset()
	err := validateRules(&buf, []string{valid}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 warning(s)")
}

func TestValidateRules_Invalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"skills": {"route-tester": {"type": "domain", "enforcement": "suggest"}}}`), 0o644))

	var buf bytes.Buffer
	err := validateRules(&buf, []string{p}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, skills.ErrConfigurationInvalid))
	assert.Contains(t, buf.String(), "[route-tester] priority")
	assert.Contains(t, buf.String(), "1 skill(s) with problems: route-tester")
}

func TestValidateRules_Missing(t *testing.T) {
	var buf bytes.Buffer
	err := validateRules(&buf, []string{filepath.Join(t.TempDir(), "nope.json")}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no skill rule file found")
}

func TestBuildDeps(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "src", "skills", "route-tester", "SKILL.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(`Use Skill("backend-dev-guidelines") first.`), 0o644))

	report, err := buildDeps(root, config.Default().Deps, zap.NewNop())
	require.NoError(t, err)
	require.NotEmpty(t, report.Dependencies.SkillToSkill)
	edge := report.Dependencies.SkillToSkill[0]
	assert.Equal(t, "utilities", edge.SourcePlugin)
	assert.Equal(t, "dev-guidelines", edge.TargetPlugin)

	_, err = buildDeps(t.TempDir(), config.Default().Deps, zap.NewNop())
	require.Error(t, err)
}

func TestDepsCommand(t *testing.T) {
	t.Setenv("CLAUDE_PLUGIN_ROOT", "")
	root := t.TempDir()
	p := filepath.Join(root, "src", "skills", "alpha", "SKILL.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(`Skill("beta")`), 0o644))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"deps", root, "--json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		viper.Reset()
	})

	require.NoError(t, rootCmd.Execute())

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Contains(t, decoded, "summary")
	assert.Contains(t, stderr.String(), "Report saved")

	_, err := os.Stat(filepath.Join(root, "tests", "dependency-analysis.json"))
	assert.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(stdout.String(), "skillkit "))
}
