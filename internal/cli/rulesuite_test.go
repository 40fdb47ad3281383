package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andywolf/skillkit/internal/activation"
)

func TestReportSuite(t *testing.T) {
	tests := []struct {
		name    string
		result  activation.SuiteResult
		want    []string
		wantErr bool
	}{
		{
			name: "passed",
			result: activation.SuiteResult{
				Summary: activation.SuiteSummary{Total: 1, Passed: 1, PassRate: 100},
				Details: []activation.CaseResult{{ID: "1", Prompt: "API 라우트 테스트해줘", Expected: "route-tester", Actual: "route-tester", Passed: true}},
			},
			want: []string{`✅ [1] "API 라우트 테스트해줘" → route-tester`, "Total: 1", "✅ PASSED (100.0% >= 80%)"},
		},
		{
			name: "partial",
			result: activation.SuiteResult{
				Summary: activation.SuiteSummary{Total: 3, Passed: 2, Failed: 1, PassRate: 200.0 / 3},
			},
			want: []string{"Failed: 1 (33.3%)", "⚠️  PARTIAL PASS (66.7% >= 60%)"},
		},
		{
			name: "failed",
			result: func() activation.SuiteResult {
				miss := activation.CaseResult{
					ID:           "2",
					Prompt:       "a prompt that is well over thirty characters long",
					Expected:     "ghost",
					UnknownSkill: true,
					TopMatches:   []activation.ScoredMatch{{Skill: "route-tester", Score: 10, Priority: "medium"}},
				}
				return activation.SuiteResult{
					Summary:  activation.SuiteSummary{Total: 1, Failed: 1},
					Details:  []activation.CaseResult{miss},
					Failures: []activation.CaseResult{miss},
				}
			}(),
			want: []string{
				`❌ [2] "a prompt that is well over thi..." → (no match) (expected: ghost)`,
				"⚠️  no rule named ghost",
				"     - route-tester (score: 10, priority: medium)",
				"❌ FAILED (0.0% < 60%)",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := reportSuite(&buf, tt.result)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "activation tests failed")
			} else {
				require.NoError(t, err)
			}
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 30))
	assert.Equal(t, "병렬로...", truncate("병렬로 처리해줘", 3))
}

func TestRulesTestCommand(t *testing.T) {
	t.Setenv("CLAUDE_PLUGIN_ROOT", "")
	dir := t.TempDir()
	rules := writeRuleFile(t, dir, validRules)
	cases := filepath.Join(dir, "cases.yaml")
	require.NoError(t, os.WriteFile(cases, []byte(`- prompt: "API 라우트 테스트해줘"
  expected: route-tester
- prompt: "add an express route"
  expected: backend-dev-guidelines
`), 0o644))
	output := filepath.Join(dir, "out", "results.json")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"rules", "test", cases, rules, "-o", output})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		_ = rulesTestCmd.Flags().Set("output", "")
		viper.Reset()
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "✅ PASSED (100.0% >= 80%)")
	assert.Contains(t, stderr.String(), "Results saved: "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var saved activation.SuiteResult
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, 2, saved.Summary.Passed)
	assert.Equal(t, rules, saved.RulesSource)
}
