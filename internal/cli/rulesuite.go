package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/andywolf/skillkit/internal/activation"
	"github.com/andywolf/skillkit/internal/skills"
)

var rulesTestCmd = &cobra.Command{
	Use:   "test <cases> [rules]",
	Short: "Check that test prompts activate the expected skills",
	Long: `Run a list of test prompts against a skill rule file and check that the
expected skill ranks first for each. Every keyword hit scores 10 and every
intent pattern hit 20; ties go to the more urgent priority.

The cases file is a JSON or YAML list of {id, prompt, expected}. The suite
passes at 80%, partially passes at 60% and fails below that.

Example:
  skillkit rules test tests/activation-cases.json
  skillkit rules test cases.yaml src/skills/skill-rules.json -o tests/activation-test-results.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRulesTest,
}

func init() {
	rulesCmd.AddCommand(rulesTestCmd)

	rulesTestCmd.Flags().StringP("output", "o", "", "Write the detailed results as JSON to this file")
}

func runRulesTest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	defer func() { _ = logger.Sync() }()
	if err != nil {
		return err
	}

	cases, err := activation.LoadTestCases(args[0])
	if err != nil {
		return err
	}

	paths, err := rulePaths(cfg.Rules, args[1:])
	if err != nil {
		return err
	}
	rs, err := skills.Load(paths)
	if errors.Is(err, skills.ErrConfigurationMissing) {
		return fmt.Errorf("no skill rule file found (looked in: %v)", paths)
	}
	if err != nil {
		return err
	}

	result := activation.NewMatcher(activation.WithLogger(logger)).RunSuite(cases, rs)

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if err := writeSuiteResult(output, result); err != nil {
			return err
		}
	}

	err = reportSuite(cmd.OutOrStdout(), result)
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "📁 Results saved: %s\n", output)
	}
	return err
}

func writeSuiteResult(path string, result activation.SuiteResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// reportSuite prints the suite results and returns an error when the
// pass rate is below the partial threshold.
func reportSuite(out io.Writer, result activation.SuiteResult) error {
	r := lipgloss.NewRenderer(out)
	okStyle := r.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle := r.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle := r.NewStyle().Foreground(lipgloss.Color("3"))

	for _, d := range result.Details {
		prompt := truncate(d.Prompt, 30)
		if d.Passed {
			fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✅ [%s] %q → %s", d.ID, prompt, d.Actual)))
			continue
		}
		actual := d.Actual
		if actual == "" {
			actual = "(no match)"
		}
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("❌ [%s] %q → %s (expected: %s)", d.ID, prompt, actual, d.Expected)))
		if d.UnknownSkill {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("   ⚠️  no rule named %s", d.Expected)))
		}
	}

	s := result.Summary
	failRate := 0.0
	if s.Total > 0 {
		failRate = 100 - s.PassRate
	}
	fmt.Fprintf(out, "\nTotal: %d\n", s.Total)
	fmt.Fprintf(out, "  Passed: %d (%.1f%%)\n", s.Passed, s.PassRate)
	fmt.Fprintf(out, "  Failed: %d (%.1f%%)\n", s.Failed, failRate)

	if len(result.Failures) > 0 {
		fmt.Fprintln(out, "\nFailures:")
		for _, f := range result.Failures {
			fmt.Fprintf(out, "\n[%s] %q\n", f.ID, f.Prompt)
			fmt.Fprintf(out, "   expected: %s\n", f.Expected)
			fmt.Fprintf(out, "   actual:   %s\n", f.Actual)
			for _, m := range f.TopMatches {
				fmt.Fprintf(out, "     - %s (score: %d, priority: %s)\n", m.Skill, m.Score, m.Priority)
			}
		}
	}

	fmt.Fprintln(out)
	switch s.Verdict() {
	case activation.VerdictPassed:
		fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✅ PASSED (%.1f%% >= %.0f%%)", s.PassRate, activation.PassThreshold)))
	case activation.VerdictPartial:
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("⚠️  PARTIAL PASS (%.1f%% >= %.0f%%)", s.PassRate, activation.PartialThreshold)))
	default:
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("❌ FAILED (%.1f%% < %.0f%%)", s.PassRate, activation.PartialThreshold)))
		return fmt.Errorf("activation tests failed: %d of %d passed", s.Passed, s.Total)
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
