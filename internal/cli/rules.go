package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/andywolf/skillkit/internal/config"
	"github.com/andywolf/skillkit/internal/skills"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect skill rule files",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a skill-rules.json file",
	Long: `Validate a skill rule file: structure, required fields, enumerated
values and intent regexes. Skills without a description and keywords shared
by several skills are reported as warnings.

Without a path, the file the activation hook would use is validated
(project, then plugin, then home directory).

Example:
  skillkit rules validate
  skillkit rules validate .claude/skills/skill-rules.json --strict`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesValidate,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesValidateCmd)

	rulesValidateCmd.Flags().Bool("strict", false, "Treat warnings as errors")
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	defer func() { _ = logger.Sync() }()
	if err != nil {
		return err
	}

	paths, err := rulePaths(cfg.Rules, args)
	if err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	return validateRules(cmd.OutOrStdout(), paths, strict)
}

func rulePaths(cfg config.RulesConfig, args []string) ([]string, error) {
	if len(args) > 0 {
		return []string{args[0]}, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	loc := skills.Locations{Cwd: cwd, PluginRoot: cfg.PluginRoot, Home: cfg.Home}
	return skills.Candidates(loc, cfg.FileName), nil
}

func validateRules(out io.Writer, paths []string, strict bool) error {
	r := lipgloss.NewRenderer(out)
	okStyle := r.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle := r.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle := r.NewStyle().Foreground(lipgloss.Color("3"))

	rs, err := skills.Load(paths)
	if errors.Is(err, skills.ErrConfigurationMissing) {
		return fmt.Errorf("no skill rule file found (looked in: %v)", paths)
	}

	var invalid *skills.InvalidError
	if errors.As(err, &invalid) {
		fmt.Fprintln(out, errStyle.Render("❌ "+invalid.Path))
		for _, p := range invalid.Problems {
			fmt.Fprintln(out, errStyle.Render("  ❌ ERROR: "+p.String()))
		}
		if names := invalid.Skills(); len(names) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("%d skill(s) with problems: %s", len(names), strings.Join(names, ", "))))
		}
		return fmt.Errorf("%d problem(s) found: %w", len(invalid.Problems), skills.ErrConfigurationInvalid)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, okStyle.Render("✅ "+rs.Source+" is valid"))

	warnings := skills.Lint(rs)
	for _, w := range warnings {
		fmt.Fprintln(out, warnStyle.Render("  ⚠️  WARNING: "+w.String()))
	}

	stats := skills.ComputeStats(rs)
	fmt.Fprintf(out, "\nSkills: %d (%d with prompt triggers)\n", stats.Skills, stats.WithTriggers)
	for _, p := range skills.Priorities {
		fmt.Fprintf(out, "  %-8s %d\n", p, stats.ByPriority[p])
	}
	fmt.Fprintf(out, "Enhancement rules: %d\n", stats.Enhancements)

	if strict && len(warnings) > 0 {
		return fmt.Errorf("%d warning(s) found", len(warnings))
	}
	return nil
}
