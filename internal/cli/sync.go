package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andywolf/skillkit/internal/depgraph"
)

var rulesSyncCmd = &cobra.Command{
	Use:   "sync [root]",
	Short: "Compare plugin skill directories with their rule files",
	Long: `For every plugin under <root>/<deps.plugins_dir>, compare the skill
directories that contain a SKILL.md with the skills registered in the
plugin's skills/skill-rules.json. Exits non-zero when any plugin is out of
sync.

Example:
  skillkit rules sync
  skillkit rules sync ./my-skills-repo --suggest`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesSync,
}

func init() {
	rulesCmd.AddCommand(rulesSyncCmd)

	rulesSyncCmd.Flags().Bool("json", false, "Print the results as JSON")
	rulesSyncCmd.Flags().Bool("suggest", false, "Print rule stubs for unregistered skills")
}

func runRulesSync(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	defer func() { _ = logger.Sync() }()
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	suggest, _ := cmd.Flags().GetBool("suggest")

	return checkSync(cmd.OutOrStdout(), filepath.Join(root, cfg.Deps.PluginsDir), asJSON, suggest, logger)
}

func checkSync(out io.Writer, pluginsDir string, asJSON, suggest bool, logger *zap.Logger) error {
	results, err := depgraph.CheckSync(pluginsDir, logger)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no plugins with skills found in %s", pluginsDir)
	}

	outOfSync := 0
	for _, r := range results {
		if !r.InSync {
			outOfSync++
		}
	}

	if asJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		renderSync(out, results, outOfSync)
	}

	if suggest {
		for _, r := range results {
			for _, skill := range r.MissingInRules {
				fmt.Fprintf(out, "\n# %s/%s\n%s\n", r.Plugin, skill, ruleStub(skill))
			}
		}
	}

	if outOfSync > 0 {
		return fmt.Errorf("%d plugin(s) out of sync", outOfSync)
	}
	return nil
}

func renderSync(out io.Writer, results []depgraph.SyncResult, outOfSync int) {
	r := lipgloss.NewRenderer(out)
	okStyle := r.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle := r.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle := r.NewStyle().Foreground(lipgloss.Color("3"))

	fmt.Fprintf(out, "Plugins: %d\n", len(results))
	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("  ✅ in sync: %d", len(results)-outOfSync)))
	fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("  ⚠️  out of sync: %d", outOfSync)))

	for _, res := range results {
		if res.InSync {
			continue
		}
		fmt.Fprintf(out, "\n[%s]\n", res.Plugin)
		for _, skill := range res.MissingInRules {
			fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("  🚨 %s: directory without a rule (add it to skill-rules.json)", skill)))
		}
		for _, skill := range res.ExtraInRules {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("  ⚠️  %s: rule without a directory (remove the rule or add %s/%s)", skill, skill, depgraph.SkillManifest)))
		}
	}

	if outOfSync == 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, okStyle.Render("✅ All plugins are in sync"))
	}
}

func ruleStub(skill string) string {
	stub := map[string]any{
		skill: map[string]any{
			"type":        "domain",
			"enforcement": "suggest",
			"priority":    "medium",
			"promptTriggers": map[string]any{
				"keywords":       []string{},
				"intentPatterns": []string{},
			},
		},
	}
	data, _ := json.MarshalIndent(stub, "", "  ")
	return string(data)
}
