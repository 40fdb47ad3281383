package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/andywolf/skillkit/internal/depgraph"
	"github.com/andywolf/skillkit/internal/skills"
)

var rulesSplitCmd = &cobra.Command{
	Use:   "split [root]",
	Short: "Split a skill rule file into per-plugin rule files",
	Long: `Split the repository's combined skill-rules.json into one rule file per
plugin group (deps.plugins), written to <plugins_dir>/<plugin>/skills/.
Rules keep every field and their order; version and notes are copied into
each file.

Example:
  skillkit rules split
  skillkit rules split ./my-skills-repo --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesSplit,
}

func init() {
	rulesCmd.AddCommand(rulesSplitCmd)

	rulesSplitCmd.Flags().String("source", "", "Combined rule file (default <root>/<deps.skills_dir>/skill-rules.json)")
	rulesSplitCmd.Flags().String("out", "", "Plugins directory (default <root>/<deps.plugins_dir>)")
	rulesSplitCmd.Flags().Bool("dry-run", false, "Show what would be written without writing")
}

func runRulesSplit(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	defer func() { _ = logger.Sync() }()
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	source, _ := cmd.Flags().GetString("source")
	if source == "" {
		source = filepath.Join(root, cfg.Deps.SkillsDir, cfg.Rules.FileName)
	}
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = filepath.Join(root, cfg.Deps.PluginsDir)
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	return splitRules(cmd.OutOrStdout(), source, outDir, depgraph.MappingFromConfig(cfg.Deps.Plugins), dryRun)
}

func splitRules(out io.Writer, source, outDir string, mapping *depgraph.PluginMapping, dryRun bool) error {
	r := lipgloss.NewRenderer(out)
	okStyle := r.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle := r.NewStyle().Foreground(lipgloss.Color("3"))

	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("failed to read rule file: %w", err)
	}
	doc, err := skills.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	result := depgraph.SplitRules(doc, mapping)
	for _, shard := range result.Shards {
		path := shard.Path(outDir)
		if !dryRun {
			if path, err = shard.WriteFile(outDir); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✓ %s: %d skills → %s", shard.Plugin, len(shard.Skills), path)))
		if len(shard.Missing) > 0 {
			fmt.Fprintln(out, warnStyle.Render("  ⚠️  no rule for: "+strings.Join(shard.Missing, ", ")))
		}
	}
	if len(result.Unassigned) > 0 {
		fmt.Fprintln(out, warnStyle.Render("⚠️  not in any plugin group: "+strings.Join(result.Unassigned, ", ")))
	}

	if dryRun {
		fmt.Fprintf(out, "\n%d plugin rule files would be written (dry run)\n", len(result.Shards))
	} else {
		fmt.Fprintln(out)
		fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✅ Split into %d plugin rule files", len(result.Shards))))
	}
	return nil
}
