package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andywolf/skillkit/internal/config"
	"github.com/andywolf/skillkit/internal/depgraph"
)

var depsCmd = &cobra.Command{
	Use:   "deps [root]",
	Short: "Analyze skill dependencies",
	Long: `Scan a skills repository for references between skills, and from
commands and agents to skills, and report the references that cross plugin
groups. The report is printed and saved as JSON under the repository root.

Example:
  skillkit deps
  skillkit deps ./my-skills-repo --json
  skillkit deps --output build/deps.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)

	depsCmd.Flags().Bool("json", false, "Print the JSON report instead of the text analysis")
	depsCmd.Flags().StringP("output", "o", "", "Report file (default from deps.output, relative to root)")
	depsCmd.Flags().Bool("no-save", false, "Do not write the report file")
}

func runDeps(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	defer func() { _ = logger.Sync() }()
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	report, err := buildDeps(root, cfg.Deps, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else if err := report.Render(out); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if noSave, _ := cmd.Flags().GetBool("no-save"); noSave {
		return nil
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = cfg.Deps.Output
		if !filepath.IsAbs(output) {
			output = filepath.Join(root, output)
		}
	}
	if err := report.WriteFile(output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "💾 Report saved: %s\n", output)
	return nil
}

func buildDeps(root string, cfg config.DepsConfig, logger *zap.Logger) (*depgraph.Report, error) {
	builder := depgraph.NewBuilder(root,
		depgraph.LayoutFromConfig(cfg),
		depgraph.MappingFromConfig(cfg.Plugins),
		depgraph.WithLogger(logger))

	report, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("dependency analysis failed: %w", err)
	}
	return report, nil
}
