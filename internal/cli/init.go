package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andywolf/skillkit/internal/config"
	"github.com/andywolf/skillkit/internal/skills"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize project configuration",
	Long: `Initialize skillkit for the current project.

This creates a .skillkit.yaml file with sensible defaults that you can
customize, and installs a starter .claude/skills/skill-rules.json unless one
already exists.

Example:
  skillkit init
  skillkit init --log-dir .claude/logs --enhancer`,
	Args: cobra.NoArgs,
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("log-dir", "", "Directory for the activation log (disabled when empty)")
	initCmd.Flags().Bool("enhancer", false, "Enable the external prompt enhancer")
	initCmd.Flags().Bool("no-rules", false, "Do not install the starter rule file")
	initCmd.Flags().Bool("force", false, "Overwrite existing files")
}

type projectConfig struct {
	Activation struct {
		DisplayCap int    `yaml:"display_cap"`
		LogDir     string `yaml:"log_dir,omitempty"`
		Enhancer   struct {
			Enabled bool   `yaml:"enabled"`
			Command string `yaml:"command"`
			Timeout string `yaml:"timeout"`
		} `yaml:"enhancer"`
	} `yaml:"activation"`
	Deps struct {
		SkillsDir   string `yaml:"skills_dir"`
		CommandsDir string `yaml:"commands_dir"`
		AgentsDir   string `yaml:"agents_dir"`
		Output      string `yaml:"output"`
		PluginsDir  string `yaml:"plugins_dir"`
	} `yaml:"deps"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

type initOptions struct {
	LogDir   string
	Enhancer bool
	NoRules  bool
	Force    bool
}

func initProject(cmd *cobra.Command, args []string) error {
	var opts initOptions
	opts.LogDir, _ = cmd.Flags().GetString("log-dir")
	opts.Enhancer, _ = cmd.Flags().GetBool("enhancer")
	opts.NoRules, _ = cmd.Flags().GetBool("no-rules")
	opts.Force, _ = cmd.Flags().GetBool("force")

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	return writeProjectFiles(cmd.OutOrStdout(), cwd, opts)
}

func writeProjectFiles(out io.Writer, dir string, opts initOptions) error {
	configPath := filepath.Join(dir, ".skillkit.yaml")
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	defaults := config.Default()

	cfg := projectConfig{}
	cfg.Activation.DisplayCap = defaults.Activation.DisplayCap
	cfg.Activation.LogDir = opts.LogDir
	cfg.Activation.Enhancer.Enabled = opts.Enhancer
	cfg.Activation.Enhancer.Command = defaults.Activation.Enhancer.Command
	cfg.Activation.Enhancer.Timeout = defaults.Activation.Enhancer.Timeout
	cfg.Deps.SkillsDir = defaults.Deps.SkillsDir
	cfg.Deps.CommandsDir = defaults.Deps.CommandsDir
	cfg.Deps.AgentsDir = defaults.Deps.AgentsDir
	cfg.Deps.Output = defaults.Deps.Output
	cfg.Deps.PluginsDir = defaults.Deps.PluginsDir
	cfg.Log.Level = defaults.Log.Level
	cfg.Log.Format = defaults.Log.Format

	// Write config file
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# skillkit configuration
# Plugin groups for "skillkit deps" go under deps.plugins:
#   plugins:
#     - name: dev-guidelines
#       skills: [backend-dev-guidelines, error-tracking]

`

	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(out, "Created %s\n", configPath)

	if !opts.NoRules {
		rulesPath, installed, err := skills.InstallStarterRules(dir, opts.Force)
		if err != nil {
			return err
		}
		if installed {
			fmt.Fprintf(out, "Created %s\n", rulesPath)
		} else {
			fmt.Fprintf(out, "Kept existing %s\n", rulesPath)
		}
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Edit the skill rules for your project's skills")
	fmt.Fprintln(out, "  2. Run 'skillkit rules validate' to check them")
	fmt.Fprintln(out, "  3. Register 'skillkit activate' as a UserPromptSubmit hook")

	return nil
}
