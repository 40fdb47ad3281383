package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/andywolf/skillkit/internal/config"
	"github.com/andywolf/skillkit/internal/logging"
	"github.com/andywolf/skillkit/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "skillkit",
	Short: "skillkit - skill activation and dependency analysis",
	Long: `skillkit decides which skills a prompt should activate and analyzes
the dependencies between skills, commands and agents.

It runs as a prompt-submit hook (skillkit activate) reading the prompt from
stdin, and as a repository tool for validating rule files and finding
cross-plugin skill references.

Example:
  echo '{"prompt": "API 라우트 테스트해줘", "cwd": "."}' | skillkit activate
  skillkit deps ./my-skills-repo`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command with ctx
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Set version for --version flag
	rootCmd.Version = version.Get().Version
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .skillkit.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".skillkit")
	}

	viper.SetEnvPrefix("SKILLKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// loadConfig loads and validates the configuration and builds the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zap.NewNop(), fmt.Errorf("failed to load config: %w", err)
	}
	if viper.GetBool("verbose") {
		cfg.Log.Level = "debug"
	}
	logger := logging.New(cfg.Log)

	if err := cfg.Validate(); err != nil {
		return nil, logger, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger, nil
}
