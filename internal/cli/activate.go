package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andywolf/skillkit/internal/activation"
	"github.com/andywolf/skillkit/internal/config"
	"github.com/andywolf/skillkit/internal/events"
	"github.com/andywolf/skillkit/internal/skills"
)

var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Suggest skills for a prompt (prompt-submit hook)",
	Long: `Read a prompt-submit hook payload from stdin and print which skills the
prompt should activate, grouped by priority, or a default workflow
recommendation when no rule matched.

Nothing is printed when the prompt is skipped, when no skill-rules.json is
found, or when a short prompt matched nothing. The command always exits 0
so that it never blocks the host; failures are only logged at debug level.

With --rules, the prompt is evaluated against that rule file directly, with
no rule discovery, skip markers or activation log, and errors are reported.

Example:
  echo '{"prompt": "API 라우트 테스트해줘", "cwd": "/repo"}' | skillkit activate
  skillkit activate --prompt "여러 작업을 병렬로 처리해줘" --cwd /repo
  skillkit activate --prompt "Sentry 에러 트래킹 추가해줘" --rules ./skill-rules.json`,
	Args: cobra.NoArgs,
	RunE: runActivate,
}

func init() {
	rootCmd.AddCommand(activateCmd)

	activateCmd.Flags().String("prompt", "", "Prompt text (instead of reading the hook payload from stdin)")
	activateCmd.Flags().String("cwd", "", "Project directory used to locate rule files")
	activateCmd.Flags().String("rules", "", "Evaluate against this rule file instead of discovering one")
}

func runActivate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	defer func() { _ = logger.Sync() }()
	if err != nil {
		logger.Debug("activation skipped", zap.Error(err))
		return nil
	}

	prompt, _ := cmd.Flags().GetString("prompt")
	cwd, _ := cmd.Flags().GetString("cwd")

	if rulesPath, _ := cmd.Flags().GetString("rules"); rulesPath != "" {
		out, err := evaluateRules(cmd.Context(), cfg, logger, prompt, rulesPath)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}

	var req activation.Request
	if cmd.Flags().Changed("prompt") {
		req = activation.Request{Prompt: prompt, Cwd: cwd}
	} else {
		req, err = readRequest(cmd.InOrStdin())
		if err != nil {
			logger.Debug("activation skipped", zap.Error(err))
			return nil
		}
		if cwd != "" {
			req.Cwd = cwd
		}
	}

	out, err := activate(cmd.Context(), cfg, logger, req)
	if err != nil {
		logger.Debug("activation check failed", zap.Error(err))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// readRequest decodes the hook payload.
func readRequest(r io.Reader) (activation.Request, error) {
	var req activation.Request
	data, err := io.ReadAll(r)
	if err != nil {
		return req, fmt.Errorf("failed to read hook input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse hook input: %w", err)
	}
	return req, nil
}

// checkerOptions returns the logger and, when enabled, enhancer options.
func checkerOptions(cfg *config.Config, logger *zap.Logger) []activation.CheckerOption {
	opts := []activation.CheckerOption{activation.WithCheckerLogger(logger)}
	if cfg.Activation.Enhancer.Enabled {
		opts = append(opts, activation.WithEnhancer(&activation.CommandEnhancer{
			Command: cfg.Activation.Enhancer.Command,
			Args:    cfg.Activation.Enhancer.Args,
			Timeout: cfg.EnhancerTimeout(),
		}))
	}
	return opts
}

// activate runs one activation check and renders its output.
func activate(ctx context.Context, cfg *config.Config, logger *zap.Logger, req activation.Request) (string, error) {
	opts := checkerOptions(cfg, logger)

	if cfg.Activation.LogDir != "" {
		sink, err := events.NewFileSink(cfg.Activation.LogDir)
		if err != nil {
			logger.Warn("activation log disabled", zap.Error(err))
		} else {
			defer func() {
				if err := sink.Close(); err != nil {
					logger.Warn("failed to close activation log", zap.Error(err))
				}
			}()
			opts = append(opts, activation.WithEventSink(sink))
		}
	}

	report, err := activation.NewChecker(cfg, opts...).Check(ctx, req)
	if err != nil {
		return "", err
	}
	return activation.Render(report), nil
}

// evaluateRules renders the activation output of prompt against one rule file.
func evaluateRules(ctx context.Context, cfg *config.Config, logger *zap.Logger, prompt, path string) (string, error) {
	rs, err := skills.Load([]string{path})
	if errors.Is(err, skills.ErrConfigurationMissing) {
		return "", fmt.Errorf("rule file not found: %s", path)
	}
	if err != nil {
		return "", err
	}

	report := activation.NewChecker(cfg, checkerOptions(cfg, logger)...).Evaluate(ctx, prompt, rs)
	return activation.Render(report), nil
}
