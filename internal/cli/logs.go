package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andywolf/skillkit/internal/events"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the activation log",
	Long: `Show recorded activation checks from activations.jsonl in the
activation log directory (activation.log_dir).

Example:
  skillkit logs
  skillkit logs --outcome fallback --since 24h
  skillkit logs --skill route-tester --tail 50 --json`,
	Args: cobra.NoArgs,
	RunE: showLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().String("dir", "", "Activation log directory (default from activation.log_dir)")
	logsCmd.Flags().StringSlice("outcome", nil, "Only show these outcomes (matched, fallback, silent)")
	logsCmd.Flags().String("skill", "", "Only show checks that matched this skill")
	logsCmd.Flags().Int("tail", 20, "Number of entries to show from the end (0 for all)")
	logsCmd.Flags().String("since", "", "Show entries since timestamp (e.g., 2024-01-01T00:00:00Z) or duration (e.g., 1h)")
	logsCmd.Flags().Bool("json", false, "Print entries as JSON lines")
}

type logsOptions struct {
	Outcomes []events.Outcome
	Skill    string
	Tail     int
	Since    time.Time
	JSON     bool
}

func showLogs(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	defer func() { _ = logger.Sync() }()
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Activation.LogDir
	}

	var opts logsOptions
	outcomes, _ := cmd.Flags().GetStringSlice("outcome")
	if opts.Outcomes, err = parseOutcomes(outcomes); err != nil {
		return err
	}
	opts.Skill, _ = cmd.Flags().GetString("skill")
	opts.Tail, _ = cmd.Flags().GetInt("tail")
	opts.JSON, _ = cmd.Flags().GetBool("json")

	sinceStr, _ := cmd.Flags().GetString("since")
	if opts.Since, err = parseSince(sinceStr, time.Now()); err != nil {
		return err
	}

	return printLogs(cmd.OutOrStdout(), dir, opts)
}

func parseOutcomes(values []string) ([]events.Outcome, error) {
	var outcomes []events.Outcome
	for _, v := range values {
		o := events.Outcome(strings.ToLower(strings.TrimSpace(v)))
		switch o {
		case events.OutcomeMatched, events.OutcomeFallback, events.OutcomeSilent:
			outcomes = append(outcomes, o)
		default:
			return nil, fmt.Errorf("invalid --outcome value: %s (must be matched, fallback, or silent)", v)
		}
	}
	return outcomes, nil
}

func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	// Try parsing as duration first
	if dur, err := time.ParseDuration(value); err == nil {
		return now.Add(-dur), nil
	}
	since, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since value: %s", value)
	}
	return since, nil
}

func printLogs(out io.Writer, dir string, opts logsOptions) error {
	if dir == "" {
		return fmt.Errorf("activation log not configured (set activation.log_dir or use --dir)")
	}

	all, err := events.ReadEvents(filepath.Join(dir, events.DefaultFilename))
	if err != nil {
		return err
	}

	selected := events.FilterByOutcome(all, opts.Outcomes...)
	if opts.Skill != "" {
		selected = events.FilterBySkill(selected, opts.Skill)
	}
	if !opts.Since.IsZero() {
		selected = events.FilterSince(selected, opts.Since)
	}
	selected = events.Tail(selected, opts.Tail)

	for _, e := range selected {
		if opts.JSON {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}
		fmt.Fprintf(out, "[%s] %-8s %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Outcome, describeEvent(e))
	}
	return nil
}

func describeEvent(e events.ActivationEvent) string {
	switch {
	case len(e.Skills) > 0:
		return strings.Join(e.Skills, ", ")
	case e.Recommendation != "":
		return "→ " + e.Recommendation
	case len(e.Enhancements) > 0:
		return "enhancements: " + strings.Join(e.Enhancements, ", ")
	default:
		return fmt.Sprintf("(%d chars)", e.PromptLength)
	}
}
