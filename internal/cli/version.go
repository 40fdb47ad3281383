package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andywolf/skillkit/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including commit hash and build date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal version: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			fmt.Fprintln(out, info.Verbose())
		} else {
			fmt.Fprintln(out, info.String())
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "print verbose version information")
	versionCmd.Flags().Bool("json", false, "print version information as JSON")
	rootCmd.AddCommand(versionCmd)
}
