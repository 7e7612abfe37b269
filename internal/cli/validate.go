package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <component.json>",
	Short: "Validate a component manifest against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := manifest.ValidateFile(args[0])
		if err != nil {
			return err
		}

		if result.Valid {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[0])
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is invalid:\n", args[0])
		for _, issue := range result.Issues {
			loc := issue.Path
			if loc == "" {
				loc = "/"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", loc, issue.Message)
		}
		return fmt.Errorf("%d validation issue(s)", len(result.Issues))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
