package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sygaldry-ai/sygaldry/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default project configuration in the current directory",
	Long: `Write a sygaldry.json with the default directory mapping
(src/agents, src/tools, src/prompts, src/response_models, src/evals).

Fails if a project configuration already exists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		path, err := project.WriteDefault(cwd)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
