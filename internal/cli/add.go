package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sygaldry-ai/sygaldry/internal/install"
	"github.com/sygaldry-ai/sygaldry/internal/project"
)

var (
	addProvider string
	addModel    string
	addVars     []string
	addForce    bool
	addDryRun   bool
	addYes      bool
)

var addCmd = &cobra.Command{
	Use:   "add <component>...",
	Short: "Install components and their dependencies into the project",
	Long: `Resolve the named components and their transitive registry dependencies,
substitute template variables, and copy their files into the directories
mapped by the project configuration.

With --dry-run the full install plan is printed and nothing is written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addProvider, "provider", "", "Override the 'provider' template variable")
	addCmd.Flags().StringVar(&addModel, "model", "", "Override the 'model' template variable")
	addCmd.Flags().StringArrayVar(&addVars, "var", nil, "Override a template variable (name=value, repeatable)")
	addCmd.Flags().BoolVar(&addForce, "force", false, "Overwrite destination files that exist with different content")
	addCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "Plan the install and print it without writing files")
	addCmd.Flags().BoolVarP(&addYes, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := project.Load(cwd)
	if err != nil {
		return err
	}

	src, err := buildSource()
	if err != nil {
		return err
	}

	overrides, err := parseOverrides()
	if err != nil {
		return err
	}

	// Project aliases map short names to registry component names.
	names := make([]string, len(args))
	for i, arg := range args {
		if full, ok := cfg.Aliases[arg]; ok {
			names[i] = full
		} else {
			names[i] = arg
		}
	}

	opts := install.Options{
		Force:     addForce,
		DryRun:    addDryRun,
		Overrides: overrides,
	}
	if !addYes && !addDryRun {
		opts.Confirm = func(planned *install.Result) bool {
			return confirmPlan(cmd, planned)
		}
	}

	exec := &install.Executor{Source: src, Config: cfg, ProjectRoot: cwd}
	result, err := exec.Run(cmd.Context(), names, opts)
	if err != nil {
		return err
	}

	if result.Cancelled {
		fmt.Fprintln(cmd.OutOrStdout(), "Installation cancelled.")
		return nil
	}

	printResult(cmd, result)

	if len(result.Collisions) > 0 {
		return errUnresolvedCollisions
	}
	return nil
}

// parseOverrides merges --provider/--model shorthands with --var entries.
func parseOverrides() (map[string]string, error) {
	overrides := make(map[string]string)
	if addProvider != "" {
		overrides["provider"] = addProvider
	}
	if addModel != "" {
		overrides["model"] = addModel
	}
	for _, kv := range addVars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, expected name=value", kv)
		}
		overrides[name] = value
	}
	return overrides, nil
}

// confirmPlan prints the planned steps and prompts before anything is
// written. Enter or y accepts.
func confirmPlan(cmd *cobra.Command, planned *install.Result) bool {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Install plan:")
	for _, step := range planned.Steps {
		fmt.Fprintf(out, "  %s %s@%s (%d file(s))\n", step.Type, step.Component, step.Version, len(step.Files))
	}

	fmt.Fprint(out, "? Proceed with installation? (Y/n) ")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if answer != "" && answer != "y" && answer != "yes" {
			return false
		}
	}
	return true
}

// printResult renders the plan tree, per-file outcomes, and the merged
// requirement lists.
func printResult(cmd *cobra.Command, result *install.Result) {
	out := cmd.OutOrStdout()

	if result.DryRun {
		fmt.Fprintln(out, "Install plan (dry run):")
	} else {
		fmt.Fprintln(out, "Installed:")
	}

	for _, step := range result.Steps {
		fmt.Fprintf(out, "  %s %s@%s\n", step.Type, step.Component, step.Version)
		for i, f := range step.Files {
			connector := "├──"
			if i == len(step.Files)-1 {
				connector = "└──"
			}
			fmt.Fprintf(out, "    %s %s (%s)\n", connector, f.Destination, f.Status)
		}
	}

	if len(result.Python) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Python dependencies to install:")
		for _, dep := range result.Python {
			fmt.Fprintf(out, "  %s\n", dep)
		}
	}

	if len(result.Env) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Environment variables:")
		for _, ev := range result.Env {
			required := "optional"
			if ev.Required {
				required = "required"
			}
			if ev.Description != "" {
				fmt.Fprintf(out, "  %s (%s): %s\n", ev.Name, required, ev.Description)
			} else {
				fmt.Fprintf(out, "  %s (%s)\n", ev.Name, required)
			}
		}
	}

	for _, c := range result.Collisions {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", &c)
	}
}
