package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sygaldry-ai/sygaldry/internal/registry"
)

var searchType string

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search registry components by name or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := buildSource()
		if err != nil {
			return err
		}

		entries, err := src.List(cmd.Context())
		if err != nil {
			return err
		}

		matches := filterEntries(entries, args[0], searchType)
		if len(matches) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No components matching %q\n", args[0])
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tTYPE\tDESCRIPTION")
		for _, e := range matches {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Version, e.Type, e.Description)
		}
		return w.Flush()
	},
}

// filterEntries keeps entries whose name or description contains term
// (case-insensitive), optionally restricted to one component type.
func filterEntries(entries []registry.IndexEntry, term, typ string) []registry.IndexEntry {
	term = strings.ToLower(term)
	var out []registry.IndexEntry
	for _, e := range entries {
		if typ != "" && e.Type != typ {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), term) ||
			strings.Contains(strings.ToLower(e.Description), term) {
			out = append(out, e)
		}
	}
	return out
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "", "Restrict results to one component type")
	rootCmd.AddCommand(searchCmd)
}
