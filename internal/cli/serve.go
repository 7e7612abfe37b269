package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/sygaldry-ai/sygaldry/internal/registryserver"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <registry-dir>",
	Short: "Serve a local registry directory over HTTP",
	Long: `Run a development registry server over a directory of components
(one subdirectory per component, each with a component.json). The served
registry can be consumed with --registry http://<addr>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := registryserver.New(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", args[0], serveAddr)
		return http.ListenAndServe(serveAddr, handler)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8787", "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}
