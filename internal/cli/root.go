package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sygaldry-ai/sygaldry/internal/branding"
	"github.com/sygaldry-ai/sygaldry/internal/cache"
	"github.com/sygaldry-ai/sygaldry/internal/config"
	"github.com/sygaldry-ai/sygaldry/internal/registry"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	registryFlag string
	noCacheFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` resolves and installs reusable AI-agent components
(agents, tools, prompt templates, response models, evals) from a component
registry into your project, merging their python and environment requirements.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryFlag, "registry", "", "Registry URL or local path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noCacheFlag, "no-cache", false, "Bypass the on-disk manifest cache")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// buildSource constructs the manifest source for the current invocation.
//
// Resolution order:
//  1. --registry flag
//  2. "registry" config key (config file or SYGALDRY_REGISTRY)
//
// HTTP registries are wrapped with the on-disk manifest cache unless
// disabled via config.
func buildSource() (registry.Source, error) {
	ref := registryFlag
	if ref == "" {
		ref = config.Get(config.KeyRegistry)
	}
	if ref == "" {
		return nil, fmt.Errorf("no registry configured; pass --registry or run '%s config set registry <url-or-path>'", branding.CLIName())
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		var src registry.Source = registry.NewHTTPSource(ref)
		if !noCacheFlag && !config.GetBool(config.KeyCacheDisabled) {
			src = cache.New(src, config.CacheDir())
		}
		return src, nil
	}

	return registry.NewLocalSource(ref)
}
