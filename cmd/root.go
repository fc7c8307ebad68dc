package cmd

import (
	"github.com/spf13/cobra"

	"github.com/welling-fm/fireinspect/cmd/history"
	"github.com/welling-fm/fireinspect/cmd/page"
	"github.com/welling-fm/fireinspect/cmd/parse"
	"github.com/welling-fm/fireinspect/cmd/pull"
	"github.com/welling-fm/fireinspect/cmd/serve"
	"github.com/welling-fm/fireinspect/cmd/update"
	"github.com/welling-fm/fireinspect/internal/runtime"
)

// RootCommand creates and returns the root command
func RootCommand(rc *runtime.Context) *cobra.Command {
	var opts runtime.Options

	rootCmd := &cobra.Command{
		Use:           "fireinspect",
		Short:         "Fire inspection report parser and Firestore updater",
		Version:       rc.Build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, &opts)

	subcommands := []*cobra.Command{
		parse.Command(rc),
		page.Command(rc),
		update.Command(rc),
		pull.Command(rc),
		serve.Command(rc),
		history.Command(rc),
	}

	rootCmd.AddCommand(subcommands...)

	// Configuration is loaded after flag parsing so --config is honored.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.Init(opts)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, opts *runtime.Options) {
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Config file (default ./config.yaml or ~/.config/fireinspect/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: trace, debug, info, warn or error")
}
