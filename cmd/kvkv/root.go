package main

import (
	"github.com/spf13/cobra"
)

// cfgFile and logLevel are shared by every subcommand: a config file layers
// under whichever role's flags are set, and an explicit --log-level always
// wins over whatever the file says.
var (
	cfgFile  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kvkv",
		Short:         "kvkv is a minimal replicated key-value service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(newMasterCmd(), newReplicaCmd())
	return root
}
