// Package cli implements the geointel command line tool: offline prediction
// and clustering over JSON files, plus schema migration management.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/rentscope/geointel/internal/config"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var cfgFile string

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "geointel",
		Short:         "Geospatial rental market intelligence toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	root.AddCommand(
		newPredictCommand(),
		newClusterCommand(),
		newMigrateCommand(),
		newVersionCommand(),
	)
	return root
}

// loadConfig resolves the configuration for commands that need backing
// services.  Without --config the environment supplies everything.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(Version)
		},
	}
}
