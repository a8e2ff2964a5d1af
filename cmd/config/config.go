// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/cmd/config/subcommands"
)

// ConfigCmd is the parent command for configuration subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect mldata configuration",
	Long: "Inspect mldata configuration.\n\n" +
		"Configuration is read from config.yaml in $MLDATA_CONFIG_DIR, " +
		"~/.config/mldata or the current directory, and every key can be " +
		"overridden with an MLDATA_ environment variable (api.base_url becomes " +
		"MLDATA_API_BASE_URL).",
}

func init() {
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
	ConfigCmd.AddCommand(subcommands.InitCmd)
}
