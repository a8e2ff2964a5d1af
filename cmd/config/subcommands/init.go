package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/config"
)

var (
	initForce   bool
	initBaseURL string
	initOwner   string
)

// InitCmd writes a configuration file populated with defaults.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: "Write a default configuration file.\n\n" +
		"Creates config.yaml in the config directory with every setting at its " +
		"default. Refuses to overwrite an existing file unless --force is given.",
	Example: `  # Create the config file
  mldata config init --base-url https://data.example.com --owner alice`,
	PreRunE: validateInit,
	RunE:    runInit,
}

func init() {
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	InitCmd.Flags().StringVar(&initBaseURL, "base-url", "", "Remote API base URL")
	InitCmd.Flags().StringVar(&initOwner, "owner", "", "Owner used to namespace bare dataset prefixes")
}

func validateInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath()
	if config.ConfigExists() && !initForce {
		return fmt.Errorf("config file already exists at %s; use --force to overwrite", config.GetConfigPath())
	}

	cfg := config.NewDefaultConfig()
	if initBaseURL != "" {
		cfg.API.BaseURL = initBaseURL
	}
	cfg.API.Owner = initOwner

	if err := config.Validate(&cfg); err != nil {
		return err
	}
	if err := config.Write(&cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
