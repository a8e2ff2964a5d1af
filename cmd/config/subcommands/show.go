package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/cmdutil"
	"github.com/leefowlercu/mldata/internal/config"
)

var (
	showRaw    bool
	showOutput string
)

// ShowCmd displays the current configuration.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: "Display the current configuration.\n\n" +
		"By default shows the effective configuration with defaults and " +
		"environment overrides applied. Secrets are redacted. Use --raw to " +
		"print the config file as written.",
	Example: `  # Show effective configuration
  mldata config show

  # Show the config file as written
  mldata config show --raw`,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the config file contents instead of the effective configuration")
	ShowCmd.Flags().StringVarP(&showOutput, "output", "o", cmdutil.FormatYAML, "Output format (yaml, json)")
}

func validateShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.GetConfigPath()

	if showRaw {
		data, err := os.ReadFile(configPath)
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "# No configuration file found\n# Default location: %s\n", configPath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read config file; %w", err)
		}
		fmt.Fprintf(out, "# Configuration file: %s\n%s", configPath, data)
		return nil
	}

	cfg := *config.Get()
	if cfg.API.Token != "" {
		cfg.API.Token = "<redacted>"
	}

	if showOutput == cmdutil.FormatYAML {
		fmt.Fprintf(out, "# Effective configuration (config file: %s)\n", configPath)
	}
	return cmdutil.Render(out, cfg, showOutput)
}
