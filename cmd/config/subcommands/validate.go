package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/config"
	"github.com/leefowlercu/mldata/internal/tui/styles"
)

// ValidateCmd validates the configuration file.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: "Validate the configuration file.\n\n" +
		"Checks the config file for syntax errors and invalid values. Exits " +
		"non-zero when the file is invalid.",
	Example: `  # Validate the configuration
  mldata config validate`,
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.GetConfigPath()

	if !config.ConfigExists() {
		fmt.Fprintf(out, "No configuration file found at %s; using defaults.\n", configPath)
		return nil
	}

	if _, err := config.LoadFromPath(configPath); err != nil {
		fmt.Fprintln(out, styles.ErrorText.Render(styles.CrossMark+" configuration is invalid"))
		fmt.Fprintf(out, "  %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}

	fmt.Fprintln(out, styles.SuccessText.Render(styles.CheckMark+" configuration is valid: "+configPath))
	return nil
}
