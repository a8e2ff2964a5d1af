// Package version implements the version command.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/cmdutil"
	"github.com/leefowlercu/mldata/internal/version"
)

var versionOutput string

// VersionCmd displays version and build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build information",
	Long: "Display version and build information.\n\n" +
		"Shows the semantic version, git commit, build date and Go version " +
		"of the mldata binary.",
	Example: `  # Display version information
  mldata version

  # As JSON
  mldata version --output json`,
	PreRunE: validateVersion,
	RunE:    runVersion,
}

func init() {
	VersionCmd.Flags().StringVarP(&versionOutput, "output", "o", "", "Output format (json, yaml); default is plain text")
}

func validateVersion(cmd *cobra.Command, args []string) error {
	switch versionOutput {
	case "", cmdutil.FormatJSON, cmdutil.FormatYAML:
	default:
		return fmt.Errorf("unsupported output format %q", versionOutput)
	}
	cmd.SilenceUsage = true
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	if versionOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	}
	return cmdutil.Render(cmd.OutOrStdout(), info, versionOutput)
}
