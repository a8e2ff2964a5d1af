// Package dataset provides the dataset parent command and subcommands.
package dataset

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/cmd/dataset/subcommands"
)

// DatasetCmd is the parent command for dataset metadata operations.
var DatasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Show, create and update datasets",
	Long: "Show, create and update datasets.\n\n" +
		"A dataset is addressed by its URL prefix. A bare prefix such as " +
		"\"mnist\" is namespaced with api.owner when one is configured.",
}

func init() {
	DatasetCmd.AddCommand(subcommands.ShowCmd)
	DatasetCmd.AddCommand(subcommands.CreateCmd)
	DatasetCmd.AddCommand(subcommands.UpdateCmd)
}
