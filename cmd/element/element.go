// Package element provides the element parent command and subcommands.
package element

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/cmd/element/subcommands"
)

// ElementCmd is the parent command for element operations.
var ElementCmd = &cobra.Command{
	Use:   "element",
	Short: "List, fetch, add and delete dataset elements",
	Long: "List, fetch, add and delete dataset elements.\n\n" +
		"Element content passes through the configured interpreter: it is " +
		"ciphered on upload and deciphered on download unless --raw is given.",
}

func init() {
	ElementCmd.AddCommand(subcommands.ListCmd)
	ElementCmd.AddCommand(subcommands.GetCmd)
	ElementCmd.AddCommand(subcommands.AddCmd)
	ElementCmd.AddCommand(subcommands.DeleteCmd)
}
