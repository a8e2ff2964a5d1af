package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/cmdutil"
)

// DeleteCmd removes an element.
var DeleteCmd = &cobra.Command{
	Use:   "delete <prefix> <id>",
	Short: "Delete an element",
	Long: "Delete an element.\n\n" +
		"Removes the element and its content from the remote. Fails when the " +
		"element does not exist.",
	Example: `  mldata element delete alice/mnist 0193a0b2-...`,
	Args:    cobra.ExactArgs(2),
	PreRunE: validateDelete,
	RunE:    runDelete,
}

func validateDelete(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ds, err := cmdutil.NewDataset(args[0], cmdutil.MetadataOnly)
	if err != nil {
		return err
	}

	if err := ds.Delete(cmd.Context(), args[1]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted element %s from %s (%d remaining)\n", args[1], ds.URLPrefix(), ds.Len())
	return nil
}
