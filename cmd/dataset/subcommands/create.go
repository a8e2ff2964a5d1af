package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/cmdutil"
)

var (
	createTitle       string
	createDescription string
	createReference   string
	createTags        []string
)

// CreateCmd creates a dataset on the remote.
var CreateCmd = &cobra.Command{
	Use:   "create <prefix>",
	Short: "Create a dataset",
	Long: "Create a dataset.\n\n" +
		"Stores a new dataset record under the given prefix. The remote " +
		"rejects prefixes that are already taken.",
	Example: `  # Create a dataset
  mldata dataset create alice/mnist --title "MNIST" --tag images --tag digits`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateCreate,
	RunE:    runCreate,
}

func init() {
	CreateCmd.Flags().StringVar(&createTitle, "title", "", "Dataset title")
	CreateCmd.Flags().StringVar(&createDescription, "description", "", "Dataset description")
	CreateCmd.Flags().StringVar(&createReference, "reference", "", "Citation or source reference")
	CreateCmd.Flags().StringSliceVar(&createTags, "tag", nil, "Tag (repeatable)")
}

func validateCreate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	ds, err := cmdutil.NewDataset(args[0], cmdutil.MetadataOnly)
	if err != nil {
		return err
	}

	ds.SetTitle(createTitle)
	ds.SetDescription(createDescription)
	ds.SetReference(createReference)
	ds.SetTags(createTags)

	if err := ds.Create(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created dataset %s\n", ds.URLPrefix())
	return nil
}
