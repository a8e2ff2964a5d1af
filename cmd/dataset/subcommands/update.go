package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/cmdutil"
)

var (
	updateTitle       string
	updateDescription string
	updateReference   string
	updateTags        []string
)

// UpdateCmd updates dataset metadata.
var UpdateCmd = &cobra.Command{
	Use:   "update <prefix>",
	Short: "Update dataset metadata",
	Long: "Update dataset metadata.\n\n" +
		"Loads the dataset, applies the given fields and pushes the record " +
		"back. Fields whose flag is not given are left unchanged. The prefix " +
		"itself cannot be changed.",
	Example: `  # Retitle a dataset
  mldata dataset update alice/mnist --title "MNIST (normalised)"

  # Replace the tags
  mldata dataset update alice/mnist --tag images --tag 28x28`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateUpdate,
	RunE:    runUpdate,
}

func init() {
	UpdateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	UpdateCmd.Flags().StringVar(&updateDescription, "description", "", "New description")
	UpdateCmd.Flags().StringVar(&updateReference, "reference", "", "New reference")
	UpdateCmd.Flags().StringSliceVar(&updateTags, "tag", nil, "Replacement tags (repeatable)")
}

func validateUpdate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if !flags.Changed("title") && !flags.Changed("description") && !flags.Changed("reference") && !flags.Changed("tag") {
		return fmt.Errorf("nothing to update; pass at least one of --title, --description, --reference, --tag")
	}
	cmd.SilenceUsage = true
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ds, err := cmdutil.OpenDataset(ctx, args[0], cmdutil.MetadataOnly)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("title") {
		ds.SetTitle(updateTitle)
	}
	if flags.Changed("description") {
		ds.SetDescription(updateDescription)
	}
	if flags.Changed("reference") {
		ds.SetReference(updateReference)
	}
	if flags.Changed("tag") {
		ds.SetTags(updateTags)
	}

	if err := ds.Update(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated dataset %s\n", ds.URLPrefix())
	return nil
}
