package subcommands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/cmdutil"
	"github.com/leefowlercu/mldata/internal/dataset"
	"github.com/leefowlercu/mldata/internal/tui/styles"
)

var showOutput string

// ShowCmd displays a dataset record.
var ShowCmd = &cobra.Command{
	Use:   "show <prefix>",
	Short: "Display a dataset",
	Long: "Display a dataset.\n\n" +
		"Fetches the dataset record from the remote and prints its metadata " +
		"and cached counters.",
	Example: `  # Show a dataset
  mldata dataset show alice/mnist

  # As JSON
  mldata dataset show alice/mnist -o json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().StringVarP(&showOutput, "output", "o", "", "Output format (yaml, json); default is a summary")
}

func validateShow(cmd *cobra.Command, args []string) error {
	switch showOutput {
	case "", cmdutil.FormatYAML, cmdutil.FormatJSON:
	default:
		return fmt.Errorf("unsupported output format %q", showOutput)
	}
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ds, err := cmdutil.OpenDataset(cmd.Context(), args[0], cmdutil.MetadataOnly)
	if err != nil {
		return err
	}

	if showOutput != "" {
		return cmdutil.Render(cmd.OutOrStdout(), ds.Record(), showOutput)
	}
	printSummary(cmd.OutOrStdout(), ds)
	return nil
}

func printSummary(w io.Writer, ds *dataset.Dataset) {
	fmt.Fprintln(w, styles.Title.Render(ds.URLPrefix()))
	fmt.Fprintln(w, styles.Field("Title", ds.Title()))
	fmt.Fprintln(w, styles.Field("Description", ds.Description()))
	fmt.Fprintln(w, styles.Field("Reference", ds.Reference()))
	fmt.Fprintln(w, styles.Field("Tags", strings.Join(ds.Tags(), ", ")))
	fmt.Fprintln(w, styles.Field("Elements", fmt.Sprint(ds.ElementsCount())))
	fmt.Fprintln(w, styles.Field("Comments", fmt.Sprint(ds.CommentsCount())))
}
