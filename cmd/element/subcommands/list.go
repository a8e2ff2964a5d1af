package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/cmdutil"
	"github.com/leefowlercu/mldata/internal/dataset"
)

var (
	listPage int
	listLong bool
)

// ListCmd lists element ids of a dataset.
var ListCmd = &cobra.Command{
	Use:   "list <prefix>",
	Short: "List element ids",
	Long: "List element ids.\n\n" +
		"Prints one element id per line, in remote order. By default every " +
		"page is listed; --page restricts the listing to one page. With --long " +
		"each line also carries the element title.",
	Example: `  # List every element id
  mldata element list alice/mnist

  # Only the first page
  mldata element list alice/mnist --page 0`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateList,
	RunE:    runList,
}

func init() {
	ListCmd.Flags().IntVar(&listPage, "page", dataset.AllPages, "Page to list (0-based); all pages when omitted")
	ListCmd.Flags().BoolVarP(&listLong, "long", "l", false, "Include element titles")
}

func validateList(cmd *cobra.Command, args []string) error {
	if listPage < dataset.AllPages {
		return fmt.Errorf("--page must be 0 or greater")
	}
	cmd.SilenceUsage = true
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	ds, err := cmdutil.NewDataset(args[0], cmdutil.MetadataOnly)
	if err != nil {
		return err
	}

	if !listLong {
		keys, err := ds.Keys(ctx, listPage)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(out, k)
		}
		return nil
	}

	if listPage != dataset.AllPages {
		return fmt.Errorf("--long lists every page; drop --page")
	}
	for el, err := range ds.All(ctx) {
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\n", el.ID(), el.Title())
	}
	return nil
}
