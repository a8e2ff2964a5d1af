package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/cmdutil"
)

var (
	getOutputFile string
	getRaw        bool
	getMetadata   string
)

// GetCmd fetches an element.
var GetCmd = &cobra.Command{
	Use:   "get <prefix> <id>",
	Short: "Fetch an element's content or metadata",
	Long: "Fetch an element's content or metadata.\n\n" +
		"Writes the deciphered content to --output-file, or to stdout when no " +
		"file is given. --raw skips the interpreter and writes the content as " +
		"stored. --metadata prints the element record instead of its content.",
	Example: `  # Save content to a file
  mldata element get alice/mnist 0193a0b2-... --output-file digit.png

  # Show the record
  mldata element get alice/mnist 0193a0b2-... --metadata yaml`,
	Args:    cobra.ExactArgs(2),
	PreRunE: validateGet,
	RunE:    runGet,
}

func init() {
	GetCmd.Flags().StringVarP(&getOutputFile, "output-file", "f", "", "Write content to this file instead of stdout")
	GetCmd.Flags().BoolVar(&getRaw, "raw", false, "Write content as stored, without deciphering")
	GetCmd.Flags().StringVar(&getMetadata, "metadata", "", "Print the element record in this format (yaml, json) instead of content")
}

func validateGet(cmd *cobra.Command, args []string) error {
	switch getMetadata {
	case "", cmdutil.FormatYAML, cmdutil.FormatJSON:
	default:
		return fmt.Errorf("unsupported metadata format %q", getMetadata)
	}
	if getMetadata != "" && getOutputFile != "" {
		return fmt.Errorf("--metadata and --output-file are mutually exclusive")
	}
	cmd.SilenceUsage = true
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mode := cmdutil.WithContent
	if getRaw || getMetadata != "" {
		mode = cmdutil.MetadataOnly
	}
	ds, err := cmdutil.NewDataset(args[0], mode)
	if err != nil {
		return err
	}

	el, err := ds.Get(ctx, args[1])
	if err != nil {
		return err
	}

	if getMetadata != "" {
		return cmdutil.Render(cmd.OutOrStdout(), el.Record(), getMetadata)
	}

	data, err := el.Content(ctx, !getRaw)
	if err != nil {
		return err
	}

	if getOutputFile == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	path, err := cmdutil.ResolvePath(getOutputFile)
	if err != nil {
		return fmt.Errorf("failed to resolve output path; %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s; %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(data), path)
	return nil
}
