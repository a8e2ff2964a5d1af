package subcommands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/cmdutil"
	"github.com/leefowlercu/mldata/internal/dataset"
	"github.com/leefowlercu/mldata/internal/fsutil"
)

var (
	addFile        string
	addTitle       string
	addDescription string
	addTags        []string
	addHTTPRef     string
	addRaw         bool
	addMediaTags   bool
)

// AddCmd uploads a file as a new element.
var AddCmd = &cobra.Command{
	Use:   "add <prefix>",
	Short: "Add an element from a file",
	Long: "Add an element from a file.\n\n" +
		"Creates an element with the given metadata and uploads the file as " +
		"its content, ciphered by the configured interpreter unless --raw is " +
		"given. The title defaults to the file name. The new element id is " +
		"printed on stdout.",
	Example: `  # Add an image
  mldata element add alice/mnist --file digit.png --tag train

  # Tag with the detected media type
  mldata element add alice/mnist --file clip.wav --media-tags`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateAdd,
	RunE:    runAdd,
}

func init() {
	AddCmd.Flags().StringVar(&addFile, "file", "", "File to upload as content (required)")
	AddCmd.Flags().StringVar(&addTitle, "title", "", "Element title; defaults to the file name")
	AddCmd.Flags().StringVar(&addDescription, "description", "", "Element description")
	AddCmd.Flags().StringSliceVar(&addTags, "tag", nil, "Tag (repeatable)")
	AddCmd.Flags().StringVar(&addHTTPRef, "http-ref", "", "External reference URL")
	AddCmd.Flags().BoolVar(&addRaw, "raw", false, "Upload content as is, without ciphering")
	AddCmd.Flags().BoolVar(&addMediaTags, "media-tags", false, "Add tags for the detected media type")
	_ = AddCmd.MarkFlagRequired("file")
}

func validateAdd(cmd *cobra.Command, args []string) error {
	if addFile == "" {
		return fmt.Errorf("--file is required")
	}
	cmd.SilenceUsage = true
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	path, err := cmdutil.ResolvePath(addFile)
	if err != nil {
		return fmt.Errorf("failed to resolve file path; %w", err)
	}

	mode := cmdutil.WithContent
	if addRaw {
		mode = cmdutil.MetadataOnly
	}
	ds, err := cmdutil.NewDataset(args[0], mode)
	if err != nil {
		return err
	}

	in := api.ElementInput{
		Title:       addTitle,
		Description: addDescription,
		Tags:        addTags,
		HTTPRef:     addHTTPRef,
	}
	if in.Title == "" {
		in.Title = filepath.Base(path)
	}
	if addMediaTags {
		tags, err := mediaTags(path)
		if err != nil {
			return err
		}
		in.Tags = append(in.Tags, tags...)
	}

	var opts []dataset.AddOption
	if addRaw {
		opts = append(opts, dataset.WithoutInterpretation())
	}

	el, err := ds.AddElement(cmd.Context(), in, dataset.File(path), opts...)
	if errors.Is(err, dataset.ErrContentNotStored) {
		if derr := ds.Delete(cmd.Context(), el.ID()); derr != nil {
			return fmt.Errorf("%w; element %s left without content; %w", err, el.ID(), derr)
		}
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), el.ID())
	return nil
}

// mediaTags sniffs the head of a file for its media type.
func mediaTags(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s; %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	return fsutil.MediaTags(path, head[:n]), nil
}
