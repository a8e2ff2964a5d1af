// Package export implements the export command.
package export

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/cmdutil"
	"github.com/leefowlercu/mldata/internal/config"
	"github.com/leefowlercu/mldata/internal/export"
	"github.com/leefowlercu/mldata/internal/tui/progress"
	"github.com/leefowlercu/mldata/internal/tui/styles"
)

var (
	exportFormat    string
	exportExtension string
	exportQuiet     bool
)

// ExportCmd mirrors a dataset into a local folder.
var ExportCmd = &cobra.Command{
	Use:   "export <prefix> <folder>",
	Short: "Mirror a dataset into a local folder",
	Long: "Mirror a dataset into a local folder.\n\n" +
		"Writes a metadata index (metadata.<format>) listing every element, then " +
		"downloads each element's content as stored, without deciphering, into " +
		"<folder>/content/<id><extension>. Elements whose content cannot be " +
		"downloaded are reported at the end; the command then exits non-zero " +
		"but keeps everything that was written.",
	Example: `  # Export with a JSON index
  mldata export alice/mnist ./mnist

  # CSV index, content files named <id>.png
  mldata export alice/mnist ./mnist --format csv --extension png`,
	Args:    cobra.ExactArgs(2),
	PreRunE: validateExport,
	RunE:    runExport,
}

func init() {
	ExportCmd.Flags().StringVar(&exportFormat, "format", "", "Metadata format (json, csv, yaml, toml); defaults to export.format")
	ExportCmd.Flags().StringVar(&exportExtension, "extension", "", "Extension appended to content file names; defaults to export.extension")
	ExportCmd.Flags().BoolVarP(&exportQuiet, "quiet", "q", false, "Do not draw a progress bar")
}

func validateExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "" {
		formats := export.NewExporter().Formats()
		if !slices.Contains(formats, exportFormat) {
			return fmt.Errorf("unsupported format %q; use one of %s", exportFormat, strings.Join(formats, ", "))
		}
	}
	cmd.SilenceUsage = true
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	opts := export.Options{
		Format:    cfg.Export.Format,
		Extension: cfg.Export.Extension,
	}
	if cmd.Flags().Changed("format") {
		opts.Format = exportFormat
	}
	if cmd.Flags().Changed("extension") {
		opts.Extension = exportExtension
	}
	if !exportQuiet {
		opts.Progress = progress.New(cmd.ErrOrStderr(), "Exporting")
	}

	folder, err := cmdutil.ResolvePath(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve folder; %w", err)
	}

	ds, err := cmdutil.OpenDataset(cmd.Context(), args[0], cmdutil.MetadataOnly)
	if err != nil {
		return err
	}

	result, err := export.NewExporter().SaveToFolder(cmd.Context(), ds, folder, opts)
	if result != nil {
		printResult(cmd.OutOrStdout(), result)
	}

	var partial *export.PartialExportError
	if errors.As(err, &partial) {
		for _, f := range partial.Failures {
			fmt.Fprintln(cmd.ErrOrStderr(), styles.WarningText.Render(fmt.Sprintf("%s %s: %v", styles.CrossMark, f.FileName, f.Err)))
		}
	}
	return err
}

func printResult(w io.Writer, r *export.Result) {
	fmt.Fprintln(w, styles.Field("Metadata", r.MetadataFile))
	fmt.Fprintln(w, styles.Field("Elements", fmt.Sprint(r.Elements)))
	fmt.Fprintln(w, styles.Field("Content files", fmt.Sprintf("%d (%d bytes)", r.Written, r.Bytes)))
	if len(r.Failures) > 0 {
		fmt.Fprintln(w, styles.Field("Failed", fmt.Sprint(len(r.Failures))))
	}
	fmt.Fprintln(w, styles.Field("Duration", r.Duration.Round(time.Millisecond).String()))
}
