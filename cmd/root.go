package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/cmd/config"
	"github.com/leefowlercu/mldata/cmd/dataset"
	"github.com/leefowlercu/mldata/cmd/element"
	"github.com/leefowlercu/mldata/cmd/export"
	"github.com/leefowlercu/mldata/cmd/push"
	"github.com/leefowlercu/mldata/cmd/serve"
	"github.com/leefowlercu/mldata/cmd/version"
	internalconfig "github.com/leefowlercu/mldata/internal/config"
	"github.com/leefowlercu/mldata/internal/logging"
)

// logManager starts in bootstrap mode and is upgraded once config loads.
var logManager *logging.Manager

var mldataCmd = &cobra.Command{
	Use:   "mldata",
	Short: "Client for remote machine-learning datasets",
	Long: "mldata works with datasets stored on a remote dataset service.\n\n" +
		"Datasets are identified by a URL prefix such as \"alice/mnist\" and hold " +
		"elements: metadata records with an opaque binary content payload. Content " +
		"can be transparently compressed and encrypted on upload through the " +
		"configured interpreter, and whole datasets can be mirrored to a local " +
		"folder with a metadata index.",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()
	slog.SetDefault(logManager.Logger())

	mldataCmd.AddCommand(version.VersionCmd)
	mldataCmd.AddCommand(config.ConfigCmd)
	mldataCmd.AddCommand(dataset.DatasetCmd)
	mldataCmd.AddCommand(element.ElementCmd)
	mldataCmd.AddCommand(export.ExportCmd)
	mldataCmd.AddCommand(push.PushCmd)
	mldataCmd.AddCommand(serve.ServeCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := internalconfig.Init(); err != nil {
		return err
	}

	levelStr := internalconfig.GetString("log_level")
	level, ok := logging.ParseLevel(levelStr)
	if !ok && levelStr != "" {
		logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
	}

	if err := logManager.Upgrade(internalconfig.GetPath("log_file"), level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	mldataCmd.SilenceErrors = true
	mldataCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := mldataCmd.Execute()
	if err != nil {
		cmd, _, _ := mldataCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = mldataCmd
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Fprintln(os.Stderr)
			cmd.SetOut(os.Stderr)
			_ = cmd.Usage()
		}
		return err
	}

	return nil
}
