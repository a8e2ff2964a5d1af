// Package push implements the push command.
package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/cmdutil"
	"github.com/leefowlercu/mldata/internal/dataset"
	"github.com/leefowlercu/mldata/internal/fsutil"
	"github.com/leefowlercu/mldata/internal/metrics"
	"github.com/leefowlercu/mldata/internal/watcher"
)

var (
	pushWatch     bool
	pushRaw       bool
	pushMediaTags bool
	pushTags      []string
	pushSettle    time.Duration
)

// PushCmd uploads the files of a folder as elements.
var PushCmd = &cobra.Command{
	Use:   "push <prefix> <folder>",
	Short: "Upload the files of a folder as elements",
	Long: "Upload the files of a folder as elements.\n\n" +
		"Every regular, non-hidden file directly inside the folder becomes an " +
		"element titled with its file name, its content ciphered by the " +
		"configured interpreter unless --raw is given. With --watch the command " +
		"keeps running and uploads files as they are created or rewritten, " +
		"until interrupted. A file whose content has already been pushed in " +
		"this run is skipped.",
	Example: `  # Upload a folder once
  mldata push alice/mnist ./digits

  # Keep uploading new files, tagged by media type
  mldata push alice/mnist ./incoming --watch --media-tags`,
	Args:    cobra.ExactArgs(2),
	PreRunE: validatePush,
	RunE:    runPush,
}

func init() {
	PushCmd.Flags().BoolVarP(&pushWatch, "watch", "w", false, "Keep uploading new files until interrupted")
	PushCmd.Flags().BoolVar(&pushRaw, "raw", false, "Upload content as is, without ciphering")
	PushCmd.Flags().BoolVar(&pushMediaTags, "media-tags", false, "Add tags for the detected media type")
	PushCmd.Flags().StringSliceVar(&pushTags, "tag", nil, "Tag added to every element (repeatable)")
	PushCmd.Flags().DurationVar(&pushSettle, "settle", watcher.DefaultSettleWindow, "Quiet period before a changed file is uploaded (with --watch)")
}

func validatePush(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(args[1])
	if err != nil {
		return fmt.Errorf("failed to stat folder; %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", args[1])
	}
	if pushSettle <= 0 {
		return fmt.Errorf("--settle must be positive")
	}
	cmd.SilenceUsage = true
	return nil
}

func runPush(cmd *cobra.Command, args []string) error {
	folder, err := cmdutil.ResolvePath(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve folder; %w", err)
	}

	mode := cmdutil.WithContent
	if pushRaw {
		mode = cmdutil.MetadataOnly
	}
	ds, err := cmdutil.OpenDataset(cmd.Context(), args[0], mode)
	if err != nil {
		return err
	}

	p := &pusher{
		ds:     ds,
		out:    cmd.OutOrStdout(),
		logger: slog.Default().With("component", "push", "dataset", ds.URLPrefix()),
		pushed: make(map[string]string),
	}

	ctx := cmd.Context()
	var w *watcher.Watcher
	if pushWatch {
		// Watch before the scan so files created during it are not missed.
		w, err = watcher.New(folder, watcher.WithSettleWindow(pushSettle), watcher.WithLogger(p.logger))
		if err != nil {
			return fmt.Errorf("failed to watch folder; %w", err)
		}
		defer w.Stop()
	}

	failed := p.scan(ctx, folder)
	if !pushWatch {
		if failed > 0 {
			return fmt.Errorf("failed to push %d file(s)", failed)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher; %w", err)
	}
	p.logger.Info("watching folder", "dir", w.Dir())
	p.watch(ctx, w)
	return nil
}

// pusher uploads files and remembers the content hash last pushed per path.
type pusher struct {
	ds     *dataset.Dataset
	out    io.Writer
	logger *slog.Logger
	pushed map[string]string
}

// scan pushes every eligible file in folder, in the name order ReadDir
// returns, and reports the number of failures.
func (p *pusher) scan(ctx context.Context, folder string) int {
	entries, err := os.ReadDir(folder)
	if err != nil {
		p.logger.Error("failed to read folder", "dir", folder, "error", err)
		return 1
	}

	failed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.Type().IsRegular() || watcher.Ignored(entry.Name()) {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		hash, err := fsutil.HashFile(path)
		if err != nil {
			p.logger.Warn("failed to hash file", "path", path, "error", err)
			metrics.RecordPushFile("error")
			failed++
			continue
		}
		if err := p.push(ctx, path, hash); err != nil {
			failed++
		}
	}
	return failed
}

func (p *pusher) watch(ctx context.Context, w *watcher.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.Errors():
			p.logger.Warn("watcher error", "error", err)
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			if ev.Op == watcher.OpRemove {
				delete(p.pushed, ev.Path)
				continue
			}
			_ = p.push(ctx, ev.Path, ev.Hash)
		}
	}
}

// push uploads path as a new element unless the same content was already
// pushed from it.
func (p *pusher) push(ctx context.Context, path, hash string) error {
	if p.pushed[path] == hash {
		metrics.RecordPushFile("skipped")
		p.logger.Debug("content already pushed", "path", path)
		return nil
	}

	in := api.ElementInput{
		Title: filepath.Base(path),
		Tags:  append([]string(nil), pushTags...),
	}
	if pushMediaTags {
		in.Tags = append(in.Tags, mediaTags(path)...)
	}

	var opts []dataset.AddOption
	if pushRaw {
		opts = append(opts, dataset.WithoutInterpretation())
	}

	el, err := p.ds.AddElement(ctx, in, dataset.File(path), opts...)
	if errors.Is(err, dataset.ErrContentNotStored) {
		if derr := p.ds.Delete(ctx, el.ID()); derr != nil {
			p.logger.Warn("failed to remove element left without content", "id", el.ID(), "error", derr)
		}
	}
	if err != nil {
		metrics.RecordPushFile("error")
		p.logger.Error("failed to push file", "path", path, "error", err)
		return err
	}

	p.pushed[path] = hash
	metrics.RecordPushFile("success")
	p.logger.Info("pushed file", "path", path, "id", el.ID())
	fmt.Fprintf(p.out, "%s\t%s\n", el.ID(), filepath.Base(path))
	return nil
}

func mediaTags(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	return fsutil.MediaTags(path, head[:n])
}
