// Command scantext-watch runs the OCR conversion pipeline as a small
// daemon: PDFs and images placed in the incoming directory or uploaded by a
// document scanner via FTP are converted to text files in the text
// directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/fd0/scantext/ingest"
	"github.com/fd0/scantext/notify"
	"github.com/fd0/scantext/pipeline"
)

var opts = struct {
	BaseDir string
	Listen  string
	Config  string
	Verbose bool
}{}

// CheckTargetDir ensures that dir exists and is a directory.
func CheckTargetDir(logger logrus.FieldLogger, dir string) error {
	fi, err := os.Lstat(dir)
	if os.IsNotExist(err) {
		logger.Infof("creating target dir %v", dir)

		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("creating target dir %v: %w", dir, err)
		}

		fi, err = os.Lstat(dir)
	}

	if err != nil {
		return fmt.Errorf("accessing target dir %v: %w", dir, err)
	}

	if !fi.IsDir() {
		return fmt.Errorf("target dir %v is not a directory", dir)
	}

	return nil
}

// setupRootContext creates a root context that is cancelled when SIGINT is
// received, tied to a new errgroup.Group. The returned cancel() function
// cancels the outermost context.
func setupRootContext() (wg *errgroup.Group, ctx context.Context, cancel func()) {
	// create new root context, cancel on SIGINT
	ctx, cancel = context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	// couple this context with an errgroup
	wg, ctx = errgroup.WithContext(ctx)

	return wg, ctx, cancel
}

func main() {
	fs := pflag.NewFlagSet("scantext-watch", pflag.ContinueOnError)
	fs.StringVar(&opts.BaseDir, "base-dir", "scans", "scantext base `directory`")
	fs.StringVar(&opts.Listen, "listen", ":2121", "listen on `addr` for scanner FTP uploads")
	fs.StringVar(&opts.Config, "config", "", "load settings from `file`")
	fs.BoolVar(&opts.Verbose, "verbose", false, "print verbose messages")

	err := fs.Parse(os.Args)
	if err == pflag.ErrHelp {
		os.Exit(0)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := logrus.New()
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := DefaultConfig()

	if opts.Config != "" {
		cfg, err = LoadConfig(opts.Config)
		if err != nil {
			logger.Fatal(err)
		}
	}

	incomingDir := filepath.Join(opts.BaseDir, "incoming")
	uploadedDir := filepath.Join(opts.BaseDir, "uploaded")
	textDir := filepath.Join(opts.BaseDir, "text")

	for _, dir := range []string{opts.BaseDir, incomingDir, uploadedDir, textDir} {
		err = CheckTargetDir(logger, dir)
		if err != nil {
			logger.Fatal(err)
		}
	}

	wg, ctx, cancel := setupRootContext()
	defer cancel()

	newFiles := make(chan string, 20)

	wg.Go(func() error {
		srv := &ingest.FTPServer{
			TargetDir: uploadedDir,
			Verbose:   opts.Verbose,
			Bind:      opts.Listen,
			OnFileUpload: func(filename string) {
				logger.Infof("new file uploaded: %v", filename)
				newFiles <- filename
			},
		}
		srv.SetLogger(logger)

		return srv.Run(ctx)
	})

	wg.Go(func() error {
		watcher := &ingest.Watcher{
			Dir: incomingDir,
			OnNewFile: func(filename string) {
				logger.Infof("new file found: %v", filename)
				newFiles <- filename
			},
		}
		watcher.SetLogger(logger)

		return watcher.Run(ctx)
	})

	wg.Go(func() error {
		conv := &pipeline.Converter{
			DPI:       cfg.DPI,
			Languages: cfg.Languages,
		}
		conv.SetLogger(logger)

		processor := &pipeline.Processor{
			TextDir:   textDir,
			Converter: conv,
		}
		processor.SetLogger(logger)

		if cfg.Notify {
			processor.OnFileConverted = func(source, target string) {
				notify.Converted(logger, source, target)
			}
		}

		return processor.Run(ctx, newFiles)
	})

	err = wg.Wait()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
