// Command scantext converts a PDF document (or a standalone raster image)
// to plain text via OCR. Pages are processed strictly in order, the text of
// page i always corresponds to document page i, and any failing page or
// stage aborts the whole run.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/fd0/scantext/pipeline"
)

var opts = struct {
	Input  string
	Output string
	Pages  bool
}{}

func main() {
	fs := pflag.NewFlagSet("scantext", pflag.ContinueOnError)
	fs.StringVar(&opts.Input, "input", "", "path to the source PDF or image `file` (required)")
	fs.StringVar(&opts.Output, "output", "", "write the text to `path` instead of standard output")
	fs.BoolVar(&opts.Pages, "pages", false, "save each preprocessed page image to the working directory")

	err := fs.Parse(os.Args)
	if err == pflag.ErrHelp {
		os.Exit(0)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if opts.Input == "" {
		fmt.Fprintln(os.Stderr, "error: --input is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	logger := logrus.New()

	conv := &pipeline.Converter{
		SavePages: opts.Pages,
	}
	conv.SetLogger(logger)

	texts, err := conv.Run(context.Background(), opts.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	text := pipeline.Join(texts)

	if opts.Output == "" {
		fmt.Println(text)

		return
	}

	err = pipeline.Write(opts.Output, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
