package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fd0/scantext/render"
)

// Processor converts incoming files and writes the recognized text to
// TextDir. It is fed by the ingest watchers in the watch daemon.
type Processor struct {
	TextDir   string
	Converter *Converter

	log logrus.FieldLogger

	// OnFileConverted is called with the source file and the written text
	// file after a successful conversion.
	OnFileConverted func(source, target string)
}

// SetLogger updates the logger to use.
func (p *Processor) SetLogger(logger logrus.FieldLogger) {
	p.log = logger.WithField("component", "processor")
}

// processFile converts a single file. On success the filename of the text
// file (within TextDir) is returned. Files that are neither PDFs nor raster
// images are skipped with an empty filename.
func (p *Processor) processFile(ctx context.Context, filename string) (string, error) {
	if !convertible(filename) {
		p.log.WithField("filename", filename).Debug("skip unsupported file")

		return "", nil
	}

	log := p.log.WithField("filename", filename)
	log.Infof("start conversion")

	texts, err := p.Converter.Run(ctx, filename)
	if err != nil {
		return "", fmt.Errorf("convert: %w", err)
	}

	base := filepath.Base(filename)
	target := filepath.Join(p.TextDir, strings.TrimSuffix(base, filepath.Ext(base))+".txt")

	err = Write(target, Join(texts))
	if err != nil {
		return "", err
	}

	log.Infof("conversion done, %d pages", len(texts))

	return target, nil
}

// Run processes filenames received on newFiles until ctx is cancelled.
// Conversion failures are logged, a single broken upload must not stop the
// daemon.
func (p *Processor) Run(ctx context.Context, newFiles <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case filename := <-newFiles:
			target, err := p.processFile(ctx, filename)
			if err != nil {
				p.log.WithField("filename", filename).Warnf("process failed: %v", err)

				continue
			}

			if target == "" {
				continue
			}

			if p.OnFileConverted != nil {
				p.OnFileConverted(filename, target)
			}
		}
	}
}

func convertible(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf") || render.IsImagePath(filename)
}
