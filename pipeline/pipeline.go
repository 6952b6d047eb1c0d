// Package pipeline drives pages through rasterization, preprocessing and
// recognition, strictly in page order. One page completes all stages before
// the next one begins; there is no parallelism and no partial-success mode.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/fd0/scantext/ocr"
	"github.com/fd0/scantext/preprocess"
	"github.com/fd0/scantext/render"
)

// PageSeparator joins the per-page texts in the final output. The form feed
// keeps page boundaries machine-splittable while the output stays readable
// as plain text; splitting the output on PageSeparator yields exactly one
// segment per page, empty pages included.
const PageSeparator = "\f\n"

// DefaultDPI is the rasterization resolution used when none is configured.
const DefaultDPI = 300

// Rasterizer yields one raster image per page, in page order.
type Rasterizer interface {
	NumPages() int
	Page(page int, dpi float64) (image.Image, error)
	Close() error
}

// OutputWriteError is returned when the output destination cannot be
// written. It surfaces after all recognition work is done; there is no
// retry and no fallback destination.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("write output %v: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error {
	return e.Err
}

// Converter converts one document per Run call. All fields are optional.
type Converter struct {
	// DPI is the page rasterization resolution, DefaultDPI when zero.
	DPI float64

	// Languages are passed to the OCR engine as trained-data hints.
	Languages []string

	// SavePages persists each preprocessed page image to PagesDir as
	// preprocessed_page_<NN>.jpg (one-indexed).
	SavePages bool
	PagesDir  string

	// Engine performs text recognition, Tesseract when nil.
	Engine ocr.Engine

	// Open opens the input document. The default opens raster images
	// directly and everything else through the PDF renderer.
	Open func(path string) (Rasterizer, error)

	log logrus.FieldLogger
}

// SetLogger updates the logger to use.
func (c *Converter) SetLogger(logger logrus.FieldLogger) {
	c.log = logger.WithField("component", "converter")
}

func (c *Converter) logger() logrus.FieldLogger {
	if c.log == nil {
		c.log = logrus.StandardLogger().WithField("component", "converter")
	}

	return c.log
}

func (c *Converter) dpi() float64 {
	if c.DPI <= 0 {
		return DefaultDPI
	}

	return c.DPI
}

func (c *Converter) engine() ocr.Engine {
	if c.Engine == nil {
		c.Engine = ocr.NewTesseract()
	}

	return c.Engine
}

func (c *Converter) open(path string) (Rasterizer, error) {
	if c.Open != nil {
		return c.Open(path)
	}

	if render.IsImagePath(path) {
		return render.OpenImage(path)
	}

	return render.Open(path)
}

// Run converts the document at input and returns the recognized text for
// each page, in page order. The first failing page or stage aborts the
// whole run.
func (c *Converter) Run(ctx context.Context, input string) ([]string, error) {
	log := c.logger().WithField("filename", input)

	doc, err := c.open(input)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = doc.Close()
	}()

	numPages := doc.NumPages()
	log.Infof("processing %d pages", numPages)

	texts := make([]string, 0, numPages)

	for page := 0; page < numPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		log.WithField("page", page+1).Debug("rasterize page")

		img, err := doc.Page(page, c.dpi())
		if err != nil {
			return nil, err
		}

		cleaned, err := preprocess.Image(img)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page+1, err)
		}

		if c.SavePages {
			err = c.savePage(page, cleaned)
			if err != nil {
				return nil, err
			}
		}

		in, err := ocr.FromImage(fmt.Sprintf("page-%02d", page+1), cleaned,
			ocr.WithDPI(int(c.dpi())), ocr.WithLanguages(c.Languages...))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page+1, err)
		}

		res, err := c.engine().Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page+1, err)
		}

		texts = append(texts, res.Text)
	}

	return texts, nil
}

// savePage writes the preprocessed image for the given zero-based page
// index to PagesDir.
func (c *Converter) savePage(page int, img image.Image) error {
	name := fmt.Sprintf("preprocessed_page_%02d.jpg", page+1)

	err := imaging.Save(img, filepath.Join(c.PagesDir, name))
	if err != nil {
		return fmt.Errorf("save page image %v: %w", name, err)
	}

	c.logger().WithField("page", page+1).Debugf("saved %v", name)

	return nil
}

// Join concatenates per-page texts with PageSeparator.
func Join(texts []string) string {
	return strings.Join(texts, PageSeparator)
}

// Write stores text at path, creating or truncating the file.
func Write(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return &OutputWriteError{Path: path, Err: err}
	}

	_, err = io.WriteString(f, text)
	if err != nil {
		_ = f.Close()

		return &OutputWriteError{Path: path, Err: err}
	}

	err = f.Close()
	if err != nil {
		return &OutputWriteError{Path: path, Err: err}
	}

	return nil
}
