// Package render rasterizes the pages of a PDF document. The actual
// rendering is done by MuPDF (via go-fitz), the document structure is
// checked with pdfcpu before any page is touched.
package render

import (
	"fmt"
	"image"
	"os"

	"github.com/gen2brain/go-fitz"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"
)

// DocumentOpenError is returned when the input file is missing, unreadable
// or not a valid PDF. It is reported before any page is processed.
type DocumentOpenError struct {
	Path string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	return fmt.Sprintf("open document %v: %v", e.Path, e.Err)
}

func (e *DocumentOpenError) Unwrap() error {
	return e.Err
}

// PageError is returned when a specific page cannot be rasterized. The run
// is aborted instead of skipping the page, otherwise the page order of the
// output would silently break.
type PageError struct {
	Path string
	Page int // one-based
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("render page %d of %v: %v", e.Page, e.Path, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Document is an open PDF ready for page rasterization. Pages are rendered
// on demand, re-rendering a page rasterizes it from scratch.
type Document struct {
	path string
	doc  *fitz.Document
}

// Open validates the PDF at path and opens it for rendering.
func Open(path string) (*Document, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}

	if fi.IsDir() {
		return nil, &DocumentOpenError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	err = pdfcpu.ValidateFile(path, nil)
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: fmt.Errorf("validate: %w", err)}
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}

	return &Document{path: path, doc: doc}, nil
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() int {
	return d.doc.NumPage()
}

// Page rasterizes the page with the given zero-based index at dpi.
func (d *Document) Page(page int, dpi float64) (image.Image, error) {
	img, err := d.doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, &PageError{Path: d.path, Page: page + 1, Err: err}
	}

	return img, nil
}

// Close releases the underlying MuPDF document.
func (d *Document) Close() error {
	return d.doc.Close()
}
