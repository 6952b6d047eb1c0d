// Package ocr defines a small abstraction for plugging an external OCR
// engine into the conversion pipeline. The default engine is backed by
// Tesseract, but recognition stays behind the Engine interface so tests and
// alternative providers can substitute their own.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
)

// Input encapsulates a single image submitted for recognition.
type Input struct {
	// ID is a caller-provided identifier that is echoed back in the
	// corresponding Result, typically naming the page.
	ID string
	// Image is the PNG-encoded image payload.
	Image []byte
	// DPI carries the effective dots-per-inch of the image, zero means
	// unknown. Tesseract uses it for scaling heuristics.
	DPI int
	// Languages lists trained-data hints (e.g. "eng", "deu").
	Languages []string
}

// Result is the recognition output for a single input. Text is empty when
// the engine found no text in the image, which is not an error.
type Result struct {
	InputID string
	Text    string
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

// EngineError is returned when the external OCR engine is unavailable or
// fails internally. It is fatal to the run.
type EngineError struct {
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ocr engine %v: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// InputOption mutates an input built by FromImage.
type InputOption func(*Input)

// WithLanguages sets language hints on the input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) {
		in.Languages = append([]string(nil), langs...)
	}
}

// WithDPI sets the DPI value on the input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) {
		in.DPI = dpi
	}
}

// FromImage encodes img as PNG and builds a recognition input.
func FromImage(id string, img image.Image, opts ...InputOption) (Input, error) {
	buf := bytes.NewBuffer(nil)

	err := png.Encode(buf, img)
	if err != nil {
		return Input{}, fmt.Errorf("encode %v: %w", id, err)
	}

	in := Input{ID: id, Image: buf.Bytes()}
	for _, opt := range opts {
		opt(&in)
	}

	return in, nil
}
