package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements Engine using the gosseract client. The tesseract
// library and its trained data must be installed on the system; their
// absence surfaces as an EngineError on the first recognition call.
type Tesseract struct{}

// NewTesseract returns a Tesseract-backed OCR engine.
func NewTesseract() *Tesseract {
	return &Tesseract{}
}

// Name returns the engine name.
func (*Tesseract) Name() string {
	return "tesseract"
}

// Recognize performs OCR on a single image. A fresh client is used per
// call, recognition state never leaks between pages.
func (t *Tesseract) Recognize(ctx context.Context, in Input) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	c := gosseract.NewClient()
	defer c.Close()

	err := c.SetImageFromBytes(in.Image)
	if err != nil {
		return Result{}, &EngineError{Engine: t.Name(), Err: fmt.Errorf("set image: %w", err)}
	}

	if len(in.Languages) > 0 {
		err = c.SetLanguage(in.Languages...)
		if err != nil {
			return Result{}, &EngineError{Engine: t.Name(), Err: fmt.Errorf("set languages: %w", err)}
		}
	}

	if in.DPI > 0 {
		err = c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI))
		if err != nil {
			return Result{}, &EngineError{Engine: t.Name(), Err: fmt.Errorf("set dpi: %w", err)}
		}
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, &EngineError{Engine: t.Name(), Err: err}
	}

	return Result{InputID: in.ID, Text: strings.TrimSpace(text)}, nil
}
