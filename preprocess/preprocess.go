// Package preprocess cleans up scanned page images before recognition.
// The pipeline is fixed: grayscale conversion, adaptive thresholding and a
// median despeckle, in that order. All three steps are deterministic, the
// same input always produces the same output.
package preprocess

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Block size and offset for the adaptive threshold. A pixel is compared
// against the mean of the surrounding thresholdBlock x thresholdBlock
// neighborhood, lowered by thresholdOffset.
const (
	thresholdBlock  = 11
	thresholdOffset = 2
)

// Error is returned when malformed raster data reaches a filter stage.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("preprocess (%v): %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Image applies the cleanup pipeline to a page image and returns the
// binarized result. The input image is not modified.
func Image(img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, &Error{Stage: "grayscale", Err: errors.New("no image data")}
	}

	if img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		return nil, &Error{Stage: "grayscale", Err: errors.New("empty image")}
	}

	gray := grayscale(img)
	binary := adaptiveThreshold(gray, thresholdBlock, thresholdOffset)

	return despeckle(binary), nil
}

// grayscale reduces img to a single intensity channel using the luminance
// weighting of the imaging package.
func grayscale(img image.Image) *image.Gray {
	src := imaging.Grayscale(img)

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// all channels are equal after Grayscale, the red one is enough
			dst.Pix[y*dst.Stride+x] = src.Pix[y*src.Stride+x*4]
		}
	}

	return dst
}

// adaptiveThreshold binarizes src: a pixel becomes white when it is
// brighter than the mean of its block x block neighborhood minus offset,
// black otherwise. The local threshold tolerates uneven scan illumination
// that a single global cutoff would not. Block means are computed in
// constant time per pixel via an integral image.
func adaptiveThreshold(src *image.Gray, block, offset int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()

	// integral[(y+1)*(w+1)+x+1] holds the sum over all pixels above and
	// left of (x, y), inclusive.
	integral := make([]uint64, (w+1)*(h+1))

	for y := 0; y < h; y++ {
		var rowsum uint64

		for x := 0; x < w; x++ {
			rowsum += uint64(src.Pix[y*src.Stride+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowsum
		}
	}

	radius := block / 2
	dst := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		y0 := max(y-radius, 0)
		y1 := min(y+radius, h-1)

		for x := 0; x < w; x++ {
			x0 := max(x-radius, 0)
			x1 := min(x+radius, w-1)

			sum := integral[(y1+1)*(w+1)+x1+1] -
				integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] +
				integral[y0*(w+1)+x0]
			area := uint64((y1 - y0 + 1) * (x1 - x0 + 1))

			threshold := int(sum/area) - offset
			if int(src.Pix[y*src.Stride+x]) > threshold {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}

	return dst
}

// despeckle applies a 3x3 median filter to remove lone speckle pixels
// introduced by thresholding. On a binary image the median is the majority
// value of the neighborhood. Edge pixels use the clamped neighborhood.
func despeckle(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var white, total int

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny := min(max(y+dy, 0), h-1)
					nx := min(max(x+dx, 0), w-1)

					if src.Pix[ny*src.Stride+nx] > 0 {
						white++
					}
					total++
				}
			}

			if white*2 > total {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}

	return dst
}
