package render

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// IsImagePath reports whether path names a raster image that can be fed to
// recognition directly, without going through the PDF renderer.
func IsImagePath(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// ImageFile presents a standalone raster image as a document with a single
// page.
type ImageFile struct {
	path string
	img  image.Image
}

// OpenImage loads the image at path.
func OpenImage(path string) (*ImageFile, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}

	return &ImageFile{path: path, img: img}, nil
}

// NumPages returns 1, a standalone image is a single page.
func (f *ImageFile) NumPages() int {
	return 1
}

// Page returns the loaded image. The dpi argument is ignored, the image is
// used as-is.
func (f *ImageFile) Page(page int, dpi float64) (image.Image, error) {
	if page != 0 {
		return nil, &PageError{Path: f.path, Page: page + 1, Err: fmt.Errorf("image file has a single page")}
	}

	return f.img, nil
}

// Close is a no-op, the image is held in memory.
func (f *ImageFile) Close() error {
	return nil
}
