package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestOpenErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) string
	}{
		{
			name: "missing file",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "missing.pdf")
			},
		},
		{
			name: "directory",
			setup: func(t *testing.T, dir string) string {
				return dir
			},
		},
		{
			name: "not a pdf",
			setup: func(t *testing.T, dir string) string {
				filename := filepath.Join(dir, "corrupt.pdf")

				err := os.WriteFile(filename, []byte("this is not a pdf"), 0600)
				if err != nil {
					t.Fatalf("write test file: %v", err)
				}

				return filename
			},
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := Open(test.setup(t, t.TempDir()))
			if err == nil {
				t.Fatal("expected error not found")
			}

			var oerr *DocumentOpenError
			if !errors.As(err, &oerr) {
				t.Errorf("error is %T, want *DocumentOpenError", err)
			}
		})
	}
}

func TestIsImagePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{path: "scan.jpg", want: true},
		{path: "scan.JPEG", want: true},
		{path: "dir/scan.png", want: true},
		{path: "scan.tif", want: true},
		{path: "scan.tiff", want: true},
		{path: "scan.bmp", want: true},
		{path: "scan.pdf", want: false},
		{path: "scan.txt", want: false},
		{path: "scan", want: false},
	}

	for _, test := range tests {
		test := test

		t.Run(test.path, func(t *testing.T) {
			t.Parallel()

			if got := IsImagePath(test.path); got != test.want {
				t.Errorf("IsImagePath(%q) = %v, want %v", test.path, got, test.want)
			}
		})
	}
}

func TestOpenImage(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	filename := filepath.Join(t.TempDir(), "scan.png")

	err := imaging.Save(img, filename)
	if err != nil {
		t.Fatalf("save test image: %v", err)
	}

	f, err := OpenImage(filename)
	if err != nil {
		t.Fatalf("OpenImage() returned error: %v", err)
	}

	if f.NumPages() != 1 {
		t.Errorf("NumPages() = %d, want 1", f.NumPages())
	}

	page, err := f.Page(0, 300)
	if err != nil {
		t.Fatalf("Page(0) returned error: %v", err)
	}

	if page.Bounds().Dx() != 20 || page.Bounds().Dy() != 10 {
		t.Errorf("unexpected page bounds: %v", page.Bounds())
	}

	_, err = f.Page(1, 300)
	if err == nil {
		t.Fatal("expected error for second page not found")
	}

	var perr *PageError
	if !errors.As(err, &perr) {
		t.Errorf("error is %T, want *PageError", err)
	}

	err = f.Close()
	if err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}

func TestOpenImageMissing(t *testing.T) {
	t.Parallel()

	_, err := OpenImage(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected error not found")
	}

	var oerr *DocumentOpenError
	if !errors.As(err, &oerr) {
		t.Errorf("error is %T, want *DocumentOpenError", err)
	}
}
