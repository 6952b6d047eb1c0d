package preprocess

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

// testPage returns a white RGBA image of the given size.
func testPage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	return img
}

func TestImageBinarizes(t *testing.T) {
	t.Parallel()

	// white page with a two pixel wide black line, resembling a pen stroke
	img := testPage(32, 32)
	for y := 0; y < 32; y++ {
		img.Set(15, y, color.Black)
		img.Set(16, y, color.Black)
	}

	out, err := Image(img)
	if err != nil {
		t.Fatalf("Image() returned error: %v", err)
	}

	if out.Rect.Dx() != 32 || out.Rect.Dy() != 32 {
		t.Fatalf("unexpected output size: %v", out.Rect)
	}

	for i, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d is %d, output is not binary", i, v)
		}
	}

	if got := out.GrayAt(15, 16).Y; got != 0 {
		t.Errorf("line pixel is %d, want black", got)
	}

	if got := out.GrayAt(2, 2).Y; got != 255 {
		t.Errorf("background pixel is %d, want white", got)
	}
}

func TestImageLocalThreshold(t *testing.T) {
	t.Parallel()

	// Uneven illumination: a dark and a bright half. With a single global
	// cutoff one half would turn solid black; the local threshold keeps
	// both backgrounds white.
	tests := []struct {
		name  string
		level uint8
	}{
		{name: "dark", level: 80},
		{name: "mid", level: 128},
		{name: "bright", level: 220},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			img := testPage(32, 32)
			for y := 0; y < 32; y++ {
				for x := 0; x < 16; x++ {
					img.Set(x, y, color.Gray{Y: test.level})
				}
			}

			out, err := Image(img)
			if err != nil {
				t.Fatalf("Image() returned error: %v", err)
			}

			// sample far away from the brightness boundary
			for _, p := range []image.Point{{2, 2}, {2, 29}, {29, 2}, {29, 29}} {
				if got := out.GrayAt(p.X, p.Y).Y; got != 255 {
					t.Errorf("background pixel %v is %d, want white", p, got)
				}
			}
		})
	}
}

func TestImageRemovesSpeckle(t *testing.T) {
	t.Parallel()

	img := testPage(16, 16)
	img.Set(8, 8, color.Black)

	out, err := Image(img)
	if err != nil {
		t.Fatalf("Image() returned error: %v", err)
	}

	for i, v := range out.Pix {
		if v != 255 {
			t.Fatalf("pixel %d is %d, lone speckle not removed", i, v)
		}
	}
}

func TestImageDeterministic(t *testing.T) {
	t.Parallel()

	img := testPage(24, 24)
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x*11 + y*7) % 256)})
		}
	}

	before := append([]uint8(nil), img.Pix...)

	first, err := Image(img)
	if err != nil {
		t.Fatalf("Image() returned error: %v", err)
	}

	second, err := Image(img)
	if err != nil {
		t.Fatalf("Image() returned error: %v", err)
	}

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("preprocessing the same image twice produced different results")
	}

	if !bytes.Equal(before, img.Pix) {
		t.Error("input image was modified")
	}
}

func TestImageInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		img  image.Image
	}{
		{name: "nil"},
		{name: "empty", img: image.NewRGBA(image.Rect(0, 0, 0, 0))},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := Image(test.img)
			if err == nil {
				t.Fatal("expected error not found")
			}

			var perr *Error
			if !errors.As(err, &perr) {
				t.Errorf("error is %T, want *Error", err)
			}
		})
	}
}

func TestGrayscale(t *testing.T) {
	t.Parallel()

	img := testPage(8, 8)
	img.Set(0, 0, color.Black)
	img.Set(1, 0, color.RGBA{R: 255, A: 255})

	gray := grayscale(img)

	if got := gray.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("black pixel converted to %d", got)
	}

	if got := gray.GrayAt(4, 4).Y; got != 255 {
		t.Errorf("white pixel converted to %d", got)
	}

	if got := gray.GrayAt(1, 0).Y; got == 0 || got == 255 {
		t.Errorf("red pixel converted to %d, want intermediate intensity", got)
	}
}
