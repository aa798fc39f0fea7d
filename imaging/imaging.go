// Package imaging decodes image files into the monochrome pixel buffers
// consumed by the binary backend for [image] tags.
//
// Thermal printers print 1-bit raster data, so decoding binarizes the image:
// the source is converted to grayscale, downscaled to the printable width if
// necessary, and reduced to black/white by Floyd-Steinberg dithering or a
// plain threshold.
package imaging

import (
	"fmt"
	"image"
	"os"

	// Register the supported source formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Bitmap is a decoded monochrome image: one element per pixel, row major,
// with 1 meaning black.  Renders treat it as read-only.
type Bitmap struct {
	Width, Height int
	Pix           []uint8
}

// Black reports whether the pixel at (x, y) is black.
func (b *Bitmap) Black(x, y int) bool {
	return b.Pix[y*b.Width+x] != 0
}

// Options control decoding.
type Options struct {
	MaxWidth  int   // maximum width in pixels; wider images are downscaled.  0 means 384 (58mm paper at 203dpi).
	Threshold uint8 // gray cutoff for binarization; 0 means 128
	Dither    bool  // use Floyd-Steinberg dithering instead of a hard threshold
}

func (o Options) maxWidth() int {
	if o.MaxWidth <= 0 {
		return 384
	}
	return o.MaxWidth
}

func (o Options) threshold() int32 {
	if o.Threshold == 0 {
		return 128
	}
	return int32(o.Threshold)
}

// Decode reads and binarizes the image file at path.
func Decode(path string, opts Options) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return FromImage(img, opts), nil
}

// FromImage binarizes an already-decoded image.
func FromImage(img image.Image, opts Options) *Bitmap {
	var gray = grayscale(img, opts.maxWidth())
	if opts.Dither {
		return dither(gray, opts.threshold())
	}
	return threshold(gray, opts.threshold())
}

// grayscale converts the image to 8-bit grayscale, box-downscaling it to at
// most maxWidth pixels wide.
func grayscale(img image.Image, maxWidth int) *image.Gray {
	var bounds = img.Bounds()
	var w, h = bounds.Dx(), bounds.Dy()

	if w <= maxWidth {
		var gray = image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				gray.Set(x, y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return gray
	}

	var outW = maxWidth
	var outH = h * maxWidth / w
	if outH < 1 {
		outH = 1
	}
	var gray = image.NewGray(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		var y0, y1 = y * h / outH, (y+1)*h/outH - 1
		for x := 0; x < outW; x++ {
			var x0, x1 = x * w / outW, (x+1)*w/outW - 1
			var sum, count int
			for sy := y0; sy <= y1; sy++ {
				for sx := x0; sx <= x1; sx++ {
					r, g, b, _ := img.At(bounds.Min.X+sx, bounds.Min.Y+sy).RGBA()
					// ITU-R BT.601 luma, on 16-bit channels.
					sum += int(19595*r+38470*g+7471*b) >> 24
					count++
				}
			}
			gray.Pix[y*gray.Stride+x] = uint8(sum / count)
		}
	}
	return gray
}

// threshold binarizes by a hard gray cutoff.
func threshold(gray *image.Gray, cutoff int32) *Bitmap {
	var w, h = gray.Rect.Dx(), gray.Rect.Dy()
	var bm = &Bitmap{Width: w, Height: h, Pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if int32(gray.Pix[y*gray.Stride+x]) < cutoff {
				bm.Pix[y*w+x] = 1
			}
		}
	}
	return bm
}

// dither binarizes by Floyd-Steinberg error diffusion, which preserves
// midtones far better than a hard threshold on photos and logos.
func dither(gray *image.Gray, cutoff int32) *Bitmap {
	var w, h = gray.Rect.Dx(), gray.Rect.Dy()
	var bm = &Bitmap{Width: w, Height: h, Pix: make([]uint8, w*h)}

	var levels = make([]int32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			levels[y*w+x] = int32(gray.Pix[y*gray.Stride+x])
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var old = levels[y*w+x]
			var new_ int32
			if old >= cutoff {
				new_ = 255
			} else {
				bm.Pix[y*w+x] = 1
			}
			var err = old - new_
			if x+1 < w {
				levels[y*w+x+1] += err * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					levels[(y+1)*w+x-1] += err * 3 / 16
				}
				levels[(y+1)*w+x] += err * 5 / 16
				if x+1 < w {
					levels[(y+1)*w+x+1] += err * 1 / 16
				}
			}
		}
	}
	return bm
}
