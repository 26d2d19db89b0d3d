// Package canvas normalizes gesture samples into fixed-size square canvases.
//
// The longer side of the source is scaled to exactly the canvas edge, the
// shorter side proportionally, and the result is centered on an opaque
// black background. Normalize is a pure function of its inputs.
package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/andresmejia3/gestureprep/internal/imageio"
	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/disintegration/imaging"
)

// Background fills every canvas pixel not covered by the resized source.
var Background = color.NRGBA{R: 0, G: 0, B: 0, A: 255}

// Placement describes where a resized source lands on a Size×Size canvas.
type Placement struct {
	Size   int
	Scale  float64
	Width  int
	Height int
	X      int
	Y      int
}

// Bounds is the region of the canvas covered by the resized source.
func (p Placement) Bounds() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Fit computes the placement of a w×h source on a size×size canvas.
func Fit(w, h, size int) (Placement, error) {
	if size <= 0 {
		return Placement{}, &types.InvalidSizeError{Size: size}
	}
	if w <= 0 || h <= 0 {
		return Placement{}, imageio.ErrEmptyImage
	}

	p := Placement{Size: size}
	if w >= h {
		p.Scale = float64(size) / float64(w)
		p.Width = size
		p.Height = scaleSide(h, p.Scale, size)
		p.Y = (size - p.Height) / 2
	} else {
		p.Scale = float64(size) / float64(h)
		p.Height = size
		p.Width = scaleSide(w, p.Scale, size)
		p.X = (size - p.Width) / 2
	}
	return p, nil
}

// scaleSide scales the short side, keeping at least one pixel.
func scaleSide(n int, scale float64, size int) int {
	v := int(math.Round(float64(n) * scale))
	if v < 1 {
		return 1
	}
	if v > size {
		return size
	}
	return v
}

// Normalize resizes src with kernel and embeds it centered in a size×size
// canvas. A full resize pass is made even when the scale is 1.
func Normalize(src image.Image, size int, kernel Kernel) (*image.NRGBA, error) {
	b := src.Bounds()
	p, err := Fit(b.Dx(), b.Dy(), size)
	if err != nil {
		return nil, err
	}

	resized := imaging.Resize(src, p.Width, p.Height, kernel.filter())
	dst := imaging.New(size, size, Background)
	return imaging.Paste(dst, resized, image.Pt(p.X, p.Y)), nil
}

// NormalizeFile decodes the image at path and normalizes it.
// The size is checked before the file is read.
func NormalizeFile(path string, size int, kernel Kernel) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, &types.InvalidSizeError{Size: size}
	}
	src, err := imageio.Decode(path)
	if err != nil {
		return nil, err
	}
	return Normalize(src, size, kernel)
}
