package gray4

import (
	"bytes"
	"image"
	"image/color"
	"iter"
)

// Color is a 4-bit gray level. Only the lower 4 bits of Y are used.
type Color struct {
	Y uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	// 0xF * 0x1111 = 0xFFFF
	y := uint32(c.Y&0x0F) * 0x1111
	return y, y, y, 0xFFFF
}

// Model converts any color to Color using ITU-R 601 luma weights.
var Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if g, ok := c.(Color); ok {
		return g
	}
	r, g, b, _ := c.RGBA()
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Color{Y: uint8(y >> 12)}
}

// Image is a 4-bit grayscale image, two pixels per byte.
type Image struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// New returns an Image with the given bounds. The width must be even. A
// rectangle with negative size gives an image with no pixels.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	if w%2 != 0 {
		panic("gray4: width must be even")
	}
	return &Image{
		Pix:    make([]byte, w/2*h),
		Stride: w / 2,
		Rect:   r,
	}
}

// ColorModel implements image.Image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.GrayAt(x, y)
}

// GrayAt returns the gray level at (x, y), or black outside the bounds.
func (p *Image) GrayAt(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Color{}
	}
	i, shift := p.offset(x, y)
	return Color{Y: (p.Pix[i] >> shift) & 0x0F}
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetGray(x, y, Model.Convert(c).(Color))
}

// SetGray sets the gray level at (x, y). Points outside the bounds are
// ignored.
func (p *Image) SetGray(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i, shift := p.offset(x, y)
	p.Pix[i] = (p.Pix[i] &^ (0x0F << shift)) | ((c.Y & 0x0F) << shift)
}

// Fill sets every pixel to c.
func (p *Image) Fill(c Color) {
	v := (c.Y&0x0F)<<4 | c.Y&0x0F
	for i := range p.Pix {
		p.Pix[i] = v
	}
}

// offset returns the byte index and bit shift of the pixel at (x, y).
// Even columns are in the high nibble.
func (p *Image) offset(x, y int) (i int, shift uint) {
	x -= p.Rect.Min.X
	i = (y-p.Rect.Min.Y)*p.Stride + x/2
	shift = uint(4 * (1 - (x & 1)))
	return
}

// Align clips r to the image and widens it so that both vertical edges fall
// on a byte boundary.
func (p *Image) Align(r image.Rectangle) image.Rectangle {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return image.Rectangle{}
	}
	if (r.Min.X-p.Rect.Min.X)%2 != 0 {
		r.Min.X--
	}
	if (r.Max.X-p.Rect.Min.X)%2 != 0 {
		r.Max.X++
	}
	return r
}

// Region returns the bytes covering r in row-major order. r is aligned with
// Align first. Pix is read as the sequence is consumed.
func (p *Image) Region(r image.Rectangle) iter.Seq[byte] {
	r = p.Align(r)
	return func(yield func(byte) bool) {
		if r.Empty() {
			return
		}
		x0 := (r.Min.X - p.Rect.Min.X) / 2
		x1 := (r.Max.X - p.Rect.Min.X) / 2
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := p.Pix[(y-p.Rect.Min.Y)*p.Stride:]
			for _, b := range row[x0:x1] {
				if !yield(b) {
					return
				}
			}
		}
	}
}

// Changed returns the smallest byte aligned rectangle outside of which a and
// b are identical. It is empty when the images are equal. Both images must
// have the same bounds.
func Changed(a, b *Image) image.Rectangle {
	if a.Rect != b.Rect {
		panic("gray4: images have different bounds")
	}
	minX, maxX := a.Stride, -1
	minY, maxY := -1, -1
	for y := 0; y < a.Rect.Dy(); y++ {
		ra := a.Pix[y*a.Stride : (y+1)*a.Stride]
		rb := b.Pix[y*b.Stride : (y+1)*b.Stride]
		if bytes.Equal(ra, rb) {
			continue
		}
		if minY < 0 {
			minY = y
		}
		maxY = y
		for x := range ra {
			if ra[x] != rb[x] {
				minX = min(minX, x)
				maxX = max(maxX, x)
			}
		}
	}
	if maxY < 0 {
		return image.Rectangle{}
	}
	o := a.Rect.Min
	return image.Rect(o.X+2*minX, o.Y+minY, o.X+2*(maxX+1), o.Y+maxY+1)
}
