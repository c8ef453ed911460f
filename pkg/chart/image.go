package chart

import (
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type faceKey struct {
	size float64
	bold bool
}

// ImageCanvas is a raster Canvas backed by gg.
type ImageCanvas struct {
	dc      *gg.Context
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
}

// NewImageCanvas creates a transparent canvas of the given size.
func NewImageCanvas(width, height int) (c *ImageCanvas, err error) {
	if width <= 0 || height <= 0 {
		err = errors.Errorf("invalid canvas size %dx%d", width, height)
		return c, err
	}

	var regular, bold *truetype.Font
	regular, err = truetype.Parse(goregular.TTF)
	if err != nil {
		err = errors.Wrap(err, "failed to load regular font")
		return c, err
	}
	bold, err = truetype.Parse(gobold.TTF)
	if err != nil {
		err = errors.Wrap(err, "failed to load bold font")
		return c, err
	}

	c = &ImageCanvas{
		dc:      gg.NewContext(width, height),
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}
	return c, err
}

// Width returns the canvas width in pixels.
func (c *ImageCanvas) Width() (width int) {
	width = c.dc.Width()
	return width
}

// Height returns the canvas height in pixels.
func (c *ImageCanvas) Height() (height int) {
	height = c.dc.Height()
	return height
}

// Clear resets every pixel to transparent.
func (c *ImageCanvas) Clear() {
	c.dc.SetRGBA(0, 0, 0, 0)
	c.dc.Clear()
}

// FillRect fills an axis-aligned rectangle.
func (c *ImageCanvas) FillRect(x, y, w, h float64, color string) {
	if w <= 0 || h <= 0 {
		return
	}
	c.dc.SetHexColor(color)
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.Fill()
}

// Line strokes a straight line.
func (c *ImageCanvas) Line(x1, y1, x2, y2, width float64, color string) {
	c.dc.SetHexColor(color)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
}

// Text draws a label with its baseline at y.
func (c *ImageCanvas) Text(text string, x, y float64, style TextStyle) {
	c.dc.SetFontFace(c.face(style))
	c.dc.SetHexColor(style.Color)

	anchor := 0.0
	if style.Align == AlignCenter {
		anchor = 0.5
	}
	c.dc.DrawStringAnchored(text, x, y, anchor, 0)
}

func (c *ImageCanvas) face(style TextStyle) (face font.Face) {
	key := faceKey{size: style.Size, bold: style.Bold}
	face, ok := c.faces[key]
	if ok {
		return face
	}

	f := c.regular
	if style.Bold {
		f = c.bold
	}
	face = truetype.NewFace(f, &truetype.Options{Size: style.Size})
	c.faces[key] = face
	return face
}

// Image returns the current raster.
func (c *ImageCanvas) Image() (img image.Image) {
	img = c.dc.Image()
	return img
}

// EncodePNG writes the canvas as PNG.
func (c *ImageCanvas) EncodePNG(w io.Writer) (err error) {
	err = c.dc.EncodePNG(w)
	if err != nil {
		err = errors.Wrap(err, "failed to encode chart PNG")
		return err
	}
	return err
}
