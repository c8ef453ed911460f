package chart

import (
	"bytes"
	"context"
	"image/png"
	"math"
	"testing"

	"github.com/nikogura/resume-matcher/pkg/report"
	"github.com/nikogura/resume-matcher/pkg/theme"
)

type op struct {
	kind  string
	x, y  float64
	w, h  float64
	color string
	text  string
	style TextStyle
}

type recordingCanvas struct {
	width, height int
	ops           []op
}

func (c *recordingCanvas) Width() (width int)   { return c.width }
func (c *recordingCanvas) Height() (height int) { return c.height }
func (c *recordingCanvas) Clear()               { c.ops = append(c.ops, op{kind: "clear"}) }

func (c *recordingCanvas) FillRect(x, y, w, h float64, color string) {
	c.ops = append(c.ops, op{kind: "rect", x: x, y: y, w: w, h: h, color: color})
}

func (c *recordingCanvas) Line(x1, y1, _, _, _ float64, color string) {
	c.ops = append(c.ops, op{kind: "line", x: x1, y: y1, color: color})
}

func (c *recordingCanvas) Text(text string, x, y float64, style TextStyle) {
	c.ops = append(c.ops, op{kind: "text", x: x, y: y, text: text, style: style})
}

func (c *recordingCanvas) filter(kind string) (ops []op) {
	for _, o := range c.ops {
		if o.kind == kind {
			ops = append(ops, o)
		}
	}
	return ops
}

type fixedPalette struct {
	palette theme.Palette
}

func (f *fixedPalette) Palette(_ context.Context) (p theme.Palette) {
	p = f.palette
	return p
}

func TestAfterScore(t *testing.T) {
	for s := 0.0; s <= 100; s += 0.25 {
		after := AfterScore(s)
		if after != math.Min(100, s+20) {
			t.Errorf("AfterScore(%v): expected %v, got %v", s, math.Min(100, s+20), after)
		}
		if after < s || after > 100 {
			t.Errorf("AfterScore(%v) = %v out of bounds", s, after)
		}
	}

	if AfterScore(-10) != 20 {
		t.Errorf("Expected negative score to clamp before adding delta, got %v", AfterScore(-10))
	}
}

func TestRenderHighScore(t *testing.T) {
	canvas := &recordingCanvas{width: 400, height: 240}
	r := NewRenderer(Geometry{}, report.TierColors{}, &fixedPalette{palette: theme.DefaultPalettes().Light})

	r.Render(context.Background(), canvas, 92.3)

	if canvas.ops[0].kind != "clear" {
		t.Fatalf("Expected canvas cleared first, got %s", canvas.ops[0].kind)
	}

	rects := canvas.filter("rect")
	if len(rects) != 3 {
		t.Fatalf("Expected background and two bars, got %d rects", len(rects))
	}

	drawable := 240.0 - 40
	before, after := rects[1], rects[2]

	if math.Abs(before.h-92.3/100*drawable) > 1e-9 {
		t.Errorf("Expected before bar height %v, got %v", 92.3/100*drawable, before.h)
	}
	if after.h != drawable {
		t.Errorf("Expected after bar clamped to full height %v, got %v", drawable, after.h)
	}

	if before.color != report.DefaultTierColors().Low {
		t.Errorf("Expected before bar in danger color, got %s", before.color)
	}
	if after.color != report.DefaultTierColors().High {
		t.Errorf("Expected after bar in success color, got %s", after.color)
	}

	// Bars sit on the axis line.
	if before.y+before.h != 240-40 || after.y+after.h != 240-40 {
		t.Errorf("Expected bars to end at y=200, got %v and %v", before.y+before.h, after.y+after.h)
	}

	// Centred around x=200 with spacing 80 and width 40.
	if before.x != 120 || after.x != 240 {
		t.Errorf("Expected bars at x=120 and x=240, got %v and %v", before.x, after.x)
	}

	texts := canvas.filter("text")
	var labels []string
	for _, o := range texts {
		labels = append(labels, o.text)
	}
	for _, want := range []string{"0%", "25%", "50%", "75%", "100%", "Before", "After", "92.3%"} {
		if !contains(labels, want) {
			t.Errorf("Expected label %q in %v", want, labels)
		}
	}
}

func TestRenderGridlines(t *testing.T) {
	canvas := &recordingCanvas{width: 300, height: 140}
	r := NewRenderer(Geometry{}, report.TierColors{}, nil)

	r.Render(context.Background(), canvas, 10)

	lines := canvas.filter("line")
	if len(lines) != 5 {
		t.Fatalf("Expected 5 gridlines, got %d", len(lines))
	}

	expected := []float64{140, 115, 90, 65, 40}
	for i, line := range lines {
		if line.y != expected[i] {
			t.Errorf("Gridline %d: expected y=%v, got %v", i, expected[i], line.y)
		}
		if line.x != 40 {
			t.Errorf("Gridline %d: expected to start at margin 40, got %v", i, line.x)
		}
	}
}

func TestRenderUsesPaletteAtCallTime(t *testing.T) {
	source := &fixedPalette{palette: theme.DefaultPalettes().Light}
	r := NewRenderer(Geometry{}, report.TierColors{}, source)

	canvas := &recordingCanvas{width: 400, height: 240}
	r.Render(context.Background(), canvas, 50)
	if canvas.filter("rect")[0].color != theme.DefaultPalettes().Light.Background {
		t.Error("Expected light background on first render")
	}

	source.palette = theme.DefaultPalettes().Dark
	canvas = &recordingCanvas{width: 400, height: 240}
	r.Render(context.Background(), canvas, 50)
	if canvas.filter("rect")[0].color != theme.DefaultPalettes().Dark.Background {
		t.Error("Expected dark background after theme change")
	}
	if canvas.filter("line")[0].color != theme.DefaultPalettes().Dark.Border {
		t.Error("Expected dark border color on gridlines")
	}
}

func TestRenderIsRepeatable(t *testing.T) {
	canvas := &recordingCanvas{width: 400, height: 240}
	r := NewRenderer(Geometry{}, report.TierColors{}, nil)

	r.Render(context.Background(), canvas, 30)
	first := len(canvas.ops)
	r.Render(context.Background(), canvas, 30)

	if len(canvas.ops) != 2*first {
		t.Fatalf("Expected identical op count per render, got %d then %d", first, len(canvas.ops)-first)
	}
	if canvas.ops[first].kind != "clear" {
		t.Error("Expected second render to clear first")
	}
}

func TestImageCanvas(t *testing.T) {
	canvas, err := NewImageCanvas(400, 240)
	if err != nil {
		t.Fatalf("Failed to create canvas: %v", err)
	}

	r := NewRenderer(Geometry{}, report.TierColors{}, nil)
	r.Render(context.Background(), canvas, 65)

	var buf bytes.Buffer
	err = canvas.EncodePNG(&buf)
	if err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}

	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 240 {
		t.Errorf("Expected 400x240 image, got %v", img.Bounds())
	}

	// A pixel inside the after bar carries the success color.
	bars := r.Layout(400, 240, 65)
	red, green, blue, _ := img.At(int(bars[1].X+bars[1].Width/2), int(bars[1].Y+bars[1].Height/2)).RGBA()
	if red>>8 != 0x2e || green>>8 != 0xc4 || blue>>8 != 0xb6 {
		t.Errorf("Expected success color inside after bar, got %02x%02x%02x", red>>8, green>>8, blue>>8)
	}
}

func TestNewImageCanvasInvalidSize(t *testing.T) {
	_, err := NewImageCanvas(0, 100)
	if err == nil {
		t.Error("Expected error for zero width, got nil")
	}
}

func TestGeometryWithDefaults(t *testing.T) {
	g := Geometry{BarWidth: 30}.WithDefaults()
	if g.BarWidth != 30 || g.Margin != 40 || g.BarSpacing != 80 {
		t.Errorf("Unexpected geometry %+v", g)
	}
}

func contains(values []string, want string) (found bool) {
	for _, v := range values {
		if v == want {
			found = true
			return found
		}
	}
	return found
}
