// Package chart draws the before/after match score comparison.
package chart

import (
	"context"
	"strconv"

	"github.com/nikogura/resume-matcher/pkg/report"
	"github.com/nikogura/resume-matcher/pkg/theme"
)

// ImprovementDelta is the simulated score gain shown by the "after" bar.
const ImprovementDelta = 20

// Align is the horizontal anchor of a text label.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// TextStyle describes how a label is drawn.
type TextStyle struct {
	Size  float64
	Bold  bool
	Align Align
	Color string
}

// Canvas is a pixel drawing surface. The y axis grows downwards.
type Canvas interface {
	Width() (width int)
	Height() (height int)
	Clear()
	FillRect(x, y, w, h float64, color string)
	Line(x1, y1, x2, y2, width float64, color string)
	Text(text string, x, y float64, style TextStyle)
}

// PaletteSource provides the colors of the active theme at draw time.
type PaletteSource interface {
	Palette(ctx context.Context) (p theme.Palette)
}

// Geometry is the fixed layout of the chart.
type Geometry struct {
	Margin     float64 `json:"margin"`
	BarWidth   float64 `json:"bar_width"`
	BarSpacing float64 `json:"bar_spacing"`
}

// DefaultGeometry returns the standard 40px margin, 40px bars spaced 80px from the centre.
func DefaultGeometry() (g Geometry) {
	g = Geometry{
		Margin:     40,
		BarWidth:   40,
		BarSpacing: 80,
	}
	return g
}

// WithDefaults fills unset values from DefaultGeometry.
func (g Geometry) WithDefaults() (filled Geometry) {
	filled = g
	defaults := DefaultGeometry()
	if filled.Margin <= 0 {
		filled.Margin = defaults.Margin
	}
	if filled.BarWidth <= 0 {
		filled.BarWidth = defaults.BarWidth
	}
	if filled.BarSpacing <= 0 {
		filled.BarSpacing = defaults.BarSpacing
	}
	return filled
}

// Renderer draws the comparison chart.
type Renderer struct {
	geometry Geometry
	colors   report.TierColors
	palettes PaletteSource
}

// NewRenderer creates a chart renderer. Bars use the low and high tier colors.
func NewRenderer(geometry Geometry, colors report.TierColors, palettes PaletteSource) (r *Renderer) {
	r = &Renderer{
		geometry: geometry.WithDefaults(),
		colors:   colors.WithDefaults(),
		palettes: palettes,
	}
	return r
}

// AfterScore is the simulated improved score: before plus ImprovementDelta, capped at 100.
func AfterScore(before float64) (after float64) {
	after = report.ClampPercent(before) + ImprovementDelta
	if after > 100 {
		after = 100
	}
	return after
}

// Bar is the computed placement of one bar.
type Bar struct {
	Label  string
	Score  float64
	X      float64
	Y      float64
	Width  float64
	Height float64
	Color  string
}

// Layout computes both bars for a canvas of the given size.
func (r *Renderer) Layout(width, height int, before float64) (bars [2]Bar) {
	g := r.geometry
	h := float64(height)
	drawable := h - g.Margin
	centerX := float64(width) / 2

	beforeScore := report.ClampPercent(before)
	afterScore := AfterScore(before)

	beforeHeight := beforeScore / 100 * drawable
	afterHeight := afterScore / 100 * drawable

	bars[0] = Bar{
		Label:  "Before",
		Score:  beforeScore,
		X:      centerX - g.BarSpacing,
		Y:      h - g.Margin - beforeHeight,
		Width:  g.BarWidth,
		Height: beforeHeight,
		Color:  r.colors.Low,
	}
	bars[1] = Bar{
		Label:  "After",
		Score:  afterScore,
		X:      centerX + g.BarSpacing - g.BarWidth,
		Y:      h - g.Margin - afterHeight,
		Width:  g.BarWidth,
		Height: afterHeight,
		Color:  r.colors.High,
	}
	return bars
}

// Render clears the canvas and draws the gridlines and both bars.
func (r *Renderer) Render(ctx context.Context, canvas Canvas, before float64) {
	g := r.geometry
	width := float64(canvas.Width())
	height := float64(canvas.Height())
	drawable := height - g.Margin

	palette := theme.DefaultPalettes().Light
	if r.palettes != nil {
		palette = r.palettes.Palette(ctx)
	}

	canvas.Clear()
	canvas.FillRect(0, 0, width, height, palette.Background)

	for pct := 0; pct <= 100; pct += 25 {
		y := height - float64(pct)/100*drawable
		canvas.Line(g.Margin, y, width-g.Margin, y, 1, palette.Border)
		canvas.Text(strconv.Itoa(pct)+"%", 5, y+4, TextStyle{Size: 10, Align: AlignLeft, Color: palette.Text})
	}

	for _, bar := range r.Layout(canvas.Width(), canvas.Height(), before) {
		canvas.FillRect(bar.X, bar.Y, bar.Width, bar.Height, bar.Color)

		centre := bar.X + bar.Width/2
		canvas.Text(bar.Label, centre, height-10, TextStyle{Size: 12, Bold: true, Align: AlignCenter, Color: palette.Text})
		canvas.Text(FormatScore(bar.Score)+"%", centre, bar.Y-10, TextStyle{Size: 10, Align: AlignCenter, Color: palette.Text})
	}
}

// FormatScore prints a score with the shortest exact representation.
func FormatScore(score float64) (text string) {
	text = strconv.FormatFloat(score, 'f', -1, 64)
	return text
}
