package theme

// Palette holds the theme-derived colors used when drawing the chart.
type Palette struct {
	Background string `json:"background"`
	Border     string `json:"border"`
	Text       string `json:"text"`
}

// Palettes holds one palette per theme.
type Palettes struct {
	Light Palette `json:"light"`
	Dark  Palette `json:"dark"`
}

// DefaultPalettes returns the built-in light and dark palettes.
func DefaultPalettes() (p Palettes) {
	p = Palettes{
		Light: Palette{
			Background: "#f8f9fa",
			Border:     "#dee2e6",
			Text:       "#212529",
		},
		Dark: Palette{
			Background: "#121212",
			Border:     "#333333",
			Text:       "#e0e0e0",
		},
	}
	return p
}

// For returns the palette of a theme.
func (p Palettes) For(t Theme) (palette Palette) {
	if t == Dark {
		palette = p.Dark
		return palette
	}
	palette = p.Light
	return palette
}

// WithDefaults fills unset colors from DefaultPalettes.
func (p Palettes) WithDefaults() (filled Palettes) {
	defaults := DefaultPalettes()
	filled = Palettes{
		Light: p.Light.withDefaults(defaults.Light),
		Dark:  p.Dark.withDefaults(defaults.Dark),
	}
	return filled
}

func (p Palette) withDefaults(defaults Palette) (filled Palette) {
	filled = p
	if filled.Background == "" {
		filled.Background = defaults.Background
	}
	if filled.Border == "" {
		filled.Border = defaults.Border
	}
	if filled.Text == "" {
		filled.Text = defaults.Text
	}
	return filled
}
