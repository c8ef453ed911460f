package view

import (
	"io"
	"sync"

	"github.com/nikogura/resume-matcher/pkg/chart"
	"github.com/nikogura/resume-matcher/pkg/theme"
	"github.com/pkg/errors"
)

// Panel is a region of the page whose visibility is toggled.
type Panel string

const (
	PanelStatus Panel = "status"
	PanelResult Panel = "result"
	PanelCopy   Panel = "copy"
	PanelExport Panel = "export"
)

// Fragment is a temporary document fragment attached to the page.
type Fragment struct {
	ID   string
	HTML string
}

// Page is the in-memory state of the page: panels, slots, alerts and the chart canvas.
// It is safe for concurrent use.
type Page struct {
	mu         sync.RWMutex
	theme      theme.Theme
	visible    map[Panel]bool
	texts      map[string]string
	chips      map[string]ChipList
	gaugeWidth string
	gaugeColor string
	errorText  string
	alerts     []string
	fragments  []Fragment
	canvas     chart.Canvas
	chartDrawn bool
	watchers   []func(panel Panel, visible bool)
}

// NewPage creates an idle page drawing its chart on canvas. The copy button starts with its default label.
func NewPage(canvas chart.Canvas) (p *Page) {
	p = &Page{
		theme:   theme.Light,
		visible: make(map[Panel]bool),
		texts:   map[string]string{SlotCopyButton: CopyLabel},
		chips:   make(map[string]ChipList),
		canvas:  canvas,
	}
	return p
}

// Copy button labels.
const (
	CopyLabel   = "Copy Suggestion"
	CopiedLabel = "✓ Copied!"
)

// SetTheme reflects the active theme onto the page root.
func (p *Page) SetTheme(t theme.Theme) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = t
}

// SetText writes a text slot.
func (p *Page) SetText(slot, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts[slot] = text
}

// SetChips writes a chip list slot.
func (p *Page) SetChips(slot string, chips ChipList) {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]string, len(chips.Items))
	copy(items, chips.Items)
	p.chips[slot] = ChipList{Items: items, Fallback: chips.Fallback}
}

// SetGauge sets the score gauge fill.
func (p *Page) SetGauge(width, color string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gaugeWidth = width
	p.gaugeColor = color
}

// SetVisible shows or hides a panel. Watchers are notified when the visibility changes.
func (p *Page) SetVisible(panel Panel, visible bool) {
	p.mu.Lock()
	changed := p.visible[panel] != visible
	p.visible[panel] = visible
	watchers := p.watchers
	p.mu.Unlock()

	if !changed {
		return
	}
	for _, watch := range watchers {
		watch(panel, visible)
	}
}

// OnVisibility registers fn to be called, outside the page lock, whenever a panel is shown or hidden.
func (p *Page) OnVisibility(fn func(panel Panel, visible bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.watchers = append(p.watchers[:len(p.watchers):len(p.watchers)], fn)
}

// Visible reports whether a panel is shown.
func (p *Page) Visible(panel Panel) (visible bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	visible = p.visible[panel]
	return visible
}

// ShowError puts error text into the suggestion slot of the result area.
func (p *Page) ShowError(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errorText = text
	p.texts[SlotSuggestion] = text
}

// ClearError removes a previously shown error.
func (p *Page) ClearError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errorText = ""
}

// Alert records a blocking warning for the user.
func (p *Page) Alert(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, text)
}

// DrainAlerts returns and clears pending alerts.
func (p *Page) DrainAlerts() (alerts []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	alerts = p.alerts
	p.alerts = nil
	return alerts
}

// Attach appends a temporary fragment and returns the function removing it.
// The returned function is safe to call more than once.
func (p *Page) Attach(fragment Fragment) (detach func()) {
	p.mu.Lock()
	p.fragments = append(p.fragments, fragment)
	p.mu.Unlock()

	var once sync.Once
	detach = func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, f := range p.fragments {
				if f.ID == fragment.ID {
					p.fragments = append(p.fragments[:i], p.fragments[i+1:]...)
					return
				}
			}
		})
	}
	return detach
}

// Fragments returns the currently attached fragments.
func (p *Page) Fragments() (fragments []Fragment) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fragments = make([]Fragment, len(p.fragments))
	copy(fragments, p.fragments)
	return fragments
}

// DrawChart runs draw against the page canvas while holding the page lock.
func (p *Page) DrawChart(draw func(canvas chart.Canvas)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.canvas == nil {
		return
	}
	draw(p.canvas)
	p.chartDrawn = true
}

type pngEncoder interface {
	EncodePNG(w io.Writer) (err error)
}

// ErrNoChart is returned when the chart has not been drawn or cannot be encoded.
var ErrNoChart = errors.New("chart not available")

// WriteChartPNG encodes the chart canvas as PNG.
func (p *Page) WriteChartPNG(w io.Writer) (err error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	encoder, ok := p.canvas.(pngEncoder)
	if !ok || !p.chartDrawn {
		err = ErrNoChart
		return err
	}

	err = encoder.EncodePNG(w)
	return err
}

// Snapshot is an immutable copy of the page state for presenters.
type Snapshot struct {
	Theme      theme.Theme
	Visible    map[Panel]bool
	Texts      map[string]string
	Chips      map[string]ChipList
	GaugeWidth string
	GaugeColor string
	Error      string
	ChartDrawn bool
	Fragments  int
}

// Snapshot copies the current page state.
func (p *Page) Snapshot() (s Snapshot) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s = Snapshot{
		Theme:      p.theme,
		Visible:    make(map[Panel]bool, len(p.visible)),
		Texts:      make(map[string]string, len(p.texts)),
		Chips:      make(map[string]ChipList, len(p.chips)),
		GaugeWidth: p.gaugeWidth,
		GaugeColor: p.gaugeColor,
		Error:      p.errorText,
		ChartDrawn: p.chartDrawn,
		Fragments:  len(p.fragments),
	}
	for k, v := range p.visible {
		s.Visible[k] = v
	}
	for k, v := range p.texts {
		s.Texts[k] = v
	}
	for k, v := range p.chips {
		s.Chips[k] = v
	}
	return s
}
