package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/nikogura/resume-matcher/pkg/view"
)

const spinnerFrames = `|/-\`

// statusIndicator animates a terminal line while the page's status panel is shown.
type statusIndicator struct {
	out      io.Writer
	message  string
	interval time.Duration

	mu   sync.Mutex
	quit chan struct{}
	wg   sync.WaitGroup
}

func newStatusIndicator(out io.Writer, message string) (s *statusIndicator) {
	s = &statusIndicator{
		out:      out,
		message:  message,
		interval: 100 * time.Millisecond,
	}
	return s
}

// follow starts and stops the indicator with the status panel of page.
func (s *statusIndicator) follow(page *view.Page) {
	page.OnVisibility(func(panel view.Panel, visible bool) {
		if panel != view.PanelStatus {
			return
		}
		if visible {
			s.show()
			return
		}
		s.hide()
	})
}

func (s *statusIndicator) show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quit != nil {
		return
	}

	quit := make(chan struct{})
	s.quit = quit
	s.wg.Add(1)
	go s.animate(quit)
}

func (s *statusIndicator) animate(quit <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	fmt.Fprintf(s.out, "%s ", s.message)
	for frame := 0; ; frame++ {
		select {
		case <-quit:
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+2))
			return
		case <-ticker.C:
			fmt.Fprintf(s.out, "\r%s %c", s.message, spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

// hide stops the animation and clears the line. It is a no-op when not shown.
func (s *statusIndicator) hide() {
	s.mu.Lock()
	quit := s.quit
	s.quit = nil
	s.mu.Unlock()

	if quit == nil {
		return
	}
	close(quit)
	s.wg.Wait()
}
