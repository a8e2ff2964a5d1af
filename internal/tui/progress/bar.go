// Package progress renders a single-line progress bar for long CLI
// operations such as exports.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/leefowlercu/mldata/internal/tui/styles"
)

const (
	barWidth    = 40
	redrawEvery = 50 * time.Millisecond
)

// Bar draws progress to a writer, normally stderr. It satisfies
// export.Progress.
type Bar struct {
	out   io.Writer
	label string
	model progress.Model

	mu       sync.Mutex
	total    int
	done     int
	lastDraw time.Time
}

// New creates a bar that writes to out.
func New(out io.Writer, label string) *Bar {
	return &Bar{
		out:   out,
		label: label,
		model: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
}

// Start announces the number of steps.
func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = total
	b.done = 0
	fmt.Fprintln(b.out, styles.MutedText.Render(fmt.Sprintf("%s: %d elements", b.label, total)))
	b.draw(true)
}

// Advance records one finished step.
func (b *Bar) Advance(string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.done++
	b.draw(b.done == b.total)
}

// Finish draws the final state and ends the line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.draw(true)
	fmt.Fprintln(b.out)
}

// Percent returns the completed fraction in [0, 1]. An empty run is complete.
func (b *Bar) Percent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.percent()
}

func (b *Bar) percent() float64 {
	if b.total <= 0 {
		return 1
	}
	return float64(b.done) / float64(b.total)
}

func (b *Bar) draw(force bool) {
	now := time.Now()
	if !force && now.Sub(b.lastDraw) < redrawEvery {
		return
	}
	b.lastDraw = now
	fmt.Fprintf(b.out, "\r%s %d/%d", b.model.ViewAs(b.percent()), b.done, b.total)
}
