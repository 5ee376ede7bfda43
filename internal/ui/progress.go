package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressBar shows a simple progress bar
type ProgressBar struct {
	mu      sync.Mutex
	total   int
	current int
	width   int
	writer  io.Writer
	label   string
}

// NewProgressBar creates a progress bar writing to the message output.
func NewProgressBar(total int, label string) *ProgressBar {
	return &ProgressBar{
		total:  total,
		width:  40,
		writer: out,
		label:  label,
	}
}

// SetWriter redirects the bar.
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	p.writer = w
	p.mu.Unlock()
}

// Update updates the progress bar
func (p *ProgressBar) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = min(current, p.total)
	p.render()
}

// Increment increments the progress by 1
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = min(p.current+1, p.total)
	p.render()
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		return
	}
	percent := float64(p.current) / float64(p.total) * 100

	if !IsTerminal() {
		// only the final line is worth keeping in a log
		if p.current >= p.total {
			fmt.Fprintf(p.writer, "%s: %d/%d (%.1f%%)\n", p.label, p.current, p.total, percent)
		}
		return
	}

	filled := p.width * p.current / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	fmt.Fprintf(p.writer, "\r%s [%s] %d/%d (%.1f%%)", p.label, bar, p.current, p.total, percent)
	if p.current >= p.total {
		fmt.Fprintln(p.writer)
	}
}

// Spinner shows an animated spinner for indeterminate progress
type Spinner struct {
	chars  []string
	label  string
	writer io.Writer
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewSpinner creates a new spinner
func NewSpinner(label string) *Spinner {
	return &Spinner{
		chars:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		label:  label,
		writer: out,
		done:   make(chan struct{}),
	}
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	if !IsTerminal() {
		fmt.Fprintf(s.writer, "%s...\n", s.label)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i = (i + 1) % len(s.chars) {
			select {
			case <-s.done:
				fmt.Fprint(s.writer, "\r"+strings.Repeat(" ", len(s.label)+4)+"\r")
				return
			case <-ticker.C:
				fmt.Fprintf(s.writer, "\r%s %s", s.chars[i], s.label)
			}
		}
	}()
}

// Stop stops the spinner. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}
