// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultPhrases rotate on the status line while a request is in flight.
var DefaultPhrases = []string{
	"Processando informações",
	"Analisando contexto",
	"Gerando resposta",
	"Aplicando conhecimentos",
	"Elaborando conteúdo",
}

const (
	// DefaultTickInterval is how often the status line is redrawn.
	DefaultTickInterval = 100 * time.Millisecond

	// DefaultPhraseInterval is how long each phrase stays up.
	DefaultPhraseInterval = 5 * time.Second

	// glyphStep advances the glyph ten times a second regardless of tick rate.
	glyphStep = 100 * time.Millisecond

	// clearPadding is added to the drawn width when blanking the line.
	clearPadding = 5
)

// DefaultGlyphs returns the braille spinner frames.
func DefaultGlyphs() []string {
	return append([]string(nil), spinner.MiniDot.Frames...)
}

// =============================================================================
// INDICATOR
// =============================================================================

// Indicator redraws one terminal line with a spinner glyph, a rotating
// phrase and the elapsed time until it is signalled to stop.
//
// While running it is the only writer to w. Stop blocks until the line has
// been cleared, so the caller may print again as soon as Stop returns.
type Indicator struct {
	w              io.Writer
	phrases        []string
	glyphs         []string
	interval       time.Duration
	phraseInterval time.Duration
	clearWidth     int
	glyphStyle     *lipgloss.Style
	now            func() time.Time

	mu        sync.Mutex
	launched  bool
	stopped   bool
	lastWidth int

	stop     chan struct{}
	stopOnce sync.Once
	exited   chan struct{}
}

// IndicatorOption configures an Indicator.
type IndicatorOption func(*Indicator)

// WithPhrases replaces the rotating phrases. Empty lists are ignored.
func WithPhrases(phrases ...string) IndicatorOption {
	return func(ind *Indicator) {
		if len(phrases) > 0 {
			ind.phrases = append([]string(nil), phrases...)
		}
	}
}

// WithGlyphs replaces the spinner frames. Empty lists are ignored.
func WithGlyphs(glyphs ...string) IndicatorOption {
	return func(ind *Indicator) {
		if len(glyphs) > 0 {
			ind.glyphs = append([]string(nil), glyphs...)
		}
	}
}

// WithInterval sets the redraw interval.
func WithInterval(d time.Duration) IndicatorOption {
	return func(ind *Indicator) {
		if d > 0 {
			ind.interval = d
		}
	}
}

// WithPhraseInterval sets how long each phrase is shown.
func WithPhraseInterval(d time.Duration) IndicatorOption {
	return func(ind *Indicator) {
		if d > 0 {
			ind.phraseInterval = d
		}
	}
}

// WithClearWidth blanks this many columns once more after the final clear,
// wiping residue the child process may have left on the line.
func WithClearWidth(n int) IndicatorOption {
	return func(ind *Indicator) {
		if n > 0 {
			ind.clearWidth = n
		}
	}
}

// WithGlyphStyle colours the spinner glyph.
func WithGlyphStyle(style lipgloss.Style) IndicatorOption {
	return func(ind *Indicator) {
		ind.glyphStyle = &style
	}
}

// WithClock overrides the time source used for elapsed time.
func WithClock(now func() time.Time) IndicatorOption {
	return func(ind *Indicator) {
		if now != nil {
			ind.now = now
		}
	}
}

// NewIndicator creates an indicator writing to w.
func NewIndicator(w io.Writer, opts ...IndicatorOption) *Indicator {
	ind := &Indicator{
		w:              w,
		phrases:        append([]string(nil), DefaultPhrases...),
		glyphs:         DefaultGlyphs(),
		interval:       DefaultTickInterval,
		phraseInterval: DefaultPhraseInterval,
		now:            time.Now,
		stop:           make(chan struct{}),
		exited:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ind)
	}
	return ind
}

// =============================================================================
// RENDERING
// =============================================================================

// Line renders the status text for elapsed, without styling:
// "<glyph> <phrase>... (mm:ss)".
func (ind *Indicator) Line(elapsed time.Duration) string {
	glyph, phrase, clock := ind.parts(elapsed)
	return glyph + " " + phrase + "... (" + clock + ")"
}

func (ind *Indicator) parts(elapsed time.Duration) (glyph, phrase, clock string) {
	if elapsed < 0 {
		elapsed = 0
	}
	phrase = ind.phrases[int(elapsed/ind.phraseInterval)%len(ind.phrases)]
	glyph = ind.glyphs[int(elapsed/glyphStep)%len(ind.glyphs)]
	clock = formatClock(elapsed)
	return glyph, phrase, clock
}

// formatClock renders elapsed as zero-padded minutes and seconds.
func formatClock(elapsed time.Duration) string {
	total := int(elapsed / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start launches the redraw loop and returns immediately. The loop ends when
// done is closed or Stop is called. Calling Start again, or after Stop, has
// no effect.
func (ind *Indicator) Start(done <-chan struct{}) {
	ind.mu.Lock()
	if ind.launched || ind.stopped {
		ind.mu.Unlock()
		return
	}
	ind.launched = true
	ind.mu.Unlock()

	go ind.run(done)
}

// Stop ends the loop and waits until the line has been cleared. It is safe
// to call more than once, and before Start.
func (ind *Indicator) Stop() {
	ind.stopOnce.Do(func() { close(ind.stop) })

	ind.mu.Lock()
	launched := ind.launched
	ind.stopped = true
	ind.mu.Unlock()

	if launched {
		<-ind.exited
	}
}

func (ind *Indicator) run(done <-chan struct{}) {
	defer close(ind.exited)
	defer func() {
		// Display faults never reach the caller; the line is still cleared.
		_ = recover()
		ind.clear()
	}()

	start := ind.now()
	ticker := time.NewTicker(ind.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ind.stop:
			return
		default:
		}

		ind.draw(ind.now().Sub(start))

		select {
		case <-done:
			return
		case <-ind.stop:
			return
		case <-ticker.C:
		}
	}
}

func (ind *Indicator) draw(elapsed time.Duration) {
	glyph, phrase, clock := ind.parts(elapsed)
	plain := glyph + " " + phrase + "... (" + clock + ")"

	shown := plain
	if ind.glyphStyle != nil {
		shown = ind.glyphStyle.Render(glyph) + " " + phrase + "... (" + clock + ")"
	}

	var b strings.Builder
	if ind.lastWidth > 0 {
		b.WriteString(blankLine(ind.lastWidth + clearPadding))
	}
	b.WriteString("\r")
	b.WriteString(shown)
	io.WriteString(ind.w, b.String())

	ind.lastWidth = runewidth.StringWidth(plain)
}

func (ind *Indicator) clear() {
	defer func() { _ = recover() }()

	var b strings.Builder
	if ind.lastWidth > 0 {
		b.WriteString(blankLine(ind.lastWidth + clearPadding))
		ind.lastWidth = 0
	}
	if ind.clearWidth > 0 {
		b.WriteString(blankLine(ind.clearWidth))
	}
	if b.Len() > 0 {
		io.WriteString(ind.w, b.String())
	}
}

// blankLine returns a carriage-return framed run of n spaces.
func blankLine(n int) string {
	return "\r" + strings.Repeat(" ", n) + "\r"
}
