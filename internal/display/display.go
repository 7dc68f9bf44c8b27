// Package display renders everything the brewing companion prints to the
// terminal.
//
// The [Printer] serializes writes so the supervisor, the watcher and the
// input loop can print concurrently without garbling lines. The Render*
// functions are pure and return styled strings.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottobrew/internal/engine"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is the muted slate of the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#86efac"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d6a77a"))
)

// ── Printer ──────────────────────────────────────────────────────

// Printer writes styled lines to an output. Safe for concurrent use.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print prints without a trailing newline.
func (p *Printer) Print(a ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, a...)
}

// Println prints a line.
func (p *Printer) Println(a ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, a...)
}

// Printf prints formatted text followed by a newline.
func (p *Printer) Printf(format string, a ...interface{}) {
	p.Println(fmt.Sprintf(format, a...))
}

// PrintChat prints a line spoken by the companion.
func (p *Printer) PrintChat(text string) {
	p.Println(chatStyle.Render("  " + text))
}

// PrintHeader prints a section header such as "Stage 2/4".
func (p *Printer) PrintHeader(text string) {
	p.Println(headerStyle.Render("  " + text))
}

// PrintInstruction prints the main line of a stage.
func (p *Printer) PrintInstruction(text string) {
	p.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary, dimmed line.
func (p *Printer) PrintHint(text string) {
	p.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an alert or error line.
func (p *Printer) PrintUrgent(text string) {
	p.Println(urgentOutputStyle.Render("  " + text))
}

// Prompt is the input prompt shown during a brew.
func Prompt() string {
	return promptStyle.Render("brew") + secondaryStyle.Render("> ")
}

// RenderStatusBar renders a one-line bar with the current stage, the
// scale target and the clock, padded to width.
func RenderStatusBar(p engine.Progress, width int) string {
	parts := []string{
		labelStyle.Render(fmt.Sprintf("Stage %d/%d ", p.StageNumber, p.StageCount)) + timerRunStyle.Render(p.Stage.Type.String()),
		labelStyle.Render("pour to ") + timerRunStyle.Render(fmt.Sprintf("%d/%d ml", p.PourTo, p.TargetWater)),
		labelStyle.Render("left ") + timerRunStyle.Render(fmtDuration(p.Remaining)),
		labelStyle.Render("total ") + timerRunStyle.Render(fmtDuration(p.Elapsed)),
	}
	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "
	if width <= 0 {
		width = 80
	}
	return barBg.Width(width).Render(content)
}

// ── Helpers ──────────────────────────────────────────────────────

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
