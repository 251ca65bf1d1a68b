package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type Formatter struct {
	w io.Writer

	ok      lipgloss.Style
	bad     lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
	heading lipgloss.Style
	status  map[string]lipgloss.Style
}

// NewFormatter styles output for w; colors are dropped when w is not a terminal.
func NewFormatter(w io.Writer) *Formatter {
	r := lipgloss.NewRenderer(w)
	return &Formatter{
		w:       w,
		ok:      r.NewStyle().Foreground(lipgloss.Color("42")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("243")),
		heading: r.NewStyle().Foreground(lipgloss.Color("62")).Bold(true),
		status: map[string]lipgloss.Style{
			"RECORDING":   r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			"PAUSED":      r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
			"INTERRUPTED": r.NewStyle().Foreground(lipgloss.Color("135")).Bold(true),
			"NONE":        r.NewStyle().Foreground(lipgloss.Color("243")),
		},
	}
}

func (f *Formatter) RecordingStarted(path, config string) {
	fmt.Fprintf(f.w, "🎙️  Recording started (%s)\n", config)
	fmt.Fprintf(f.w, "   %s\n", f.muted.Render(path))
}

func (f *Formatter) RecordingPaused() {
	fmt.Fprintf(f.w, "⏸️  Recording paused\n")
}

func (f *Formatter) RecordingResumed() {
	fmt.Fprintf(f.w, "⏺️  Recording resumed\n")
}

func (f *Formatter) RecordingStopped(path string, duration time.Duration, segments int) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(duration))
	if segments > 1 {
		fmt.Fprintf(f.w, "   %s\n", f.muted.Render(fmt.Sprintf("stitched from %d segments", segments)))
	}
	fmt.Fprintf(f.w, "%s %s\n", f.ok.Render("✅ Saved:"), path)
}

func (f *Formatter) Status(status, path string, segments, interruptions int, elapsed time.Duration) {
	style, ok := f.status[status]
	if !ok {
		style = f.muted
	}
	fmt.Fprintf(f.w, "● %s\n", style.Render(status))
	if status == "NONE" {
		return
	}
	fmt.Fprintf(f.w, "   file:          %s\n", path)
	fmt.Fprintf(f.w, "   elapsed:       %s\n", formatDuration(elapsed))
	fmt.Fprintf(f.w, "   segments:      %d\n", segments)
	fmt.Fprintf(f.w, "   interruptions: %d\n", interruptions)
}

func (f *Formatter) InterruptionSent(kind string) {
	fmt.Fprintf(f.w, "📞 Interruption %s sent\n", kind)
}

// RecordingRow is one line of the history listing.
type RecordingRow struct {
	StoppedAt time.Time
	Duration  time.Duration
	Segments  int
	Outcome   string
	Path      string
}

func (f *Formatter) RecordingList(rows []RecordingRow) {
	if len(rows) == 0 {
		f.Info("No recordings yet")
		return
	}
	fmt.Fprintf(f.w, "%s\n\n", f.heading.Render("📁 Recordings:"))
	tw := tabwriter.NewWriter(f.w, 0, 0, 3, ' ', 0)
	for _, r := range rows {
		outcome := f.ok.Render(r.Outcome)
		if r.Outcome != "complete" {
			outcome = f.bad.Render(r.Outcome)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%d seg\t%s\t%s\n",
			r.StoppedAt.Local().Format("2006-01-02 15:04"),
			formatDuration(r.Duration),
			r.Segments,
			outcome,
			r.Path,
		)
	}
	_ = tw.Flush()
}

func (f *Formatter) Recovered(path string, duration time.Duration) {
	fmt.Fprintf(f.w, "%s %s (%s)\n", f.ok.Render("✅ Recovered:"), path, formatDuration(duration))
}

func (f *Formatter) PendingRecoveries(ids []string) {
	if len(ids) == 0 {
		f.Info("Nothing to recover")
		return
	}
	fmt.Fprintf(f.w, "%s\n", f.heading.Render("🩹 Sessions awaiting recovery:"))
	for _, id := range ids {
		fmt.Fprintf(f.w, "  %s\n", id)
	}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "%s\n", f.bad.Render("❌ "+msg))
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "%s\n", f.ok.Render("✅ "+msg))
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "%s\n", f.warn.Render("⚠️  "+msg))
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, f.bad.Render(detail))
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
