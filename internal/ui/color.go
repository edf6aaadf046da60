package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/ftreport/internal/model"
)

var (
	newStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	trkStyle = lipgloss.NewStyle().Faint(true)
	idStyle  = lipgloss.NewStyle().Faint(true)

	statusStyles = map[model.Status]lipgloss.Style{
		model.StatusPass:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		model.StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		model.StatusPending: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		model.StatusUnknown: lipgloss.NewStyle().Faint(true),
	}
	markers = map[model.Status]string{
		model.StatusPass:    "✔",
		model.StatusFailed:  "✘",
		model.StatusPending: "…",
		model.StatusUnknown: "?",
	}
)

func NewLine(w io.Writer, path string) {
	fmt.Fprintln(w, newStyle.Render("new")+"  "+path)
}

func TrkLine(w io.Writer, path string) {
	fmt.Fprintln(w, trkStyle.Render("trk")+"  "+path)
}

func SummaryLine(w io.Writer, count int) {
	fmt.Fprintf(w, "synced %d reports\n", count)
}

// Status renders a status word in its colour, padded to the widest status.
func Status(s model.Status) string {
	return statusStyles[s].Render(fmt.Sprintf("%-7s", s))
}

func marker(s model.Status) string {
	return statusStyles[s].Render(markers[s])
}

func counts(s model.Statistics) string {
	return fmt.Sprintf("%d passed, %d failed, %d pending (%.0f%%)", s.Passed, s.Failed, s.Pending, s.PassedPercent())
}

// FeatureLine prints one feature's rollup.
func FeatureLine(w io.Writer, f *model.Feature) {
	fmt.Fprintf(w, "%s  %s  %s\n", Status(f.Status()), f.Title, idStyle.Render(counts(f.Statistics)))
}

// TotalsLine prints the run-wide rollup.
func TotalsLine(w io.Writer, runID string, features int, s model.Statistics) {
	fmt.Fprintf(w, "%s  %d features, %s  %s\n", Status(s.Status()), features, counts(s), idStyle.Render(runID))
}

// RunRow prints one history entry.
func RunRow(w io.Writer, id string, startedAt time.Time, s model.Statistics, idWidth int) {
	fmt.Fprintf(w, "%-*s  %s  %s  %s\n", idWidth, id, startedAt.Local().Format("2006-01-02 15:04:05"), Status(s.Status()), counts(s))
}

// StatusCountLine prints one bucket of a status distribution.
func StatusCountLine(w io.Writer, s model.Status, n int) {
	fmt.Fprintf(w, "  %s %d\n", Status(s), n)
}

// Tree prints features with their scenarios and steps, one marker per line.
func Tree(w io.Writer, features []*model.Feature) {
	for _, f := range features {
		fmt.Fprintf(w, "%s %s %s\n", marker(f.Status()), f.Title, idStyle.Render(f.Filename))
		if f.Background != nil {
			scenario(w, f.Background, 1)
		}
		for _, sc := range f.Scenarios {
			scenario(w, sc, 1)
		}
	}
}

func scenario(w io.Writer, sc *model.Scenario, depth int) {
	indent := strings.Repeat("  ", depth)
	label := sc.Title
	if sc.Kind != model.KindScenario {
		label = string(sc.Kind) + ": " + label
	}
	fmt.Fprintf(w, "%s%s %s\n", indent, marker(sc.Status()), label)
	if sc.Kind == model.KindOutline {
		for _, ex := range sc.Executions {
			scenario(w, ex, depth+1)
		}
		return
	}
	for _, st := range sc.Steps {
		fmt.Fprintf(w, "%s  %s %s %s\n", indent, marker(st.Status), st.Type, st.Title)
		if st.Error != nil && st.Error.Message != "" {
			fmt.Fprintf(w, "%s      %s\n", indent, statusStyles[model.StatusFailed].Render(st.Error.Message))
		}
	}
}
