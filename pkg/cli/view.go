package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/tasktrack/pkg/tracker"
	"github.com/muesli/termenv"
)

const timeLayout = "2006-01-02 15:04"

// view renders tasks and messages for one output stream.
type view struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
	dim    lipgloss.Style
	id     lipgloss.Style
	labels map[tracker.Label]lipgloss.Style
	status map[tracker.Status]lipgloss.Style
}

func newView(out io.Writer, color bool) *view {
	r := lipgloss.NewRenderer(out)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}

	return &view{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("9")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("8")),
		id:    r.NewStyle().Bold(true),
		labels: map[tracker.Label]lipgloss.Style{
			tracker.Green:  r.NewStyle().Foreground(lipgloss.Color("2")),
			tracker.Blue:   r.NewStyle().Foreground(lipgloss.Color("4")),
			tracker.Red:    r.NewStyle().Foreground(lipgloss.Color("1")),
			tracker.Yellow: r.NewStyle().Foreground(lipgloss.Color("3")),
		},
		status: map[tracker.Status]lipgloss.Style{
			tracker.Todo:  r.NewStyle().Foreground(lipgloss.Color("7")),
			tracker.Doing: r.NewStyle().Foreground(lipgloss.Color("11")),
			tracker.Done:  r.NewStyle().Foreground(lipgloss.Color("10")),
		},
	}
}

func (v *view) menu() string {
	var b strings.Builder
	b.WriteString("\n" + v.title.Render("===== Task Management CLI =====") + "\n")
	for i, item := range menuItems {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}

// task renders a task on one line, followed by its timestamps if any.
func (v *view) task(t tracker.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", v.id.Render(fmt.Sprintf("#%d", t.ID)), v.status[t.Status].Render(string(t.Status)), t.Subject)
	fmt.Fprintf(&b, "  %s", v.dim.Render("due "+t.Deadline.Format(timeLayout)))

	if t.Labels.Len() > 0 {
		names := make([]string, 0, t.Labels.Len())
		for _, l := range t.Labels.Slice() {
			names = append(names, v.labels[l].Render(l.String()))
		}
		fmt.Fprintf(&b, "  labels: %s", strings.Join(names, ", "))
	}
	if t.Started() {
		fmt.Fprintf(&b, "\n    started  %s", t.StartTime.Format(timeLayout))
	}
	if t.Finished() {
		fmt.Fprintf(&b, "\n    finished %s", t.FinishTime.Format(timeLayout))
	}
	return b.String()
}

func (v *view) tasks(ts []tracker.Task) string {
	if len(ts) == 0 {
		return v.dim.Render("No tasks found.")
	}
	lines := make([]string, len(ts))
	for i, t := range ts {
		lines[i] = v.task(t)
	}
	return strings.Join(lines, "\n")
}

func (v *view) elapsed(e tracker.Elapsed) string {
	return fmt.Sprintf("%d days, %d hours, %d minutes, %d seconds", e.Days, e.Hours, e.Minutes, e.Seconds)
}
