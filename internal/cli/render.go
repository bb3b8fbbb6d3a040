package cli

import (
	"fmt"
	"io"
	"strings"
	"taskDesk/internal/models/task"
	"taskDesk/internal/view"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const shortIDLen = 8

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Strikethrough(true)

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	priorityStyles = map[string]lipgloss.Style{
		string(task.PriorityHigh):   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		string(task.PriorityMedium): lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		string(task.PriorityLow):    lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}
)

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// renderDashboard печатает заголовок фильтра, счётчики и строки задач
func renderDashboard(w io.Writer, d view.Dashboard) {
	fmt.Fprintf(w, "%s %s\n",
		titleStyle.Render(d.Filter.Label()),
		labelStyle.Render(fmt.Sprintf("(%d)", d.Counts.Of(d.Filter))),
	)

	tabs := make([]string, 0, len(view.Filters))
	for _, f := range view.Filters {
		tabs = append(tabs, fmt.Sprintf("%s %d", f.Label(), d.Counts.Of(f)))
	}
	fmt.Fprintln(w, labelStyle.Render(strings.Join(tabs, " | ")))

	if len(d.Tasks) == 0 {
		if d.Search != "" {
			fmt.Fprintln(w, labelStyle.Render("Нет задач по запросу \""+d.Search+"\""))
		} else {
			fmt.Fprintln(w, labelStyle.Render("Задач нет"))
		}
		return
	}
	for _, row := range d.Tasks {
		renderRow(w, row)
	}
}

func renderRow(w io.Writer, row view.Row) {
	check := checkbox(row.Completed)
	title := row.Title
	if row.Completed {
		title = doneStyle.Render(title)
	}

	parts := []string{
		check,
		labelStyle.Render(shortID(row.ID)),
		title,
		priorityStyles[row.Priority].Render(row.Priority),
	}
	if row.DueDate != nil {
		parts = append(parts, labelStyle.Render("до "+formatDate(*row.DueDate)))
	}
	if row.IsOverdue {
		parts = append(parts, overdueStyle.Render("ПРОСРОЧЕНО"))
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))

	if row.Description != "" {
		fmt.Fprintln(w, "      "+labelStyle.Render(row.Description))
	}
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

func renderTask(w io.Writer, verb string, t task.Task) {
	fmt.Fprintf(w, "%s %s %s %s\n", verb, checkbox(t.Completed), labelStyle.Render(shortID(t.ID)), t.Title)
}
