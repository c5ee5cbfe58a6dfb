package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Tomlord1122/todo-tracker/internal/client"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

func ok(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}

func fail(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✖ "+msg))
}

func doList(ctx context.Context, c *client.Client, opt Options) int {
	todos, err := c.ListTodos(ctx)
	if err != nil {
		return report(opt, c, "list", err)
	}

	done := 0
	for _, t := range todos {
		if t.IsCompleted {
			done++
		}
	}

	lines := []string{
		fmt.Sprintf("%s  %s %d  %s %d  %s %d",
			titleStyle.Render("Todos"),
			successStyle.Render("✔"), done,
			pendingStyle.Render("•"), len(todos)-done,
			accentStyle.Render("Total"), len(todos),
		),
		"",
	}
	if len(todos) == 0 {
		lines = append(lines, mutedStyle.Render("no todos"))
	}
	for i, t := range todos {
		box, title := mutedStyle.Render("☐"), t.Title
		if t.IsCompleted {
			box, title = successStyle.Render("☑"), doneStyle.Render(t.Title)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s  %s",
			mutedStyle.Render(fmt.Sprintf("%2d.", i+1)), box, title, mutedStyle.Render(shortID(t.ID))))
	}
	lines = append(lines, "", mutedStyle.Render("Tip: add with `todo add \"Buy milk\"`"))

	fmt.Fprintln(opt.Out, panelStyle.Render(strings.Join(lines, "\n")))
	return 0
}
