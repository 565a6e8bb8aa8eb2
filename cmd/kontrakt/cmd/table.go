package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/msto63/kontrakt/internal/console"
)

// newTable returns a borderless table. Headers use the console palette on a terminal.
func newTable(out io.Writer, headers ...string) *table.Table {
	cell := lipgloss.NewStyle().PaddingRight(2)
	header := cell
	if console.IsTerminal(out) {
		header = console.PromptStyle.PaddingRight(2)
	}

	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func renderTable(out io.Writer, t *table.Table) error {
	_, err := fmt.Fprintln(out, t.Render())
	return err
}
