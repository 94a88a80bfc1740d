package formatters

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/a4blue/sarb/internal/pruner"
	"github.com/a4blue/sarb/internal/results"
)

var (
	colorBorder = lipgloss.Color("#6B7280")
	colorHeader = lipgloss.Color("#7D56F4")
	colorError  = lipgloss.Color("#FF3838")
	colorOK     = lipgloss.Color("#00D26A")
)

// TableFormatter prints residual findings as a table. Colours are only used
// when writing to a terminal.
type TableFormatter struct {
	isTerminal func(w io.Writer) bool
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{isTerminal: writerIsTerminal}
}

func (f *TableFormatter) Identifier() string { return "table" }

func (f *TableFormatter) Format(w io.Writer, pruned *pruner.PrunedResults) error {
	colour := f.isTerminal(w)
	renderer := lipgloss.NewRenderer(w)
	plain := renderer.NewStyle()

	if !pruned.HasNewIssues() {
		summary := plain
		if colour {
			summary = summary.Foreground(colorOK)
		}
		_, err := fmt.Fprintln(w, summary.Render("No new issues since baseline"))
		return err
	}

	summary := plain.Bold(true)
	if colour {
		summary = summary.Foreground(colorError)
	}
	if _, err := fmt.Fprintln(w, summary.Render(fmt.Sprintf("%d new issue(s) since baseline", pruned.ResidualCount()))); err != nil {
		return err
	}

	rows := make([][]string, 0, pruned.ResidualCount())
	pruned.Residual().Each(func(_ int, finding results.Finding) {
		rows = append(rows, []string{
			finding.Location().Path(),
			strconv.Itoa(finding.Location().Line()),
			string(finding.Type()),
			finding.Message(),
		})
	})

	header := plain.Bold(true).Padding(0, 1)
	cell := plain.Padding(0, 1)
	border := plain
	if colour {
		header = header.Foreground(colorHeader)
		border = border.Foreground(colorBorder)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers("FILE", "LINE", "TYPE", "MESSAGE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
