package formatters

import (
	"fmt"
	"io"

	"github.com/a4blue/sarb/internal/pruner"
	"github.com/a4blue/sarb/internal/results"
)

// TextFormatter prints one "path:line: [type] message" line per residual
// finding, suitable for grep and CI annotations.
type TextFormatter struct{}

func NewTextFormatter() *TextFormatter { return &TextFormatter{} }

func (f *TextFormatter) Identifier() string { return "text" }

func (f *TextFormatter) Format(w io.Writer, pruned *pruner.PrunedResults) error {
	var err error
	pruned.Residual().Each(func(_ int, finding results.Finding) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s: [%s] %s\n", finding.Location(), finding.Type(), finding.Message())
	})
	return err
}
