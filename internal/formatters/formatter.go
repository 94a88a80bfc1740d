// Package formatters renders pruned results for humans and machines.
package formatters

import (
	"io"

	"github.com/a4blue/sarb/internal/pruner"
	"github.com/a4blue/sarb/internal/registry"
)

// OutputFormatOption is the CLI option formatters are selected with.
const OutputFormatOption = "output-format"

// Formatter writes a pruned result set to w.
type Formatter interface {
	Identifier() string
	Format(w io.Writer, pruned *pruner.PrunedResults) error
}

// Registry selects formatters by code.
type Registry = registry.Registry[Formatter]

// NewRegistry builds a registry from the given formatters.
func NewRegistry(formatters ...Formatter) (*Registry, error) {
	return registry.New(OutputFormatOption, formatters...)
}

// Default returns a registry of every built-in formatter. toolVersion is
// embedded in machine readable outputs.
func Default(toolVersion string) *Registry {
	return registry.MustNew[Formatter](OutputFormatOption,
		NewTableFormatter(),
		NewJSONFormatter(),
		NewSarifFormatter(toolVersion),
		NewTextFormatter(),
	)
}
