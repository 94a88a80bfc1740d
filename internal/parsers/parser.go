// Package parsers turns the output of static analysis tools into findings.
package parsers

import (
	"errors"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/a4blue/sarb/internal/registry"
	"github.com/a4blue/sarb/internal/results"
)

// InputFormatOption is the CLI option parsers are selected with.
const InputFormatOption = "input-format"

// ErrInvalidInput is returned when analysis results cannot be parsed.
var ErrInvalidInput = errors.New("invalid analysis results")

// Parser converts one tool output format. projectRoot is the absolute
// directory finding paths are made relative to.
type Parser interface {
	Identifier() string
	Parse(r io.Reader, projectRoot string) (results.Results, error)
}

// Registry selects parsers by code.
type Registry = registry.Registry[Parser]

// NewRegistry builds a registry from the given parsers.
func NewRegistry(parsers ...Parser) (*Registry, error) {
	return registry.New(InputFormatOption, parsers...)
}

// Default returns a registry of every built-in parser.
func Default(logger hclog.Logger) *Registry {
	return registry.MustNew[Parser](InputFormatOption,
		NewSarifParser(logger),
		NewSarbJSONParser(logger),
	)
}
