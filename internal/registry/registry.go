// Package registry maps stable CLI codes to pluggable implementations.
package registry

import (
	"fmt"
	"strings"

	sarbErrors "github.com/a4blue/sarb/pkg/shared/errors"
)

// Identified is implemented by anything selectable by code.
type Identified interface {
	Identifier() string
}

// Registry is an immutable code -> implementation lookup.
type Registry[T Identified] struct {
	option string
	items  map[string]T
	codes  []string
}

// New builds a registry for the CLI option named option. Codes must be
// unique and non-empty.
func New[T Identified](option string, items ...T) (*Registry[T], error) {
	r := &Registry[T]{option: option, items: make(map[string]T, len(items))}
	for _, item := range items {
		code := item.Identifier()
		if strings.TrimSpace(code) == "" {
			return nil, fmt.Errorf("%s: empty identifier", option)
		}
		if _, dup := r.items[code]; dup {
			return nil, fmt.Errorf("%s: duplicate identifier %q", option, code)
		}
		r.items[code] = item
		r.codes = append(r.codes, code)
	}
	return r, nil
}

// MustNew is New for statically known item sets.
func MustNew[T Identified](option string, items ...T) *Registry[T] {
	r, err := New(option, items...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the implementation registered under code.
func (r *Registry[T]) Get(code string) (T, error) {
	item, ok := r.items[code]
	if !ok {
		var zero T
		return zero, &sarbErrors.InvalidChoiceError{Option: r.option, Value: code, Choices: r.Codes()}
	}
	return item, nil
}

// Codes lists the registered codes in registration order.
func (r *Registry[T]) Codes() []string {
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}
