package results

import (
	"fmt"
	"strings"
)

// Property is a simple name/value pair used for tool specific metadata that
// has no dedicated field (column, rule help URI, fingerprint, ...).
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Type identifies the rule or category that produced a finding.
type Type string

// Finding is a single issue reported by an analysis tool. It is immutable
// once constructed.
type Finding struct {
	location Location
	typ      Type
	message  string
	severity string
	extras   []Property
}

// NewFinding validates and builds a Finding. extras are copied.
func NewFinding(loc Location, typ Type, message, severity string, extras []Property) (Finding, error) {
	if loc.IsZero() {
		return Finding{}, fmt.Errorf("%w: finding has no location", ErrInvalidLocation)
	}
	if strings.TrimSpace(string(typ)) == "" {
		return Finding{}, fmt.Errorf("finding at %s has an empty type", loc)
	}
	return Finding{
		location: loc,
		typ:      typ,
		message:  message,
		severity: severity,
		extras:   copyProperties(extras),
	}, nil
}

// Location returns where the finding was reported.
func (f Finding) Location() Location { return f.location }

// Type returns the rule identifier.
func (f Finding) Type() Type { return f.typ }

// Message returns the tool's message.
func (f Finding) Message() string { return f.message }

// Severity returns the tool's severity, empty when the tool reports none.
func (f Finding) Severity() string { return f.severity }

// Extras returns a copy of the additional metadata.
func (f Finding) Extras() []Property { return copyProperties(f.extras) }

// Extra returns the value of the named property.
func (f Finding) Extra(name string) (string, bool) {
	for _, p := range f.extras {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s] %s", f.location, f.typ, f.message)
}

func copyProperties(in []Property) []Property {
	if len(in) == 0 {
		return nil
	}
	out := make([]Property, len(in))
	copy(out, in)
	return out
}
