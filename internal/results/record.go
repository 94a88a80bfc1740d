package results

// Record is the flat JSON representation of a Finding shared by the baseline
// file, the sarb-json input format and the json output format.
type Record struct {
	File     string     `json:"file"`
	Line     int        `json:"line"`
	Type     string     `json:"type"`
	Message  string     `json:"message,omitempty"`
	Severity string     `json:"severity,omitempty"`
	Extras   []Property `json:"extras,omitempty"`
}

// NewRecord flattens f.
func NewRecord(f Finding) Record {
	return Record{
		File:     f.Location().Path(),
		Line:     f.Location().Line(),
		Type:     string(f.Type()),
		Message:  f.Message(),
		Severity: f.Severity(),
		Extras:   f.Extras(),
	}
}

// Finding validates the record and converts it back.
func (r Record) Finding() (Finding, error) {
	loc, err := NewLocation(r.File, r.Line)
	if err != nil {
		return Finding{}, err
	}
	return NewFinding(loc, Type(r.Type), r.Message, r.Severity, r.Extras)
}

// Records flattens every finding of res.
func Records(res Results) []Record {
	out := make([]Record, 0, res.Len())
	res.Each(func(_ int, f Finding) {
		out = append(out, NewRecord(f))
	})
	return out
}
