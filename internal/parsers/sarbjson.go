package parsers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/a4blue/sarb/internal/results"
)

// SarbJSONParser reads sarb's own format: a JSON array of records, or an
// object carrying them under "results" as written by the json formatter.
// File paths may be absolute or project relative.
type SarbJSONParser struct {
	logger hclog.Logger
}

func NewSarbJSONParser(logger hclog.Logger) *SarbJSONParser {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SarbJSONParser{logger: logger.Named("sarb-json")}
}

func (p *SarbJSONParser) Identifier() string { return "sarb-json" }

func (p *SarbJSONParser) Parse(r io.Reader, projectRoot string) (results.Results, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return results.Results{}, fmt.Errorf("failed to read input: %w", err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		return results.Results{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	b := results.NewBuilder(len(records))
	for i, rec := range records {
		if filepath.IsAbs(rec.File) {
			loc, err := results.NewLocationFromAbsolute(projectRoot, rec.File, rec.Line)
			if err != nil {
				return results.Results{}, fmt.Errorf("%w: entry %d: %w", ErrInvalidInput, i, err)
			}
			rec.File = loc.Path()
		}
		finding, err := rec.Finding()
		if err != nil {
			return results.Results{}, fmt.Errorf("%w: entry %d: %w", ErrInvalidInput, i, err)
		}
		b.Add(finding)
	}
	p.logger.Debug("parsed sarb-json results", "findings", b.Len())
	return b.Build(), nil
}

func decodeRecords(data []byte) ([]results.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc struct {
			Results []results.Record `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		if doc.Results == nil {
			return nil, errors.New(`object input has no "results" list`)
		}
		return doc.Results, nil
	}

	var records []results.Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	return records, nil
}
