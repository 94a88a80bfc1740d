package parsers

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/a4blue/sarb/internal/results"
	"github.com/a4blue/sarb/internal/sarif"
)

// SarifParser reads SARIF 2.1.0 reports. Suppressed results are skipped.
type SarifParser struct {
	logger hclog.Logger
}

func NewSarifParser(logger hclog.Logger) *SarifParser {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SarifParser{logger: logger.Named("sarif")}
}

func (p *SarifParser) Identifier() string { return "sarif" }

func (p *SarifParser) Parse(r io.Reader, projectRoot string) (results.Results, error) {
	report, err := sarif.ReadReport(r, p.logger, projectRoot, true)
	if err != nil {
		return results.Results{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if meta, err := report.ExtractToolNameAndVersion(); err == nil {
		version := ""
		if meta.Version != nil {
			version = *meta.Version
		}
		p.logger.Debug("parsing SARIF report", "tool", meta.Name, "version", version)
	}
	findings, err := report.Findings()
	if err != nil {
		return results.Results{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return findings, nil
}
