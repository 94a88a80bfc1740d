// Package sarif converts between SARIF 2.1.0 reports and sarb findings.
package sarif

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/a4blue/sarb/internal/results"
	"github.com/a4blue/sarb/pkg/shared/files"
)

// ErrInvalidReport is returned when the input is not a usable SARIF document.
var ErrInvalidReport = errors.New("invalid SARIF report")

// Report wraps a decoded SARIF document together with the project root its
// artifact URIs are resolved against.
type Report struct {
	*sarif.Report
	logger      hclog.Logger
	projectRoot string
}

type ToolMetadata struct {
	Name    string
	Version *string
}

func readSarifReport(r io.Reader) (*sarif.Report, error) {
	byteValue, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var sarifReport sarif.Report
	if err := json.Unmarshal(byteValue, &sarifReport); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}
	if sarifReport.Runs == nil {
		return nil, fmt.Errorf("%w: no runs", ErrInvalidReport)
	}
	return &sarifReport, nil
}

// remove all results with Suppressions property
func removeSuppressedResults(report *sarif.Report) int {
	removed := 0
	for _, run := range report.Runs {
		var filteredResults []*sarif.Result

		for _, result := range run.Results {
			if len(result.Suppressions) == 0 {
				filteredResults = append(filteredResults, result)
			} else {
				removed++
			}
		}

		run.Results = filteredResults
	}
	return removed
}

// ReadReport decodes a SARIF document from r. Suppressed results are dropped
// when noSuppressions is set.
func ReadReport(r io.Reader, logger hclog.Logger, projectRoot string, noSuppressions bool) (*Report, error) {
	sarifReport, err := readSarifReport(r)
	if err != nil {
		return nil, err
	}

	if noSuppressions {
		if n := removeSuppressedResults(sarifReport); n > 0 {
			logger.Debug("suppressed results skipped", "count", n)
		}
	}

	expandedRoot, err := files.ExpandPath(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to expand project root: %w", err)
	}
	absPath, err := filepath.Abs(expandedRoot)
	if err != nil {
		return nil, err
	}

	return &Report{
		Report:      sarifReport,
		logger:      logger,
		projectRoot: absPath,
	}, nil
}

// ExtractToolNameAndVersion returns the driver of the first run.
func (r Report) ExtractToolNameAndVersion() (*ToolMetadata, error) {
	if len(r.Runs) == 0 || r.Runs[0].Tool.Driver == nil {
		return nil, fmt.Errorf("%w: report has no tool driver", ErrInvalidReport)
	}
	return &ToolMetadata{
		Name:    r.Runs[0].Tool.Driver.Name,
		Version: r.Runs[0].Tool.Driver.SemanticVersion,
	}, nil
}

// Findings converts every result of every run. The rule id becomes the type
// and the first physical location is used. Results without a ruleId are
// resolved through rule.id, then through rule.index or ruleIndex into the
// driver's rules.
func (r Report) Findings() (results.Results, error) {
	b := results.NewBuilder(0)
	for runIdx, run := range r.Runs {
		var rules []*sarif.ReportingDescriptor
		if run.Tool.Driver != nil {
			rules = run.Tool.Driver.Rules
		}
		for resIdx, res := range run.Results {
			finding, err := r.toFinding(res, rules)
			if err != nil {
				return results.Results{}, fmt.Errorf("%w: run %d result %d: %w", ErrInvalidReport, runIdx, resIdx, err)
			}
			b.Add(finding)
		}
	}
	r.logger.Debug("SARIF results converted", "runs", len(r.Runs), "findings", b.Len())
	return b.Build(), nil
}

func (r Report) toFinding(res *sarif.Result, rules []*sarif.ReportingDescriptor) (results.Finding, error) {
	if res == nil {
		return results.Finding{}, errors.New("empty result")
	}
	ruleID := resolveRuleID(res, rules)
	if ruleID == "" {
		return results.Finding{}, errors.New("result has no ruleId")
	}

	rawURI := ExtractArtifactURI(res)
	if rawURI == "" {
		return results.Finding{}, fmt.Errorf("result for rule %q has no physical location", ruleID)
	}
	relPath, err := ToProjectPath(rawURI, r.projectRoot)
	if err != nil {
		return results.Finding{}, err
	}
	startLine, _ := ExtractRegionFromResult(res)
	if startLine == 0 {
		// file level result
		startLine = 1
	}
	loc, err := results.NewLocation(relPath, startLine)
	if err != nil {
		return results.Finding{}, err
	}

	message := ""
	if res.Message.Text != nil {
		message = *res.Message.Text
	}
	level := "warning"
	if res.Level != nil && *res.Level != "" {
		level = *res.Level
	}

	var extras []results.Property
	if col := extractStartColumn(res); col > 0 {
		extras = append(extras, results.Property{Name: "column", Value: strconv.Itoa(col)})
	}

	return results.NewFinding(loc, results.Type(ruleID), message, level, extras)
}

func resolveRuleID(res *sarif.Result, rules []*sarif.ReportingDescriptor) string {
	if res.RuleID != nil {
		if id := strings.TrimSpace(*res.RuleID); id != "" {
			return id
		}
	}

	index := res.RuleIndex
	if ref := res.Rule; ref != nil {
		if ref.Id != nil {
			if id := strings.TrimSpace(*ref.Id); id != "" {
				return id
			}
		}
		if ref.Index != nil {
			index = ref.Index
		}
	}
	if index == nil || int(*index) >= len(rules) || rules[*index] == nil {
		return ""
	}
	return strings.TrimSpace(rules[*index].ID)
}
