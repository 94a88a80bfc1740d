package sarif

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/a4blue/sarb/internal/results"
)

const informationURI = "https://github.com/a4blue/sarb"

// VersionControl describes the checkout the findings were produced from.
type VersionControl struct {
	RepositoryURI string
	RevisionID    string
	Branch        string
}

// ReportOptions controls the run metadata of a written report.
type ReportOptions struct {
	ToolName       string
	ToolVersion    string
	BaselineGUID   string
	// BaselineState is set on every result when not empty.
	BaselineState  string
	VersionControl *VersionControl
}

// BuildReport creates a single run report listing findings. Rules are
// registered once per distinct finding type.
func BuildReport(findings results.Results, opts ReportOptions) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(opts.ToolName, informationURI)
	if opts.ToolVersion != "" {
		version := opts.ToolVersion
		run.Tool.Driver.SemanticVersion = &version
	}
	if opts.BaselineGUID != "" {
		run.WithBaselineGUID(opts.BaselineGUID)
	}
	if vc := opts.VersionControl; vc != nil && vc.RepositoryURI != "" {
		details := sarif.NewVersionControlDetails().WithRepositoryURI(vc.RepositoryURI)
		if vc.RevisionID != "" {
			details.WithRevisionID(vc.RevisionID)
		}
		if vc.Branch != "" {
			details.WithBranch(vc.Branch)
		}
		run.AddVersionControlProvenance(details)
	}

	findings.Each(func(_ int, f results.Finding) {
		rule := run.AddRule(string(f.Type()))

		region := sarif.NewRegion().WithStartLine(f.Location().Line())
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Location().Path())).
				WithRegion(region),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(f.Message())).
			WithLocations([]*sarif.Location{location})
		if level := toSarifLevel(f.Severity()); level != "" {
			result.WithLevel(level)
		}
		if opts.BaselineState != "" {
			result.WithBaselineState(opts.BaselineState)
		}
		run.AddResult(result)
	})

	report.AddRun(run)
	return report, nil
}

// WriteReport renders findings as an indented SARIF document.
func WriteReport(w io.Writer, findings results.Results, opts ReportOptions) error {
	report, err := BuildReport(findings, opts)
	if err != nil {
		return err
	}
	return report.PrettyWrite(w)
}

func toSarifLevel(severity string) string {
	switch severity {
	case "error", "warning", "note", "none":
		return severity
	default:
		return ""
	}
}
