package formatters

import (
	"io"

	"github.com/a4blue/sarb/internal/ci"
	"github.com/a4blue/sarb/internal/pruner"
	"github.com/a4blue/sarb/internal/sarif"
)

// SarifFormatter writes residual findings as a SARIF 2.1.0 report. Every
// result is marked "new" and the run refers to the baseline it was pruned
// with. The checkout is recorded as version control provenance, taken from
// the CI job when there is one and from the local repository otherwise.
type SarifFormatter struct {
	toolVersion string
	lookup      ci.LookupFunc
}

func NewSarifFormatter(toolVersion string) *SarifFormatter {
	return &SarifFormatter{toolVersion: toolVersion}
}

func (f *SarifFormatter) Identifier() string { return "sarif" }

func (f *SarifFormatter) Format(w io.Writer, pruned *pruner.PrunedResults) error {
	opts := sarif.ReportOptions{
		ToolName:      "sarb",
		ToolVersion:   f.toolVersion,
		BaselineGUID:  pruned.Baseline().ID().String(),
		BaselineState: "new",
	}
	if env, ok := ci.Detect(f.lookup); ok {
		opts.VersionControl = &sarif.VersionControl{
			RepositoryURI: env.RepositoryURL,
			RevisionID:    env.Commit,
			Branch:        env.Branch,
		}
	} else if checkout := pruned.Checkout(); checkout.RemoteURL != "" {
		opts.VersionControl = &sarif.VersionControl{
			RepositoryURI: checkout.RemoteURL,
			RevisionID:    checkout.Commit,
			Branch:        checkout.Branch,
		}
	}
	return sarif.WriteReport(w, pruned.Residual(), opts)
}
