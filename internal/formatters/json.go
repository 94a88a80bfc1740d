package formatters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/a4blue/sarb/internal/pruner"
	"github.com/a4blue/sarb/internal/results"
)

type jsonReport struct {
	BaselineRevision string           `json:"baseline_revision"`
	LatestCount      int              `json:"latest_count"`
	BaselineCount    int              `json:"baseline_count"`
	MatchedCount     int              `json:"matched_count"`
	ResidualCount    int              `json:"residual_count"`
	Results          []results.Record `json:"results"`
}

// JSONFormatter writes counts and residual findings as a JSON document that
// the sarb-json parser can read back.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

func (f *JSONFormatter) Identifier() string { return "json" }

func (f *JSONFormatter) Format(w io.Writer, pruned *pruner.PrunedResults) error {
	doc := jsonReport{
		BaselineRevision: string(pruned.Baseline().Revision()),
		LatestCount:      pruned.TotalCount(),
		BaselineCount:    pruned.BaselineCount(),
		MatchedCount:     pruned.MatchedCount(),
		ResidualCount:    pruned.ResidualCount(),
		Results:          results.Records(pruned.Residual()),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error marshaling the result data: %w", err)
	}
	return nil
}
