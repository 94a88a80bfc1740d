package baseline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/results"
	"github.com/a4blue/sarb/pkg/shared/files"
)

// FormatVersion is the version of the on-disk baseline format written by Save.
const FormatVersion = 1

// ErrInvalidBaseline is returned when a baseline file is missing, malformed
// or written in an unsupported format.
var ErrInvalidBaseline = errors.New("invalid baseline")

type fileFormat struct {
	Format          int              `json:"sarb_format"`
	ID              string           `json:"id"`
	Revision        string           `json:"revision"`
	ResultsParser   string           `json:"results_parser"`
	HistoryAnalyser string           `json:"history_analyser"`
	CreatedAt       time.Time        `json:"created_at"`
	ToolVersion     string           `json:"tool_version,omitempty"`
	Results         []results.Record `json:"results"`
}

// Store persists snapshots as JSON files.
type Store struct {
	logger hclog.Logger
}

// NewStore creates a store logging through logger.
func NewStore(logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{logger: logger.Named("baseline")}
}

// Save writes snap to path atomically.
func (s *Store) Save(path string, snap Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return err
	}
	if err := files.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write baseline %q: %w", path, err)
	}
	s.logger.Info("baseline saved", "path", path, "revision", snap.Revision(), "findings", snap.Len())
	return nil
}

// Load reads the baseline stored at path.
func (s *Store) Load(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidBaseline, err)
	}
	defer f.Close()

	snap, err := Decode(f)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	s.logger.Debug("baseline loaded", "path", path, "id", snap.ID().String(),
		"revision", snap.Revision(), "parser", snap.ParserID(), "findings", snap.Len())
	return snap, nil
}

// Encode writes the JSON form of snap to w.
func Encode(w io.Writer, snap Snapshot) error {
	doc := fileFormat{
		Format:          FormatVersion,
		ID:              snap.ID().String(),
		Revision:        string(snap.Revision()),
		ResultsParser:   snap.ParserID(),
		HistoryAnalyser: snap.HistoryAnalyser(),
		CreatedAt:       snap.CreatedAt(),
		ToolVersion:     snap.ToolVersion(),
		Results:         results.Records(snap.Results()),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error marshaling the baseline: %w", err)
	}
	return nil
}

// Decode parses a baseline previously written by Encode.
func Decode(r io.Reader) (Snapshot, error) {
	var doc fileFormat
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidBaseline, err)
	}

	if doc.Format != FormatVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported format version %d", ErrInvalidBaseline, doc.Format)
	}
	if strings.TrimSpace(doc.Revision) == "" {
		return Snapshot{}, fmt.Errorf("%w: missing revision", ErrInvalidBaseline)
	}
	if strings.TrimSpace(doc.ResultsParser) == "" {
		return Snapshot{}, fmt.Errorf("%w: missing results parser", ErrInvalidBaseline)
	}
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: bad id %q: %w", ErrInvalidBaseline, doc.ID, err)
	}
	if doc.HistoryAnalyser != "" && doc.HistoryAnalyser != GitHistoryAnalyser {
		return Snapshot{}, fmt.Errorf("%w: unsupported history analyser %q", ErrInvalidBaseline, doc.HistoryAnalyser)
	}

	b := results.NewBuilder(len(doc.Results))
	for i, rec := range doc.Results {
		finding, err := rec.Finding()
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: result %d: %w", ErrInvalidBaseline, i, err)
		}
		b.Add(finding)
	}

	return New(history.Revision(doc.Revision), b.Build(), doc.ResultsParser,
		WithID(id),
		WithCreatedAt(doc.CreatedAt),
		WithToolVersion(doc.ToolVersion),
		WithHistoryAnalyser(GitHistoryAnalyser),
	), nil
}
