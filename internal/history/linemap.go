package history

import (
	"bytes"
	"fmt"
)

// OpKind is a line level edit operation.
type OpKind int

const (
	OpEqual OpKind = iota
	OpInsert
	OpDelete
)

// Op is a run of Lines lines sharing the same edit operation.
type Op struct {
	Kind  OpKind
	Lines int
}

// LineMap maps line numbers of one file version onto the next version.
// Lines past the last op are unchanged apart from the accumulated offset.
type LineMap struct {
	ops []Op
}

// Hunk is a unified diff hunk. Body holds the hunk lines prefixed with ' ',
// '+' or '-', separated by newlines.
type Hunk struct {
	OrigStartLine int
	OrigLines     int
	NewStartLine  int
	NewLines      int
	Body          []byte
}

// NewLineMap builds a map from raw ops, merging adjacent runs of the same kind.
func NewLineMap(ops []Op) LineMap {
	var merged []Op
	for _, op := range ops {
		if op.Lines <= 0 {
			continue
		}
		if n := len(merged); n > 0 && merged[n-1].Kind == op.Kind {
			merged[n-1].Lines += op.Lines
			continue
		}
		merged = append(merged, op)
	}
	return LineMap{ops: merged}
}

// LineMapFromHunks converts ordered unified diff hunks into a LineMap.
func LineMapFromHunks(hunks []Hunk) (LineMap, error) {
	var ops []Op
	origCursor := 1
	for i, h := range hunks {
		start := h.OrigStartLine
		// A hunk with no original lines inserts after OrigStartLine.
		if h.OrigLines == 0 {
			start++
		}
		if start < origCursor {
			return LineMap{}, fmt.Errorf("hunk %d starts at line %d before previous hunk end %d", i, start, origCursor)
		}
		ops = append(ops, Op{Kind: OpEqual, Lines: start - origCursor})
		origCursor = start

		for _, line := range bytes.Split(h.Body, []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			switch line[0] {
			case '+':
				ops = append(ops, Op{Kind: OpInsert, Lines: 1})
			case '-':
				ops = append(ops, Op{Kind: OpDelete, Lines: 1})
				origCursor++
			case '\\':
				// "\ No newline at end of file"
			default:
				ops = append(ops, Op{Kind: OpEqual, Lines: 1})
				origCursor++
			}
		}
	}
	return NewLineMap(ops), nil
}

// Map returns the line in the new version that corresponds to line in the old
// version. ok is false when the line was removed or rewritten.
func (m LineMap) Map(line int) (int, bool) {
	if line < 1 {
		return 0, false
	}
	origPos, newPos := 1, 1
	for _, op := range m.ops {
		switch op.Kind {
		case OpEqual:
			if line < origPos+op.Lines {
				return newPos + (line - origPos), true
			}
			origPos += op.Lines
			newPos += op.Lines
		case OpDelete:
			if line < origPos+op.Lines {
				return 0, false
			}
			origPos += op.Lines
		case OpInsert:
			newPos += op.Lines
		}
	}
	return newPos + (line - origPos), true
}

// IsIdentity reports whether the map leaves every line in place.
func (m LineMap) IsIdentity() bool {
	for _, op := range m.ops {
		if op.Kind != OpEqual {
			return false
		}
	}
	return true
}

// Ops returns a copy of the underlying operations.
func (m LineMap) Ops() []Op {
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}
