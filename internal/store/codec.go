package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/fixpoint/internal/record"
)

// header is the first line of an encoded artifact.
type header struct {
	Fixpoint string `json:"fixpoint"`
	Parent   string `json:"parent,omitempty"`
}

// rowLine is one row-bearing line of an encoded artifact.
type rowLine struct {
	Table string          `json:"table"`
	Row   json.RawMessage `json:"row"`
}

// Encode serializes an artifact to its JSONL form.
// Zero-row tables are stripped and tables are emitted in canonical name
// order, so the output is a deterministic function of artifact content.
func Encode(a *record.Artifact) ([]byte, error) {
	stripped := a.StripEmpty()
	if err := stripped.Validate(); err != nil {
		return nil, fmt.Errorf("encode %q: %w", a.Name, err)
	}

	var buf bytes.Buffer
	writeHeader(&buf, stripped.Name, stripped.Parent)

	for _, table := range stripped.SortedTables() {
		tableName, err := encodeString(table.Name)
		if err != nil {
			return nil, fmt.Errorf("encode table name %q: %w", table.Name, err)
		}
		for _, row := range table.Rows {
			rowJSON, err := record.MarshalRow(row)
			if err != nil {
				return nil, fmt.Errorf("encode table %q: %w", table.Name, err)
			}
			buf.WriteString(`{"table":`)
			buf.Write(tableName)
			buf.WriteString(`,"row":`)
			buf.Write(rowJSON)
			buf.WriteString("}\n")
		}
	}
	return buf.Bytes(), nil
}

// Decode parses an encoded artifact. The name is the storage key the data
// was loaded under; a header naming a different fixpoint is corruption.
//
// Unlike lenient JSONL readers, malformed lines are hard failures here: a
// snapshot that silently dropped rows would make every comparison against it
// meaningless.
func Decode(name string, data []byte) (*record.Artifact, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, &CorruptArtifactError{Name: name, Reason: "unreadable content", Err: err}
		}
		return nil, &CorruptArtifactError{Name: name, Reason: "empty file"}
	}

	var hdr header
	if err := json.Unmarshal(scanner.Bytes(), &hdr); err != nil {
		return nil, &CorruptArtifactError{Name: name, Line: 1, Reason: "malformed header", Err: err}
	}
	if hdr.Fixpoint == "" {
		return nil, &CorruptArtifactError{Name: name, Line: 1, Reason: "header missing fixpoint name"}
	}
	if hdr.Fixpoint != name {
		return nil, &CorruptArtifactError{
			Name:   name,
			Line:   1,
			Reason: fmt.Sprintf("header names fixpoint %q", hdr.Fixpoint),
		}
	}
	if hdr.Parent == name {
		return nil, &CorruptArtifactError{Name: name, Line: 1, Reason: "artifact is its own parent"}
	}

	artifact := &record.Artifact{Name: hdr.Fixpoint, Parent: hdr.Parent}
	index := make(map[string]int) // table name -> position in artifact.Tables

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			// A trailing newline is fine; blank lines elsewhere are not.
			continue
		}

		var rl rowLine
		if err := json.Unmarshal(line, &rl); err != nil {
			return nil, &CorruptArtifactError{Name: name, Line: lineNo, Reason: "malformed row line", Err: err}
		}
		if rl.Table == "" {
			return nil, &CorruptArtifactError{Name: name, Line: lineNo, Reason: "row line missing table name"}
		}
		if len(rl.Row) == 0 {
			return nil, &CorruptArtifactError{Name: name, Line: lineNo, Reason: "row line missing row object"}
		}

		row, err := record.UnmarshalRow(rl.Row)
		if err != nil {
			return nil, &CorruptArtifactError{Name: name, Line: lineNo, Reason: "malformed row", Err: err}
		}

		pos, ok := index[rl.Table]
		if !ok {
			pos = len(artifact.Tables)
			index[rl.Table] = pos
			artifact.Tables = append(artifact.Tables, record.Table{Name: rl.Table})
		}
		artifact.Tables[pos].Rows = append(artifact.Tables[pos].Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, &CorruptArtifactError{Name: name, Reason: "unreadable content", Err: err}
	}

	if err := artifact.Validate(); err != nil {
		return nil, &CorruptArtifactError{Name: name, Reason: "inconsistent rows", Err: err}
	}
	return artifact, nil
}

// maxLineBytes bounds a single encoded row. Binary columns are base64-encoded
// inline, so rows can get large.
const maxLineBytes = 16 * 1024 * 1024

func writeHeader(buf *bytes.Buffer, name, parent string) {
	buf.WriteString(`{"fixpoint":`)
	n, _ := encodeString(name)
	buf.Write(n)
	if parent != "" {
		buf.WriteString(`,"parent":`)
		p, _ := encodeString(parent)
		buf.Write(p)
	}
	buf.WriteString("}\n")
}

// encodeString encodes a bare string the same way row values are encoded,
// without HTML escaping.
func encodeString(s string) ([]byte, error) {
	return record.MarshalValue(record.String(s))
}
