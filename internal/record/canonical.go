package record

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

// Tagged-wrapper keys for value kinds JSON has no native scalar for.
// A row value encoded as a JSON object must be exactly one of these.
const (
	timeTag  = "$time"
	bytesTag = "$bytes"
)

// MarshalValue encodes a single value to canonical JSON bytes.
//
// Encoding rules:
//   - Null -> null, Bool -> true/false, Int -> bare integer
//   - Float -> shortest representation that still contains '.' or an
//     exponent, so decode never confuses it with an Int
//   - String -> JSON string without HTML escaping
//   - Time -> {"$time":"<RFC3339Nano, UTC>"}
//   - Bytes -> {"$bytes":"<base64>"}
//
// NaN and infinities have no JSON representation and are rejected.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null:
		return []byte("null"), nil
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Int:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case Float:
		return marshalFloat(float64(val))
	case String:
		return marshalString(string(val))
	case Time:
		inner, err := marshalString(val.Std().Format(time.RFC3339Nano))
		if err != nil {
			return nil, err
		}
		return taggedObject(timeTag, inner), nil
	case Bytes:
		inner, err := marshalString(base64.StdEncoding.EncodeToString(val))
		if err != nil {
			return nil, err
		}
		return taggedObject(bytesTag, inner), nil
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
}

// MarshalRow encodes a row as a flat JSON object with canonically ordered
// keys. The output is a deterministic function of the row's content.
func MarshalRow(row Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range row {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(f.Column)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", f.Column, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := MarshalValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", f.Column, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalRow decodes a flat JSON object into a normalized row.
func UnmarshalRow(data []byte) (Row, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("row is not a JSON object: %w", err)
	}
	row := make(Row, 0, len(raw))
	for col, rv := range raw {
		v, err := UnmarshalValue(rv)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		row = append(row, Field{Column: normalizeColumn(col), Value: v})
	}
	row.sort()
	return row, nil
}

// UnmarshalValue decodes one canonical JSON value.
// Numbers containing '.', 'e', or 'E' decode as Float, all others as Int;
// this mirrors the encoding rule in MarshalValue.
func UnmarshalValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			return nil, fmt.Errorf("malformed literal %q", data)
		}
		return Null{}, nil

	case '{':
		return unmarshalTagged(data)

	case '[':
		return nil, fmt.Errorf("arrays are not valid column values")

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		s := string(n)
		if strings.ContainsAny(s, ".eE") {
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("malformed float %q: %w", s, err)
			}
			return Float(f), nil
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("integer out of int64 range: %s", s)
		}
		return Int(i), nil
	}
}

// unmarshalTagged decodes the {"$time":...} / {"$bytes":...} wrappers.
// Any other object shape is rejected - rows are flat.
func unmarshalTagged(data []byte) (Value, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed tagged value: %w", err)
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("tagged value must have exactly one key, got %d", len(raw))
	}
	if s, ok := raw[timeTag]; ok {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("malformed %s value %q: %w", timeTag, s, err)
		}
		return NewTime(t), nil
	}
	if s, ok := raw[bytesTag]; ok {
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("malformed %s value: %w", bytesTag, err)
		}
		return Bytes(b), nil
	}
	for k := range raw {
		return nil, fmt.Errorf("unknown value tag %q", k)
	}
	return nil, fmt.Errorf("empty tagged value")
}

// marshalFloat formats a float so the decoder can tell it apart from an Int.
func marshalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("float %v has no JSON representation", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// marshalString encodes a string without HTML escaping, so encoded artifacts
// stay readable and byte-stable regardless of content.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// Encoder appends a trailing newline, strip it.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// taggedObject assembles {"<tag>":<inner>} without going through a map.
func taggedObject(tag string, inner []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteByte('"')
	buf.WriteString(tag)
	buf.WriteString(`":`)
	buf.Write(inner)
	buf.WriteByte('}')
	return buf.Bytes()
}

// sortColumns orders column names by UTF-16 code units, the canonical JSON
// key ordering. Go's sort.Strings compares UTF-8 bytes, which produces a
// different order for strings outside the BMP.
func sortColumns(cols []string) {
	slices.SortFunc(cols, compareColumns)
}

func compareColumns(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
