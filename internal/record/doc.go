// Package record defines the canonical in-memory representation of captured
// database state: typed scalar values, rows, tables, and fixpoint artifacts.
//
// # Value Model
//
// Value is a sealed union over the scalar kinds a relational column can hold:
// null, bool, int64, float64, string, time, and raw bytes. Keeping the set
// closed lets the codec and comparator dispatch exhaustively at compile time
// instead of reflecting over arbitrary driver values.
//
// # Determinism
//
// Serialization of rows is canonical: object keys are ordered by UTF-16 code
// units, HTML escaping is disabled, and floats always carry a decimal point or
// exponent so integers and floats survive a round trip unambiguously. Encoding
// the same content twice produces byte-identical output, which keeps stored
// artifacts meaningful under version-control diffing.
//
// # Normalization
//
// Column names are NFC-normalized and rows are held with columns in canonical
// order, so equality is independent of the column order a driver happens to
// return.
package record
