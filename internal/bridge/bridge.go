// Package bridge reads and writes full database state over database/sql.
//
// The bridge is the engine's only contact with a live relational store. It
// reads every user table into a record.State and loads a state back into a
// target database. SQLite (github.com/mattn/go-sqlite3) is the reference
// backend; table discovery goes through sqlite_master.
package bridge

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/roach88/fixpoint/internal/record"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or
// underscore. This prevents SQL injection via identifier interpolation,
// since identifiers cannot be bound as query parameters.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ReadAllTables returns every user table and its complete row sequence.
//
// Tables are discovered from sqlite_master; SQLite's internal bookkeeping
// tables are excluded. Rows are read in rowid order so repeated captures of
// an unchanged database observe the same sequence; WITHOUT ROWID tables fall
// back to their primary-key order, which is equally stable.
func ReadAllTables(ctx context.Context, db *sql.DB) (record.State, error) {
	names, err := listTables(ctx, db)
	if err != nil {
		return nil, err
	}

	state := make(record.State, len(names))
	for _, name := range names {
		rows, err := readTable(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("read table %q: %w", name, err)
		}
		state[name] = rows
	}
	return state, nil
}

// WriteAllTables loads a state into the target database in one transaction.
//
// The target is assumed empty for the tables being written; conflicting
// pre-existing rows make the transaction fail loudly rather than being
// merged or silently replaced.
func WriteAllTables(ctx context.Context, db *sql.DB, state record.State) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range state.TableNames() {
		rows := state[name]
		if len(rows) == 0 {
			continue
		}
		if err := (record.Table{Name: name, Rows: rows}).Validate(); err != nil {
			return err
		}
		if err := insertRows(ctx, tx, name, rows); err != nil {
			return fmt.Errorf("load table %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load transaction: %w", err)
	}
	return nil
}

// listTables returns user table names in sorted order.
func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return names, nil
}

func readTable(ctx context.Context, db *sql.DB, table string) ([]record.Row, error) {
	ident, err := quoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+ident+" ORDER BY rowid ASC")
	if err != nil {
		// WITHOUT ROWID tables have no rowid; their primary-key order is
		// stable, so a plain scan suffices.
		rows, err = db.QueryContext(ctx, "SELECT * FROM "+ident)
		if err != nil {
			return nil, err
		}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out []record.Row
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		fields := make([]record.Field, len(cols))
		for i, col := range cols {
			v, err := fromDriverValue(raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			fields[i] = record.F(col, v)
		}
		out = append(out, record.NewRow(fields...))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, rows []record.Row) error {
	ident, err := quoteIdentifier(table)
	if err != nil {
		return err
	}

	cols := rows[0].Columns()
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		q, err := quoteIdentifier(col)
		if err != nil {
			return err
		}
		quoted[i] = q
		placeholders[i] = "?"
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		ident, strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
	))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, len(row))
		for i, f := range row {
			args[i] = toDriverValue(f.Value)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	return nil
}

// fromDriverValue converts a scanned driver value into a record.Value.
func fromDriverValue(v any) (record.Value, error) {
	switch val := v.(type) {
	case nil:
		return record.Null{}, nil
	case bool:
		return record.Bool(val), nil
	case int64:
		return record.Int(val), nil
	case float64:
		return record.Float(val), nil
	case string:
		return record.String(val), nil
	case []byte:
		// Copy: the driver may reuse the buffer on the next Scan.
		b := make([]byte, len(val))
		copy(b, val)
		return record.Bytes(b), nil
	case time.Time:
		return record.NewTime(val), nil
	default:
		return nil, fmt.Errorf("unsupported driver value type %T", v)
	}
}

// toDriverValue converts a record.Value into a bindable query argument.
func toDriverValue(v record.Value) any {
	switch val := v.(type) {
	case record.Null:
		return nil
	case record.Bool:
		return bool(val)
	case record.Int:
		return int64(val)
	case record.Float:
		return float64(val)
	case record.String:
		return string(val)
	case record.Bytes:
		return []byte(val)
	case record.Time:
		return val.Std()
	default:
		return nil
	}
}

func quoteIdentifier(name string) (string, error) {
	if !validIdentifier.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return `"` + name + `"`, nil
}
