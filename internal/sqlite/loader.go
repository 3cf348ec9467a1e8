package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// tableMapping ties a JSONL file to its SQLite table. Columns missing from a
// record take the value in defaults, or NULL.
type tableMapping struct {
	file     string
	table    string
	columns  []string
	defaults map[string]any
}

var jsonlTableMapping = []tableMapping{
	{
		file:     slotsFile,
		table:    "slots",
		columns:  []string{"slot_id", "section_id", "slot_key", "url", "kind", "alt", "title", "description", "metadata", "updated_at"},
		defaults: map[string]any{"alt": "", "title": "", "description": "", "metadata": "{}"},
	},
	{
		file:     draftsFile,
		table:    "drafts",
		columns:  []string{"draft_key", "value", "version", "updated_at"},
		defaults: map[string]any{"version": 1},
	},
}

// tableFile returns the JSONL file backing a table.
func tableFile(table string) string {
	for _, m := range jsonlTableMapping {
		if m.table == table {
			return m.file
		}
	}
	return table + ".jsonl"
}

// loadAllJSONL fills the tables from the JSONL files of dataDir inside one
// transaction. Unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, mapping, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts the mapped columns of each record. A record that
// fails to decode or violates a constraint is dropped on its own.
func insertRecords(tx *sql.Tx, m tableMapping, records []json.RawMessage) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(m.columns)), ", ")
	stmt, err := tx.Prepare("INSERT INTO " + m.table + " (" + strings.Join(m.columns, ", ") + ") VALUES (" + placeholders + ")")
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", m.table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var obj map[string]any
		if json.Unmarshal(rec, &obj) != nil {
			continue
		}
		args := make([]any, len(m.columns))
		for i, col := range m.columns {
			v, ok := obj[col]
			if !ok || v == nil {
				v = m.defaults[col]
			}
			args[i] = columnValue(v)
		}
		_, _ = stmt.Exec(args...)
	}
	return nil
}

// columnValue converts a decoded JSON value to a column argument. Objects and
// arrays, such as hand-written slot metadata, are stored as JSON text.
func columnValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(b)
	}
	return v
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// persistTableJSONL dumps every row of table to its JSONL file. Passing a
// transaction writes the rows that transaction sees.
func persistTableJSONL(q querier, dataDir, table string) error {
	rows, err := q.Query("SELECT * FROM " + table)
	if err != nil {
		return fmt.Errorf("querying %s for JSONL: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("getting columns for %s: %w", table, err)
	}

	var records []json.RawMessage
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return fmt.Errorf("scanning %s row: %w", table, err)
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling %s row: %w", table, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s for JSONL: %w", table, err)
	}

	return writeJSONL(filepath.Join(dataDir, tableFile(table)), records)
}
