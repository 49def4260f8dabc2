package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"amlaw/internal"
	"amlaw/internal/util"
)

const rowOrderColumn = "row_order"

type Column struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Numeric bool   `json:"numeric"`
}

// StoredRow values are nil, float64 (numeric columns) or string.
type StoredRow struct {
	Year   int
	Values []any
}

type StoredTable struct {
	Name    string
	Hash    string
	Columns []Column
	Rows    []StoredRow
}

// ColumnIndex returns the position of key among the data columns, or -1.
func (t StoredTable) ColumnIndex(key string) int {
	for i, c := range t.Columns {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Unified converts the stored rows back to a unified table keyed by the
// original labels. Numbers are written in their shortest form; nulls become "".
func (t StoredTable) Unified() internal.UnifiedTable {
	schema := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		schema[i] = c.Label
	}
	out := internal.UnifiedTable{Schema: schema, Records: make([]internal.UnifiedRecord, 0, len(t.Rows))}
	for _, row := range t.Rows {
		values := make([]string, len(row.Values))
		for i, v := range row.Values {
			switch v := v.(type) {
			case float64:
				values[i] = strconv.FormatFloat(v, 'f', -1, 64)
			case string:
				values[i] = v
			}
		}
		out.Records = append(out.Records, internal.UnifiedRecord{Year: row.Year, Values: values})
	}
	return out
}

func schemaKey(table string) string { return "table:" + table + ":schema" }
func hashKey(table string) string   { return "table:" + table + ":hash" }
func rowsKey(table string) string   { return "table:" + table + ":rows" }

// PlanColumns derives storage columns for a unified table. A column is numeric
// when it has at least one value and every non-empty value parses as a number.
func PlanColumns(table internal.UnifiedTable) ([]Column, error) {
	for n, rec := range table.Records {
		if len(rec.Values) != len(table.Schema) {
			return nil, fmt.Errorf("record %d has %d values for %d columns", n, len(rec.Values), len(table.Schema))
		}
	}

	reserved := map[string]string{internal.YearColumn: internal.YearColumn, rowOrderColumn: rowOrderColumn}
	cols := make([]Column, 0, len(table.Schema))
	for i, label := range table.Schema {
		key := util.ColumnKey(label)
		if key == "" {
			return nil, fmt.Errorf("%w: label %q has an empty column name", ErrInvalidName, label)
		}
		if prev, ok := reserved[key]; ok {
			return nil, fmt.Errorf("%w: %q and %q both map to %q", ErrColumnCollision, prev, label, key)
		}
		reserved[key] = label

		numeric, seen := true, false
		for _, rec := range table.Records {
			v := strings.TrimSpace(rec.Values[i])
			if v == "" {
				continue
			}
			seen = true
			if _, ok := util.ParseNumber(v); !ok {
				numeric = false
				break
			}
		}
		cols = append(cols, Column{Key: key, Label: label, Numeric: numeric && seen})
	}
	return cols, nil
}

// ContentHash fingerprints schema and records in order.
func ContentHash(table internal.UnifiedTable) string {
	h := sha256.New()
	for _, label := range table.Schema {
		h.Write([]byte(label))
		h.Write([]byte{0x1f})
	}
	h.Write([]byte{0x1d})
	for _, rec := range table.Records {
		h.Write([]byte(strconv.Itoa(rec.Year)))
		for _, v := range rec.Values {
			h.Write([]byte{0x1f})
			h.Write([]byte(v))
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ReplaceTable drops and recreates name with the unified table's contents in
// one transaction. Prior content for name is never merged.
func (d *DB) ReplaceTable(name string, table internal.UnifiedTable) error {
	if err := validateTableName(name); err != nil {
		return err
	}
	cols, err := PlanColumns(table)
	if err != nil {
		return err
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + quoteIdent(name)); err != nil {
		return err
	}

	defs := []string{quoteIdent(rowOrderColumn) + " INTEGER NOT NULL"}
	names := []string{quoteIdent(rowOrderColumn)}
	for _, c := range cols {
		typ := "TEXT"
		if c.Numeric {
			typ = d.dialect.realType
		}
		defs = append(defs, quoteIdent(c.Key)+" "+typ)
		names = append(names, quoteIdent(c.Key))
	}
	defs = append(defs, quoteIdent(internal.YearColumn)+" INTEGER NOT NULL")
	names = append(names, quoteIdent(internal.YearColumn))

	if _, err := tx.Exec(`CREATE TABLE ` + quoteIdent(name) + ` (` + strings.Join(defs, ", ") + `)`); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt, err := tx.Prepare(d.bind(`INSERT INTO ` + quoteIdent(name) + ` (` + strings.Join(names, ", ") + `) VALUES (` + placeholders + `)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for n, rec := range table.Records {
		args[0] = n
		for i, c := range cols {
			args[i+1] = storedValue(c, rec.Values[i])
		}
		args[len(args)-1] = rec.Year
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert row %d: %w", n, err)
		}
	}

	schemaJSON, _ := json.Marshal(cols)
	if err := d.setMetadata(tx, schemaKey(name), string(schemaJSON)); err != nil {
		return err
	}
	if err := d.setMetadata(tx, hashKey(name), ContentHash(table)); err != nil {
		return err
	}
	if err := d.setMetadata(tx, rowsKey(name), strconv.Itoa(len(table.Records))); err != nil {
		return err
	}

	return tx.Commit()
}

func storedValue(c Column, raw string) any {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if c.Numeric {
		n, _ := util.ParseNumber(v)
		return n
	}
	return raw
}

// TableHash returns the content hash recorded by the last ReplaceTable.
func (d *DB) TableHash(name string) (string, error) {
	hash, err := d.GetMetadata(hashKey(name))
	if err != nil {
		return "", err
	}
	if hash == nil {
		return "", fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return *hash, nil
}

func (d *DB) LoadTable(name string) (StoredTable, error) {
	if err := validateTableName(name); err != nil {
		return StoredTable{}, err
	}
	schemaJSON, err := d.GetMetadata(schemaKey(name))
	if err != nil {
		return StoredTable{}, err
	}
	if schemaJSON == nil {
		return StoredTable{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	var cols []Column
	if err := json.Unmarshal([]byte(*schemaJSON), &cols); err != nil {
		return StoredTable{}, fmt.Errorf("table %s: corrupt schema metadata: %w", name, err)
	}
	hash, err := d.TableHash(name)
	if err != nil {
		return StoredTable{}, err
	}

	names := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		names = append(names, quoteIdent(c.Key))
	}
	names = append(names, quoteIdent(internal.YearColumn))

	rows, err := d.conn.Query(`SELECT ` + strings.Join(names, ", ") + ` FROM ` + quoteIdent(name) + ` ORDER BY ` + quoteIdent(rowOrderColumn))
	if err != nil {
		return StoredTable{}, err
	}
	defer rows.Close()

	out := StoredTable{Name: name, Hash: hash, Columns: cols, Rows: []StoredRow{}}
	for rows.Next() {
		dest := make([]any, len(cols)+1)
		for i, c := range cols {
			if c.Numeric {
				dest[i] = &sql.NullFloat64{}
			} else {
				dest[i] = &sql.NullString{}
			}
		}
		var year int
		dest[len(cols)] = &year
		if err := rows.Scan(dest...); err != nil {
			return StoredTable{}, err
		}

		row := StoredRow{Year: year, Values: make([]any, len(cols))}
		for i := range cols {
			switch v := dest[i].(type) {
			case *sql.NullFloat64:
				if v.Valid {
					row.Values[i] = v.Float64
				}
			case *sql.NullString:
				if v.Valid {
					row.Values[i] = v.String
				}
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, rows.Err()
}
