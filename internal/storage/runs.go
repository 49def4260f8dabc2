package storage

import "encoding/json"

type RunRecord struct {
	ID        int64
	TraceID   string
	TableName string
	Years     []int
	Schema    []string
	Counts    map[string]int
	Timings   map[string]float64
	CreatedAt string
}

func (d *DB) InsertRun(run RunRecord) error {
	yearsJSON, _ := json.Marshal(run.Years)
	schemaJSON, _ := json.Marshal(run.Schema)
	countsJSON, _ := json.Marshal(run.Counts)
	timingsJSON, _ := json.Marshal(run.Timings)
	_, err := d.conn.Exec(d.bind(`
INSERT INTO runs (traceId, tableName, yearsJson, schemaJson, countsJson, timingsJson)
VALUES (?, ?, ?, ?, ?, ?)
`), run.TraceID, run.TableName, string(yearsJSON), string(schemaJSON), string(countsJSON), string(timingsJSON))
	return err
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := d.conn.Query(d.bind(`
SELECT id, traceId, tableName, yearsJson, schemaJson, countsJson, timingsJson, CAST(createdAt AS TEXT)
FROM runs ORDER BY id DESC LIMIT ?
`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var run RunRecord
		var yearsJSON, schemaJSON, countsJSON, timingsJSON string
		if err := rows.Scan(&run.ID, &run.TraceID, &run.TableName, &yearsJSON, &schemaJSON, &countsJSON, &timingsJSON, &run.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(yearsJSON), &run.Years)
		_ = json.Unmarshal([]byte(schemaJSON), &run.Schema)
		_ = json.Unmarshal([]byte(countsJSON), &run.Counts)
		_ = json.Unmarshal([]byte(timingsJSON), &run.Timings)
		out = append(out, run)
	}
	return out, rows.Err()
}
