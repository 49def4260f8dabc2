package main

import (
	"amlaw/internal"
	"amlaw/internal/config"
	"amlaw/internal/pipeline"
	"amlaw/internal/storage"
)

// exportXLSX writes the combined table to out. The table comes from input
// when it names a combined csv, otherwise from the persisted table.
func exportXLSX(cfg config.Config, input, out string) (int, error) {
	var table internal.UnifiedTable
	if input != "" {
		t, err := pipeline.ReadCombinedCSV(input)
		if err != nil {
			return 0, err
		}
		table = t
	} else {
		db, err := storage.OpenConfig(cfg)
		if err != nil {
			return 0, err
		}
		defer db.Close()

		stored, err := db.LoadTable(cfg.TableName)
		if err != nil {
			return 0, err
		}
		table = stored.Unified()
	}

	if err := pipeline.ExportTableToXLSX(table, out); err != nil {
		return 0, err
	}
	return len(table.Records), nil
}
