package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"amlaw/internal"
	"amlaw/internal/config"
	"amlaw/internal/storage"
)

// Sink persists the unified table under a stable name, replacing prior content.
type Sink interface {
	ReplaceTable(name string, table internal.UnifiedTable) error
	InsertRun(run storage.RunRecord) error
}

type CombineService struct {
	src    Source
	sink   Sink
	cfg    config.Config
	logger *slog.Logger
}

func NewCombineService(src Source, sink Sink, cfg config.Config, logger *slog.Logger) *CombineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CombineService{src: src, sink: sink, cfg: cfg, logger: logger}
}

type CombineResult struct {
	TraceID string
	Table   internal.UnifiedTable
	Counts  map[int]int
}

// Run reads every year, merges them and persists the result. Any unreadable
// year aborts the run before anything is written. Combined files are only
// exported once the table is stored.
func (s *CombineService) Run(years []int) (CombineResult, error) {
	start := time.Now()
	trace := traceID()
	log := s.logger.With("trace_id", trace)

	if len(years) == 0 {
		return CombineResult{}, fmt.Errorf("no years to combine")
	}

	tables := make([]internal.RawTable, 0, len(years))
	for _, year := range years {
		t, err := s.src.Read(year)
		if err != nil {
			return CombineResult{}, err
		}
		unique := len(NormalizeColumns(t).Index)
		log.Info("source loaded", "year", year, "path", t.Path, "original_columns", len(t.Columns), "unique_cleaned_columns", unique, "rows", len(t.Rows))
		tables = append(tables, t)
	}
	readMs := float64(time.Since(start).Milliseconds())

	table, err := MergeAll(tables)
	if err != nil {
		return CombineResult{}, err
	}
	if len(table.Schema) == 0 {
		log.Warn("no common columns across years; only year will be stored", "years", years)
	} else {
		log.Info("common columns found", "count", len(table.Schema), "columns", table.Schema)
	}
	mergeMs := float64(time.Since(start).Milliseconds())

	if err := s.sink.ReplaceTable(s.cfg.TableName, table); err != nil {
		return CombineResult{}, fmt.Errorf("persist %s: %w", s.cfg.TableName, err)
	}

	if s.cfg.CombinedCSVPath != "" {
		if err := ExportTableToCSV(table, s.cfg.CombinedCSVPath); err != nil {
			return CombineResult{}, fmt.Errorf("export csv: %w", err)
		}
		log.Info("combined csv written", "path", s.cfg.CombinedCSVPath)
	}
	if s.cfg.CombinedXLSXPath != "" {
		if err := ExportTableToXLSX(table, s.cfg.CombinedXLSXPath); err != nil {
			return CombineResult{}, fmt.Errorf("export xlsx: %w", err)
		}
		log.Info("combined xlsx written", "path", s.cfg.CombinedXLSXPath)
	}

	counts := table.CountByYear()
	runCounts := map[string]int{"rows": len(table.Records), "columns": len(table.Schema)}
	for year, n := range counts {
		runCounts[fmt.Sprintf("rows_%d", year)] = n
	}
	run := storage.RunRecord{
		TraceID:   trace,
		TableName: s.cfg.TableName,
		Years:     table.Years(),
		Schema:    table.Schema,
		Counts:    runCounts,
		Timings: map[string]float64{
			"readMs":  readMs,
			"mergeMs": mergeMs,
			"totalMs": float64(time.Since(start).Milliseconds()),
		},
	}
	if err := s.sink.InsertRun(run); err != nil {
		log.Warn("run record not saved", "error", err)
	}

	log.Info("combine complete", "table", s.cfg.TableName, "rows", len(table.Records), "columns", len(table.Schema)+1)
	return CombineResult{TraceID: trace, Table: table, Counts: counts}, nil
}

// Upload persists an already combined table, as read by ReadCombinedCSV.
func (s *CombineService) Upload(table internal.UnifiedTable) error {
	if err := s.sink.ReplaceTable(s.cfg.TableName, table); err != nil {
		return fmt.Errorf("persist %s: %w", s.cfg.TableName, err)
	}
	s.logger.Info("upload complete", "table", s.cfg.TableName, "rows", len(table.Records))
	return nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
