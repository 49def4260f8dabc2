package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"amlaw/internal/config"
	"amlaw/internal/logging"
	"amlaw/internal/pipeline"
	"amlaw/internal/report"
	"amlaw/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	cmd := os.Args[1]
	switch cmd {
	case "combine":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		years := fs.String("years", "", "comma list or range, e.g. 2019-2024")
		dir := fs.String("dir", cfg.SourceDir, "directory with yearly files")
		pattern := fs.String("pattern", cfg.SourcePattern, "file name pattern with %d for the year")
		sheet := fs.String("sheet", cfg.SourceSheet, "xlsx sheet name (default first sheet)")
		csvOut := fs.String("csv", cfg.CombinedCSVPath, "combined csv output, empty to skip")
		xlsxOut := fs.String("xlsx", cfg.CombinedXLSXPath, "combined xlsx output, empty to skip")
		_ = fs.Parse(os.Args[2:])

		selected := cfg.Years
		if strings.TrimSpace(*years) != "" {
			selected, err = config.ParseYears(*years)
			must(err)
		}
		cfg.CombinedCSVPath = *csvOut
		cfg.CombinedXLSXPath = *xlsxOut

		src, err := pipeline.NewFileSource(*dir, *pattern, *sheet)
		must(err)
		db, err := storage.OpenConfig(cfg)
		must(err)
		defer db.Close()

		res, err := pipeline.NewCombineService(src, db, cfg, logger).Run(selected)
		must(err)
		fmt.Printf("combine done table=%s years=%d rows=%d columns=%d\n", cfg.TableName, len(selected), len(res.Table.Records), len(res.Table.Schema)+1)
	case "upload":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", cfg.CombinedCSVPath, "combined csv to upload")
		_ = fs.Parse(os.Args[2:])

		table, err := pipeline.ReadCombinedCSV(*input)
		must(err)
		db, err := storage.OpenConfig(cfg)
		must(err)
		defer db.Close()

		must(pipeline.NewCombineService(nil, db, cfg, logger).Upload(table))
		fmt.Printf("upload done table=%s rows=%d\n", cfg.TableName, len(table.Records))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", cfg.CombinedXLSXPath, "xlsx output path")
		input := fs.String("input", "", "combined csv to convert (default persisted table)")
		_ = fs.Parse(os.Args[2:])

		must(cfg.Require("--out", *out))
		n, err := exportXLSX(cfg, *input, *out)
		must(err)
		fmt.Printf("exported %d rows to %s\n", n, *out)
	case "report:years":
		db, err := storage.OpenConfig(cfg)
		must(err)
		defer db.Close()

		years, err := report.NewService(db, cfg, logger).Years()
		must(err)
		for _, y := range years {
			fmt.Println(y)
		}
	case "report:top":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", 0, "year to rank (default newest)")
		n := fs.Int("n", cfg.ReportDefaultN, "number of firms")
		field := fs.String("field", cfg.RankField, "numeric ranking column")
		columns := fs.String("columns", strings.Join(cfg.ReportColumns, ","), "display columns")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.OpenConfig(cfg)
		must(err)
		defer db.Close()

		svc := report.NewService(db, cfg, logger)
		if *year == 0 {
			years, err := svc.Years()
			must(err)
			if len(years) == 0 {
				must(fmt.Errorf("table %s has no rows", cfg.TableName))
			}
			*year = years[0]
		}
		if *n < 1 {
			must(fmt.Errorf("--n must be positive"))
		}
		res, err := svc.Top(report.Query{Year: *year, N: *n, Field: *field, Columns: splitList(*columns)})
		must(err)
		fmt.Printf("Top %d law firms in %d by %s\n", *n, *year, *field)
		report.RenderTable(os.Stdout, res)
	case "report:serve":
		must(report.ListenAndServe(cfg, logger))
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 10, "max runs")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.OpenConfig(cfg)
		must(err)
		defer db.Close()

		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("%d trace=%s table=%s years=%v rows=%d at=%s\n", r.ID, r.TraceID, r.TableName, r.Years, r.Counts["rows"], r.CreatedAt)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func usage() {
	fmt.Println("usage: amlaw <command>")
	fmt.Println("commands:")
	fmt.Printf("  combine [--years=2019-2024] [--dir=...] [--pattern='Amlaw %%d.csv'] [--csv=...] [--xlsx=...]\n")
	fmt.Println("  upload [--input=combined_amlaw.csv]")
	fmt.Println("  export:xlsx --out=combined_amlaw.xlsx [--input=combined_amlaw.csv]")
	fmt.Println("  report:years")
	fmt.Println("  report:top [--year=2024] [--n=20] [--field=gross_revenue] [--columns=firm_name,gross_revenue]")
	fmt.Println("  report:serve")
	fmt.Println("  runs:list [--limit=10]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
