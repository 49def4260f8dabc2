package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	DBDriver    string
	DBPath      string
	PostgresURL string
	TableName   string

	SourceDir     string
	SourcePattern string
	SourceSheet   string
	Years         []int

	CombinedCSVPath  string
	CombinedXLSXPath string

	RankField        string
	ReportColumns    []string
	ReportDefaultN   int
	ReportMaxN       int
	ReportAddr       string
	ReportShutdownMs int

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	years, err := ParseYears(getEnv("YEARS", "2019,2020,2021,2022,2023,2024"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBDriver:    strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", DriverSQLite))),
		DBPath:      getEnv("DB_PATH", filepath.Join(cwd, "data", "amlaw.db")),
		PostgresURL: getEnv("POSTGRES_URL", ""),
		TableName:   getEnv("TABLE_NAME", "amlaw200"),

		SourceDir:     getEnv("SOURCE_DIR", filepath.Join(cwd, "AmLaw Yearly Data")),
		SourcePattern: getEnv("SOURCE_PATTERN", "Amlaw %d.csv"),
		SourceSheet:   getEnv("SOURCE_SHEET", ""),
		Years:         years,

		CombinedCSVPath:  getEnv("COMBINED_CSV_PATH", filepath.Join(cwd, "combined_amlaw.csv")),
		CombinedXLSXPath: getEnv("COMBINED_XLSX_PATH", ""),

		RankField:        getEnv("RANK_FIELD", "gross_revenue"),
		ReportColumns:    getEnvList("REPORT_COLUMNS", []string{"firm_name", "gross_revenue", "profit_margin", "leverage"}),
		ReportDefaultN:   getEnvInt("REPORT_DEFAULT_N", 20),
		ReportMaxN:       getEnvInt("REPORT_MAX_N", 100),
		ReportAddr:       getEnv("REPORT_ADDR", ":8080"),
		ReportShutdownMs: getEnvInt("REPORT_SHUTDOWN_MS", 5000),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	// A postgres URL alone is enough to switch drivers, as the upload script did.
	if _, ok := os.LookupEnv("DB_DRIVER"); !ok && strings.TrimSpace(cfg.PostgresURL) != "" {
		cfg.DBDriver = DriverPostgres
	}

	return cfg, nil
}

// DSN returns the data source for the configured driver.
func (c Config) DSN() (string, error) {
	switch c.DBDriver {
	case DriverSQLite:
		return c.DBPath, c.Require("DB_PATH", c.DBPath)
	case DriverPostgres:
		return c.PostgresURL, c.Require("POSTGRES_URL", c.PostgresURL)
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// ParseYears accepts "2019,2020" and "2019-2024" forms, or both mixed.
func ParseYears(value string) ([]int, error) {
	out := []int{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			from, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid year range %q: %w", part, err)
			}
			to, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid year range %q: %w", part, err)
			}
			if to < from {
				return nil, fmt.Errorf("invalid year range %q", part)
			}
			for y := from; y <= to; y++ {
				out = append(out, y)
			}
			continue
		}
		year, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", part, err)
		}
		out = append(out, year)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
