package config

import (
	"reflect"
	"testing"
)

func TestParseYears(t *testing.T) {
	got, err := ParseYears("2019-2021, 2023,")
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{2019, 2020, 2021, 2023}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	for _, bad := range []string{"20x9", "2024-2019", "a-b"} {
		if _, err := ParseYears(bad); err == nil {
			t.Fatalf("%q should fail", bad)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("YEARS", "2022-2024")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REPORT_COLUMNS", "firm_name, gross_revenue")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Years) != 3 || cfg.TableName == "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.ReportColumns, []string{"firm_name", "gross_revenue"}) {
		t.Fatalf("columns=%v", cfg.ReportColumns)
	}
	if _, err := cfg.DSN(); err != nil {
		t.Fatal(err)
	}
}

func TestDSNRequiresPostgresURL(t *testing.T) {
	cfg := Config{DBDriver: DriverPostgres}
	if _, err := cfg.DSN(); err == nil {
		t.Fatal("expected missing POSTGRES_URL error")
	}
	cfg.DBDriver = "mysql"
	if _, err := cfg.DSN(); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
