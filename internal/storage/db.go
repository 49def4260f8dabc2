package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"amlaw/internal/config"
)

var (
	ErrTableNotFound   = errors.New("table not found")
	ErrColumnCollision = errors.New("column name collision")
	ErrInvalidName     = errors.New("invalid identifier")
)

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type DB struct {
	conn    *sql.DB
	dialect dialect
}

type dialect struct {
	name       string
	driverName string
	realType   string
	serialPK   string
	nowType    string
}

var dialects = map[string]dialect{
	config.DriverSQLite: {
		name:       config.DriverSQLite,
		driverName: "sqlite",
		realType:   "REAL",
		serialPK:   "INTEGER PRIMARY KEY AUTOINCREMENT",
		nowType:    "TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP",
	},
	config.DriverPostgres: {
		name:       config.DriverPostgres,
		driverName: "postgres",
		realType:   "DOUBLE PRECISION",
		serialPK:   "BIGSERIAL PRIMARY KEY",
		nowType:    "TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP",
	},
}

// Open connects to sqlite (dsn is a file path) or postgres (dsn is a URL)
// and creates the bookkeeping tables.
func Open(driver, dsn string) (*DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	if d.name == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, err
	}

	if d.name == config.DriverSQLite {
		if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = conn.Close()
			return nil, err
		}
	} else if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, dialect: d}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

// OpenConfig opens the store selected by DB_DRIVER.
func OpenConfig(cfg config.Config) (*DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	return Open(cfg.DBDriver, dsn)
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) Driver() string {
	return d.dialect.name
}

func (d *DB) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt ` + d.dialect.nowType + `
)`,
		`CREATE TABLE IF NOT EXISTS runs (
  id ` + d.dialect.serialPK + `,
  traceId TEXT NOT NULL,
  tableName TEXT NOT NULL,
  yearsJson TEXT NOT NULL,
  schemaJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  createdAt ` + d.dialect.nowType + `
)`,
	}
	for _, stmt := range stmts {
		if _, err := d.conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (d *DB) setMetadata(ex execer, key, value string) error {
	_, err := ex.Exec(d.bind(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`), key, value)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	return d.setMetadata(d.conn, key, value)
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(d.bind(`SELECT value FROM metadata WHERE key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// bind rewrites ? placeholders to $n for postgres. A ? inside a quoted
// identifier or string literal is left alone.
func (d *DB) bind(query string) string {
	if d.dialect.name != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	var quote rune
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '?':
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Bookkeeping tables created by init.
var reservedTables = map[string]bool{"metadata": true, "runs": true}

func validateTableName(name string) error {
	if !reIdentifier.MatchString(name) {
		return fmt.Errorf("%w: table %q", ErrInvalidName, name)
	}
	if reservedTables[strings.ToLower(name)] {
		return fmt.Errorf("%w: table %q is reserved", ErrInvalidName, name)
	}
	return nil
}
