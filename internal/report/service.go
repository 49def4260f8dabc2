package report

import (
	"fmt"
	"log/slog"
	"sync"

	"amlaw/internal/config"
	"amlaw/internal/storage"
)

type Store interface {
	TableHash(name string) (string, error)
	LoadTable(name string) (storage.StoredTable, error)
}

// Cache holds one loaded table keyed by its content hash.
type Cache struct {
	mu    sync.Mutex
	key   string
	table *storage.StoredTable
	loads int
}

func (c *Cache) get(key string) (storage.StoredTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table == nil || c.key != key {
		return storage.StoredTable{}, false
	}
	return *c.table, true
}

func (c *Cache) put(key string, table storage.StoredTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.table = &table
	c.loads++
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = ""
	c.table = nil
}

// Loads reports how many times the table was read from the store.
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// Service is the report's application context: one store, one table name,
// one cache. It is safe for concurrent use.
type Service struct {
	store  Store
	cfg    config.Config
	logger *slog.Logger
	cache  *Cache
}

func NewService(store Store, cfg config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cfg: cfg, logger: logger, cache: &Cache{}}
}

func (s *Service) Cache() *Cache {
	return s.cache
}

// Table returns the persisted table, reloading it when its hash changed.
func (s *Service) Table() (storage.StoredTable, error) {
	hash, err := s.store.TableHash(s.cfg.TableName)
	if err != nil {
		return storage.StoredTable{}, err
	}
	if t, ok := s.cache.get(hash); ok {
		return t, nil
	}

	t, err := s.store.LoadTable(s.cfg.TableName)
	if err != nil {
		return storage.StoredTable{}, err
	}
	s.cache.put(t.Hash, t)
	s.logger.Info("report table loaded", "table", t.Name, "rows", len(t.Rows), "columns", len(t.Columns), "hash", t.Hash)
	return t, nil
}

func (s *Service) Years() ([]int, error) {
	t, err := s.Table()
	if err != nil {
		return nil, err
	}
	return Years(t), nil
}

// Top fills defaults from config: N from REPORT_DEFAULT_N when zero, the
// ranking field and display columns when empty.
func (s *Service) Top(q Query) (Result, error) {
	if q.N == 0 {
		q.N = s.cfg.ReportDefaultN
	}
	if s.cfg.ReportMaxN > 0 && q.N > s.cfg.ReportMaxN {
		return Result{}, fmt.Errorf("%w: %d exceeds %d", ErrInvalidLimit, q.N, s.cfg.ReportMaxN)
	}
	if q.Field == "" {
		q.Field = s.cfg.RankField
	}
	if len(q.Columns) == 0 {
		q.Columns = s.cfg.ReportColumns
	}

	t, err := s.Table()
	if err != nil {
		return Result{}, err
	}
	return TopN(t, q)
}
