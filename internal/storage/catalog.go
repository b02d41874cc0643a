package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const catalogFile = "catalog.db"

// catalog indexes saved runs in SQLite so listing does not have to read
// every run directory.
type catalog struct {
	db *sql.DB
}

func openCatalog(path string) (*catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect catalog: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	return &catalog{db: db}, nil
}

func (c *catalog) insert(meta *RunMetadata) error {
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO runs
			(id, preset, created_at, seed, particles, dt, steps, total_bounces, mean_p_exp, mean_p_teo, pressure_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Preset, meta.Timestamp.UnixNano(), meta.Seed, meta.Particles, meta.Dt,
		meta.Steps, meta.TotalBounces, meta.MeanPressureExp, meta.MeanPressureTeo, meta.PressureError,
	)
	if err != nil {
		return fmt.Errorf("catalog run %s: %w", meta.ID, err)
	}
	return nil
}

// ids returns catalogued run ids, oldest first.
func (c *catalog) ids() ([]string, error) {
	rows, err := c.db.Query("SELECT id FROM runs ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (c *catalog) delete(id string) error {
	_, err := c.db.Exec("DELETE FROM runs WHERE id = ?", id)
	return err
}

func (c *catalog) close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
