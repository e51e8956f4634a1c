package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
)

// HistoryRepository is a SQLite-backed history store (pure Go driver, no cgo).
type HistoryRepository struct {
	db *sql.DB
}

var _ history.Store = (*HistoryRepository)(nil)

// Open opens (or creates) the database at path and initializes the schema.
func Open(path string) (*HistoryRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer keeps appends serialized
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	r := &HistoryRepository{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return r, nil
}

func (r *HistoryRepository) initSchema() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS scan_history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		inputs_json TEXT NOT NULL,
		result TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`)
	return err
}

// DB exposes the handle for health checks.
func (r *HistoryRepository) DB() *sql.DB { return r.db }

func (r *HistoryRepository) Close() error { return r.db.Close() }

func (r *HistoryRepository) Append(ctx context.Context, rec *history.Record) error {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	inputs, err := json.Marshal(rec.Inputs)
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}
	created := rec.Time
	if created.IsZero() {
		created = time.Now()
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO scan_history (id, type, inputs_json, result, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, rec.Type, string(inputs), rec.Result, created.UTC(),
	)
	return err
}

func (r *HistoryRepository) List(ctx context.Context) ([]*history.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, inputs_json, result, created_at FROM scan_history ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	out := []*history.Record{}
	for rows.Next() {
		var rec history.Record
		var inputs string
		if err := rows.Scan(&rec.ID, &rec.Type, &inputs, &rec.Result, &rec.Time); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal([]byte(inputs), &rec.Inputs); err != nil {
			return nil, fmt.Errorf("decoding inputs of %s: %w", rec.ID, err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
