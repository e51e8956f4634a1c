package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
)

type HistoryRepository struct {
	db *sql.DB
}

var _ history.Store = (*HistoryRepository)(nil)

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// EnsureSchema creates the history table when missing.
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS scan_history (
  seq         BIGINT AUTO_INCREMENT PRIMARY KEY,
  id          CHAR(36)    NOT NULL UNIQUE,
  type        VARCHAR(16) NOT NULL,
  inputs_json JSON        NOT NULL,
  result      MEDIUMTEXT  NOT NULL,
  created_at  DATETIME(6) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Append inserts one record; seq keeps insertion order.
func (r *HistoryRepository) Append(ctx context.Context, rec *history.Record) error {
	const q = `
INSERT INTO scan_history (id, type, inputs_json, result, created_at)
VALUES (?,?,?,?,?);
`
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	inputs, err := encodeInputs(rec.Inputs)
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}
	created := rec.Time
	if created.IsZero() {
		created = time.Now()
	}
	_, err = r.db.ExecContext(ctx, q, id, stringOrDash(rec.Type), inputs, rec.Result, created.UTC())
	return err
}

func (r *HistoryRepository) List(ctx context.Context) ([]*history.Record, error) {
	const q = `
SELECT id, type, inputs_json, result, created_at
FROM scan_history
ORDER BY seq ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
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
		if err := decodeInputs(inputs, &rec.Inputs); err != nil {
			return nil, fmt.Errorf("decoding inputs of %s: %w", rec.ID, err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
