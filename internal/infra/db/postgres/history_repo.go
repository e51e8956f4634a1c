package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
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

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS scan_history (
  seq         BIGSERIAL PRIMARY KEY,
  id          TEXT        NOT NULL UNIQUE,
  type        TEXT        NOT NULL,
  inputs_json JSONB       NOT NULL,
  result      TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL
);
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *HistoryRepository) Append(ctx context.Context, rec *history.Record) error {
	const q = `
INSERT INTO scan_history (id, type, inputs_json, result, created_at)
VALUES ($1,$2,$3,$4,$5);
`
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	inputs, err := json.Marshal(rec.Inputs)
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}
	typ := rec.Type
	if strings.TrimSpace(typ) == "" {
		typ = "-"
	}
	created := rec.Time
	if created.IsZero() {
		created = time.Now()
	}
	_, err = r.db.ExecContext(ctx, q, id, typ, string(inputs), rec.Result, created)
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
		var inputs []byte
		if err := rows.Scan(&rec.ID, &rec.Type, &inputs, &rec.Result, &rec.Time); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if len(inputs) > 0 {
			if err := json.Unmarshal(inputs, &rec.Inputs); err != nil {
				return nil, fmt.Errorf("decoding inputs of %s: %w", rec.ID, err)
			}
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
