package history

import (
	"context"
	"time"
)

// Store port for history persistence. Implementations keep insertion order.
type Store interface {
	Append(ctx context.Context, r *Record) error
	List(ctx context.Context) ([]*Record, error)
}

// ReportArchive keeps exported reports; it returns where the copy lives.
type ReportArchive interface {
	ArchiveReport(ctx context.Context, at time.Time, data []byte) (string, error)
}
