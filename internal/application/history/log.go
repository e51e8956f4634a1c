package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/cyber-assistant/internal/application"
	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
)

// TableHeader is the fixed column order of exported reports.
var TableHeader = []string{"Type", "Details", "Result", "Time"}

// Log is the request-facing history API. Storage problems are logged and
// swallowed here so they never fail the request that produced the record.
type Log struct {
	Store  history.Store
	Clock  application.Clock
	Logger *slog.Logger
	// Archive is optional.
	Archive history.ReportArchive
}

// Report is an exported history table plus the archived copy's location, if any.
type Report struct {
	Data []byte
	URL  string
}

func NewLog(store history.Store, clock application.Clock, logger *slog.Logger) *Log {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{Store: store, Clock: clock, Logger: logger}
}

// Append records one request/response pair.
func (l *Log) Append(ctx context.Context, kind domain.Kind, in history.Inputs, result string) {
	rec := &history.Record{
		ID:     uuid.New().String(),
		Type:   string(kind),
		Inputs: in,
		Result: result,
		Time:   l.Clock.Now(),
	}
	// the caller may already be gone; the record still belongs in history
	if err := l.Store.Append(context.WithoutCancel(ctx), rec); err != nil {
		l.Logger.Warn("history append failed", slog.String("type", rec.Type), slog.String("error", err.Error()))
	}
}

// List returns every record in insertion order, or an empty slice when storage fails.
func (l *Log) List(ctx context.Context) []*history.Record {
	records, err := l.Store.List(ctx)
	if err != nil {
		l.Logger.Warn("history read failed", slog.String("error", err.Error()))
		return []*history.Record{}
	}
	if records == nil {
		return []*history.Record{}
	}
	return records
}

// Export renders the history as CSV. An empty history is domain.ErrNotFound.
func (l *Log) Export(ctx context.Context) ([]byte, error) {
	records := l.List(ctx)
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	var buf bytes.Buffer
	if err := WriteTable(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Report exports the history and archives a copy when an archive is configured.
// Archive failures are logged and leave URL empty.
func (l *Log) Report(ctx context.Context) (Report, error) {
	data, err := l.Export(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Data: data}
	if l.Archive == nil {
		return rep, nil
	}
	url, err := l.Archive.ArchiveReport(ctx, l.Clock.Now(), data)
	if err != nil {
		l.Logger.Warn("report archive failed", slog.String("error", err.Error()))
		return rep, nil
	}
	rep.URL = url
	return rep, nil
}

// WriteTable writes the header row plus one row per record.
func WriteTable(buf *bytes.Buffer, records []*history.Record) error {
	w := csv.NewWriter(buf)
	if err := w.Write(TableHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Type, r.Details(), r.Result, r.Time.Format(time.RFC3339)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
