package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
)

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "scan_history.json"))

	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan_history.json")
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first := New(path)
	require.NoError(t, first.Append(ctx, &history.Record{ID: "1", Type: "URL", Inputs: history.Inputs{URL: "http://a.test"}, Result: "ok", Time: now}))
	require.NoError(t, first.Append(ctx, &history.Record{ID: "2", Type: "File", Inputs: history.Inputs{Filename: "a.pdf", Hash: "h"}, Result: "low", Time: now}))

	got, err := New(path).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "http://a.test", got[0].URL)
	assert.Equal(t, "a.pdf", got[1].Filename)
	assert.True(t, now.Equal(got[1].Time))
}

func TestStore_FlatJSONLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan_history.json")
	require.NoError(t, New(path).Append(context.Background(), &history.Record{Type: "SMS", Inputs: history.Inputs{Message: "hi"}, Result: "r"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "SMS", raw[0]["type"])
	assert.Equal(t, "hi", raw[0]["message"])
	assert.NotContains(t, raw[0], "url")
}

func TestStore_ReadsLegacyTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan_history.json")
	legacy := `[{"type":"QnA","question":"q","result":"a","time":"2025-01-02 03:04:05.123456"},
{"type":"URL","url":"http://a.test","result":"ok","time":"2025-01-02 03:04:06"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))
	s := New(path)
	ctx := context.Background()

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q", got[0].Question)
	assert.Empty(t, got[0].ID)
	assert.Equal(t, 2025, got[0].Time.Year())
	assert.Equal(t, 3, got[0].Time.Hour())
	assert.Equal(t, 123456000, got[0].Time.Nanosecond())

	require.NoError(t, s.Append(ctx, &history.Record{ID: "new", Type: "SMS", Result: "r", Time: time.Now()}))
	got, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "new", got[2].ID)
}

func TestStore_CorruptFileMovedAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan_history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s := New(path)
	ctx := context.Background()

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Append(ctx, &history.Record{ID: "1", Type: "QnA", Result: "x"}))
	got, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	aside, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, aside, 1)
	data, err := os.ReadFile(aside[0])
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestStore_UnparsableTimeMovedAside(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan_history.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"type":"QnA","time":"yesterday"}]`), 0o600))
	s := New(path)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, &history.Record{ID: "1", Type: "QnA", Result: "x"}))
	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "scan_history.json"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Append(ctx, &history.Record{Type: "QnA", Result: "x"})
		}()
	}
	wg.Wait()

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}
