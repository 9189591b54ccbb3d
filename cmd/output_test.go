package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/quote-sync/internal/engine"
	"github.com/sells-group/quote-sync/internal/model"
)

func TestWriteOutput(t *testing.T) {
	v := map[string]any{"ok": true, "error": "boom"}

	var js bytes.Buffer
	require.NoError(t, writeOutput(&js, "json", v))
	assert.Contains(t, js.String(), `"ok": true`)

	var ym bytes.Buffer
	require.NoError(t, writeOutput(&ym, "yaml", v))
	var back map[string]any
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &back))
	assert.Equal(t, "boom", back["error"])

	assert.Error(t, writeOutput(&js, "xml", v))
}

func TestFormatEntries(t *testing.T) {
	mod := time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)
	entries := []model.RemoteEntry{
		{ID: "f1", Name: "a.xlsx", Path: "2025/a.xlsx", SizeBytes: 2048, ModifiedAt: &mod},
		{ID: "f2", Name: "b.xlsx"},
	}

	var buf bytes.Buffer
	formatEntries(&buf, entries)

	out := buf.String()
	assert.Contains(t, out, "PATH")
	assert.Contains(t, out, "2025/a.xlsx")
	assert.Contains(t, out, "2025-02-20 09:00")
	assert.Contains(t, out, "2 document(s)")
}

func TestFormatAnalyses(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	items := []model.PersistedAnalysis{
		{
			ID: "abc12345-6789-0000-0000-000000000000",
			ExtractedRecord: model.ExtractedRecord{
				SourceFileName:   "Matrimonio Rossi.xlsx",
				EventDate:        "2025-10-15",
				EventType:        "Matrimonio",
				ContactFirstName: "Sara",
				ContactLastName:  "Verdi",
				TotalAmount:      5000,
				Status:           model.StatusConfirmed,
			},
			UpdatedAt: now,
		},
	}

	var buf bytes.Buffer
	formatAnalyses(&buf, items, 3)

	out := buf.String()
	assert.Contains(t, out, "abc12345")
	assert.NotContains(t, out, "abc12345-6789")
	assert.Contains(t, out, "Sara Verdi")
	assert.Contains(t, out, "5000.00")
	assert.Contains(t, out, "confirmed")
	assert.Contains(t, out, "2025-06-15 10:30")
	assert.Contains(t, out, "Showing 1 of 3 analyses")
}

func TestFormatSyncReport(t *testing.T) {
	r := &engine.SyncReport{
		Scanned: 4, Analyzed: 3, Created: 1, Updated: 1, Unchanged: 1, Skipped: 1, Failed: 1,
		Stopped:  true,
		Failures: []engine.SyncFailure{{FileID: "f9", Name: "broken.xlsx", Error: "download failed"}},
		Elapsed:  1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	formatSyncReport(&buf, r)

	out := buf.String()
	assert.Contains(t, out, "Scanned:   4")
	assert.Contains(t, out, "Failed:    1")
	assert.Contains(t, out, "Stopped early")
	assert.Contains(t, out, "broken.xlsx (f9): download failed")
}
