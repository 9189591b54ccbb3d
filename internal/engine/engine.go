// Package engine exposes the caller-facing operations: scanning the remote
// folder and analyzing one document at a time.
package engine

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/quote-sync/internal/extract"
	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/reconcile"
	"github.com/sells-group/quote-sync/internal/scanner"
	"github.com/sells-group/quote-sync/internal/sheet"
	"github.com/sells-group/quote-sync/internal/trace"
	"github.com/sells-group/quote-sync/pkg/gdrive"
)

// Engine runs scans and single-document analyses against a Drive client.
type Engine struct {
	client  gdrive.Client
	scanner *scanner.Scanner
	repo    reconcile.Repository
	tempDir string
	sheet   sheet.XLSXOptions
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRepository enables saving analyses.
func WithRepository(repo reconcile.Repository) Option {
	return func(e *Engine) {
		e.repo = repo
	}
}

// WithTempDir sets where downloaded copies are written ("" = OS default).
func WithTempDir(dir string) Option {
	return func(e *Engine) {
		e.tempDir = dir
	}
}

// WithSheet selects the worksheet read from each workbook.
func WithSheet(opts sheet.XLSXOptions) Option {
	return func(e *Engine) {
		e.sheet = opts
	}
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine. A nil scanner gets a default one over client.
func New(client gdrive.Client, sc *scanner.Scanner, opts ...Option) *Engine {
	if sc == nil {
		sc = scanner.New(client, nil)
	}
	e := &Engine{client: client, scanner: sc, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) newTrace(op string) *trace.Collector {
	return trace.New(op, trace.WithClock(e.now))
}

func (e *Engine) authorize(ctx context.Context, tr *trace.Collector) error {
	if err := e.client.Authorize(ctx); err != nil {
		tr.Step("credential: unavailable: %v", err)
		return eris.Wrap(err, "engine: acquire credential")
	}
	tr.Step("credential: valid bearer token")
	return nil
}

// ScanDocuments lists the candidate spreadsheets, served from cache unless
// force is set.
func (e *Engine) ScanDocuments(ctx context.Context, force bool) trace.Result[[]model.RemoteEntry] {
	tr := e.newTrace("scan_documents")
	res := trace.Run(tr, func(data *[]model.RemoteEntry) error {
		*data = []model.RemoteEntry{}
		if err := e.authorize(ctx, tr); err != nil {
			return err
		}
		entries, err := e.scanner.Scan(ctx, force, tr)
		if err != nil {
			return err
		}
		*data = entries
		return nil
	})
	zap.L().Info("scan finished", zap.Bool("ok", res.OK), zap.Int("documents", len(res.Data)), zap.Bool("force", force))
	return res
}

// AnalyzeDocument downloads one document and extracts its record.
func (e *Engine) AnalyzeDocument(ctx context.Context, fileID string) trace.Result[*model.ExtractedRecord] {
	res, _ := e.analyze(ctx, fileID, false)
	return res
}

// AnalyzeAndSave analyzes one document and upserts the record. The outcome
// is nil when nothing was saved.
func (e *Engine) AnalyzeAndSave(ctx context.Context, fileID string) (trace.Result[*model.ExtractedRecord], *reconcile.Outcome) {
	return e.analyze(ctx, fileID, true)
}

func (e *Engine) analyze(ctx context.Context, fileID string, save bool) (trace.Result[*model.ExtractedRecord], *reconcile.Outcome) {
	tr := e.newTrace("analyze_document")
	var saved *reconcile.Outcome

	res := trace.Run(tr, func(data **model.ExtractedRecord) error {
		if save && e.repo == nil {
			return eris.New("engine: no store configured")
		}
		if err := e.authorize(ctx, tr); err != nil {
			return err
		}

		meta, err := e.client.GetMetadata(ctx, fileID)
		if err != nil {
			tr.Step("metadata %s: %v", fileID, err)
			return eris.Wrap(err, "engine: get metadata")
		}
		entry := scanner.Entry(*meta, "")
		tr.Step("metadata: %q (%s, %d bytes)", entry.Name, entry.MimeType, entry.SizeBytes)
		if !entry.IsSpreadsheet() {
			return eris.Errorf("engine: %s is not a spreadsheet (%s)", fileID, entry.MimeType)
		}

		rec, err := e.extractRemote(ctx, *meta, entry, tr)
		*data = rec
		if err != nil {
			return err
		}

		if save {
			out, err := reconcile.Upsert(ctx, e.repo, *rec, e.now().UTC())
			if err != nil {
				tr.Step("save failed: %v", err)
				return err
			}
			saved = &out
			tr.Step("saved record %s (created=%t, changed=%v)", out.ID, out.Created, out.Changed)
		}
		return nil
	})
	return res, saved
}

// extractRemote downloads f into a temporary copy that is removed on every
// exit path, then opens and extracts it. An unopenable copy yields a partial
// record from the file name along with the error.
func (e *Engine) extractRemote(ctx context.Context, f gdrive.File, entry model.RemoteEntry, tr *trace.Collector) (*model.ExtractedRecord, error) {
	tmp, err := os.CreateTemp(e.tempDir, "quote-*.xlsx")
	if err != nil {
		tr.Step("temp copy: create failed: %v", err)
		return nil, eris.Wrap(err, "engine: create temp file")
	}
	path := tmp.Name()
	tr.Step("temp copy: %s", path)
	defer func() {
		_ = tmp.Close()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			tr.Step("cleanup: remove %s failed: %v", path, err)
			zap.L().Warn("temp copy not removed", zap.String("path", path), zap.Error(err))
			return
		}
		tr.Step("cleanup: removed temp copy")
	}()

	n, err := e.client.Download(ctx, f, tmp)
	if err != nil {
		tr.Step("download failed after %d bytes: %v", n, err)
		return nil, eris.Wrap(err, "engine: download")
	}
	if err := tmp.Close(); err != nil {
		return nil, eris.Wrap(err, "engine: flush temp file")
	}
	tr.Step("downloaded %d bytes", n)

	now := e.now()
	s, err := sheet.OpenXLSX(path, e.sheet)
	if err != nil {
		tr.Step("open failed: %v; falling back to filename hints", err)
		rec := extract.FromFilename(entry, now, tr)
		return &rec, eris.Wrap(err, "engine: open spreadsheet")
	}
	rows, cols := s.Dims()
	tr.Step("opened worksheet: %d rows x %d columns", rows, cols)

	rec := extract.Extract(s, entry, now, tr)
	return &rec, nil
}
