package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/quote-sync/internal/model"
)

// DefaultSyncDelay separates successive documents in a sync.
const DefaultSyncDelay = 1500 * time.Millisecond

// SyncOptions controls a sync run.
type SyncOptions struct {
	// Refresh bypasses the scan cache.
	Refresh bool
	// All re-analyzes documents whose remote modification time is unchanged.
	All bool
	// Limit caps the number of documents analyzed (0 = no cap).
	Limit int
	// Delay is the minimum spacing between analyses.
	Delay time.Duration
}

// SyncFailure records one document that could not be analyzed or saved.
type SyncFailure struct {
	FileID string `json:"file_id" yaml:"file_id"`
	Name   string `json:"name" yaml:"name"`
	Error  string `json:"error" yaml:"error"`
}

// SyncReport summarizes a sync run.
type SyncReport struct {
	Scanned   int           `json:"scanned" yaml:"scanned"`
	Analyzed  int           `json:"analyzed" yaml:"analyzed"`
	Created   int           `json:"created" yaml:"created"`
	Updated   int           `json:"updated" yaml:"updated"`
	Unchanged int           `json:"unchanged" yaml:"unchanged"`
	Skipped   int           `json:"skipped" yaml:"skipped"`
	Failed    int           `json:"failed" yaml:"failed"`
	Stopped   bool          `json:"stopped" yaml:"stopped"`
	Failures  []SyncFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Sync scans the remote folder, then analyzes and saves each document one
// at a time. Cancelling ctx stops the loop between documents; a document
// already in progress runs to completion.
func (e *Engine) Sync(ctx context.Context, opts SyncOptions) (*SyncReport, error) {
	if e.repo == nil {
		return nil, eris.New("engine: no store configured")
	}
	start := e.now()
	report := &SyncReport{}

	scan := e.ScanDocuments(ctx, opts.Refresh)
	if !scan.OK {
		return report, eris.Errorf("engine: scan: %s", scan.Error)
	}
	report.Scanned = len(scan.Data)

	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultSyncDelay
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	for _, entry := range scan.Data {
		if opts.Limit > 0 && report.Analyzed >= opts.Limit {
			break
		}
		if ctx.Err() != nil {
			report.Stopped = true
			break
		}

		if !opts.All {
			unchanged, err := e.unchanged(ctx, entry)
			if err != nil {
				zap.L().Warn("sync: lookup stored analysis", zap.String("file_id", entry.ID), zap.Error(err))
			}
			if unchanged {
				report.Skipped++
				continue
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			report.Stopped = true
			break
		}

		res, out := e.AnalyzeAndSave(context.WithoutCancel(ctx), entry.ID)
		report.Analyzed++
		switch {
		case !res.OK:
			report.Failed++
			report.Failures = append(report.Failures, SyncFailure{FileID: entry.ID, Name: entry.Name, Error: res.Error})
			zap.L().Warn("sync: document failed",
				zap.String("file_id", entry.ID),
				zap.String("name", entry.Name),
				zap.String("error", res.Error),
			)
		case out.Created:
			report.Created++
		case len(out.Changed) > 0:
			report.Updated++
		default:
			report.Unchanged++
		}
	}

	report.Elapsed = e.now().Sub(start)
	zap.L().Info("sync finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("analyzed", report.Analyzed),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Bool("stopped", report.Stopped),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// unchanged reports whether the stored analysis of entry was made from the
// same remote revision.
func (e *Engine) unchanged(ctx context.Context, entry model.RemoteEntry) (bool, error) {
	if entry.ModifiedAt == nil {
		return false, nil
	}
	stored, err := e.repo.FindByFileID(ctx, entry.ID)
	if err != nil || stored == nil || stored.SourceModifiedAt == nil {
		return false, err
	}
	return stored.SourceModifiedAt.Equal(*entry.ModifiedAt), nil
}
