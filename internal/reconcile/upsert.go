package reconcile

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/quote-sync/internal/model"
)

// Repository is the persistence needed by Upsert. store.Store satisfies it.
type Repository interface {
	FindByFileID(ctx context.Context, fileID string) (*model.PersistedAnalysis, error)
	FindByFileName(ctx context.Context, name string) (*model.PersistedAnalysis, error)
	Insert(ctx context.Context, a *model.PersistedAnalysis) error
	Update(ctx context.Context, a *model.PersistedAnalysis) error
}

// Outcome describes what Upsert did.
type Outcome struct {
	ID      string   `json:"record_id" yaml:"record_id"`
	Created bool     `json:"created" yaml:"created"`
	Changed []string `json:"changed,omitempty" yaml:"changed,omitempty"`
}

// Upsert merges rec into the analysis stored for the same file id, falling
// back to the same file name, or inserts it. updated_at moves only when a
// field changes.
func Upsert(ctx context.Context, repo Repository, rec model.ExtractedRecord, now time.Time) (Outcome, error) {
	existing, err := find(ctx, repo, rec)
	if err != nil {
		return Outcome{}, err
	}

	if existing == nil {
		a := &model.PersistedAnalysis{ExtractedRecord: rec, CreatedAt: now, UpdatedAt: now}
		if err := repo.Insert(ctx, a); err != nil {
			return Outcome{}, eris.Wrap(err, "reconcile: insert")
		}
		zap.L().Debug("analysis inserted", zap.String("record_id", a.ID), zap.String("file", rec.SourceFileName))
		return Outcome{ID: a.ID, Created: true}, nil
	}

	changed := Merge(&existing.ExtractedRecord, rec)
	if len(changed) == 0 {
		return Outcome{ID: existing.ID}, nil
	}
	existing.UpdatedAt = now
	if err := repo.Update(ctx, existing); err != nil {
		return Outcome{}, eris.Wrapf(err, "reconcile: update %s", existing.ID)
	}
	zap.L().Debug("analysis updated", zap.String("record_id", existing.ID), zap.Strings("fields", changed))
	return Outcome{ID: existing.ID, Changed: changed}, nil
}

func find(ctx context.Context, repo Repository, rec model.ExtractedRecord) (*model.PersistedAnalysis, error) {
	if rec.SourceFileID != "" {
		a, err := repo.FindByFileID(ctx, rec.SourceFileID)
		if err != nil {
			return nil, eris.Wrap(err, "reconcile: find by file id")
		}
		if a != nil {
			return a, nil
		}
	}
	if rec.SourceFileName == "" {
		return nil, nil
	}
	a, err := repo.FindByFileName(ctx, rec.SourceFileName)
	if err != nil {
		return nil, eris.Wrap(err, "reconcile: find by file name")
	}
	// A same-named document elsewhere in the tree is a different record.
	if a != nil && a.SourceFileID != "" && rec.SourceFileID != "" && a.SourceFileID != rec.SourceFileID {
		return nil, nil
	}
	return a, nil
}
