// Package store persists analyses of quote documents.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quote-sync/internal/model"
)

// ErrNotFound is returned by Get when no analysis has the requested id.
var ErrNotFound = eris.New("store: analysis not found")

// Listing bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// orderColumns is the allow-list of sortable columns.
var orderColumns = map[string]string{
	"updated_at":       "updated_at",
	"created_at":       "created_at",
	"event_date":       "event_date",
	"source_file_name": "source_file_name",
	"total_amount":     "total_amount",
}

// ListFilter specifies criteria for listing analyses.
type ListFilter struct {
	// Query matches file name, event type and contact name, case-insensitively.
	Query   string `json:"q,omitempty"`
	OrderBy string `json:"order,omitempty"`
	Desc    bool   `json:"desc,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Normalize clamps the paging bounds and validates the order column.
func (f ListFilter) Normalize() (ListFilter, error) {
	f.Query = strings.TrimSpace(f.Query)
	if f.OrderBy == "" {
		f.OrderBy = "updated_at"
	}
	if _, ok := orderColumns[f.OrderBy]; !ok {
		return f, eris.Errorf("store: unsupported order %q", f.OrderBy)
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	f.Limit = min(f.Limit, MaxLimit)
	f.Offset = max(f.Offset, 0)
	return f, nil
}

func (f ListFilter) orderClause() string {
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	return " ORDER BY " + orderColumns[f.OrderBy] + " " + dir + ", id ASC"
}

// likePattern escapes LIKE metacharacters in q and wraps it in wildcards.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// Store defines persistence for analyses.
type Store interface {
	// FindByFileID and FindByFileName return nil, nil when nothing matches.
	FindByFileID(ctx context.Context, fileID string) (*model.PersistedAnalysis, error)
	FindByFileName(ctx context.Context, name string) (*model.PersistedAnalysis, error)
	Insert(ctx context.Context, a *model.PersistedAnalysis) error
	Update(ctx context.Context, a *model.PersistedAnalysis) error

	Get(ctx context.Context, id string) (*model.PersistedAnalysis, error)
	List(ctx context.Context, filter ListFilter) ([]model.PersistedAnalysis, int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// columns are the denormalized values written next to the record JSON so
// listing can filter and sort without decoding.
type columns struct {
	fileID    any
	fileName  string
	eventDate any
	eventType string
	contact   string
	total     float64
}

func columnsOf(rec model.ExtractedRecord) columns {
	c := columns{
		fileName:  rec.SourceFileName,
		eventType: rec.EventType,
		contact:   rec.ContactName(),
		total:     rec.TotalAmount,
	}
	if rec.SourceFileID != "" {
		c.fileID = rec.SourceFileID
	}
	if rec.EventDate != "" {
		c.eventDate = rec.EventDate
	}
	return c
}
