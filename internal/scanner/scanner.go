// Package scanner walks the remote folder tree for candidate spreadsheets.
package scanner

import (
	"context"
	"path"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/trace"
	"github.com/sells-group/quote-sync/pkg/gdrive"
)

// DefaultRootNames are the root folder aliases tried in order.
var DefaultRootNames = []string{"Preventivi", "PREVENTIVI", "preventivi"}

// Scanner lists spreadsheets below a named root folder.
type Scanner struct {
	client gdrive.Client
	cache  *Cache
	roots  []string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithRootNames overrides the root folder aliases.
func WithRootNames(names ...string) Option {
	return func(s *Scanner) {
		if len(names) > 0 {
			s.roots = names
		}
	}
}

// New creates a scanner. A nil cache gets a DefaultTTL cache.
func New(client gdrive.Client, cache *Cache, opts ...Option) *Scanner {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	s := &Scanner{client: client, cache: cache, roots: DefaultRootNames}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Cache returns the scanner's result cache.
func (s *Scanner) Cache() *Cache {
	return s.cache
}

// Scan returns every spreadsheet reachable from the root folder. A fresh
// cached result is returned without remote calls unless force is set. A
// missing root yields an empty list and no error.
func (s *Scanner) Scan(ctx context.Context, force bool, tr *trace.Collector) ([]model.RemoteEntry, error) {
	if force {
		s.cache.Invalidate()
		tr.Step("scan cache invalidated by forced refresh")
	} else if entries, expires, ok := s.cache.Get(); ok {
		tr.Step("scan cache hit: %d entries, expires %s", len(entries), expires.UTC().Format("15:04:05"))
		return entries, nil
	}

	root, err := s.resolveRoot(ctx, tr)
	if err != nil {
		return nil, err
	}
	if root == nil {
		tr.Step("root folder not found (tried %s)", strings.Join(s.roots, ", "))
		return []model.RemoteEntry{}, nil
	}

	entries, err := s.walk(ctx, *root, tr)
	if err != nil {
		return nil, err
	}
	s.cache.Set(entries)
	tr.Step("scan found %d spreadsheets", len(entries))
	return entries, nil
}

func (s *Scanner) resolveRoot(ctx context.Context, tr *trace.Collector) (*gdrive.File, error) {
	for _, name := range s.roots {
		f, err := s.client.FindFolder(ctx, name)
		if err != nil {
			tr.Step("lookup root %q failed: %v", name, err)
			return nil, eris.Wrapf(err, "scanner: resolve root %q", name)
		}
		if f != nil {
			tr.Step("root folder %q resolved to %s", name, f.ID)
			return f, nil
		}
		tr.Step("root folder %q not found", name)
	}
	return nil, nil
}

type pending struct {
	id  string
	dir string
}

// walk visits folders breadth-first, each at most once.
func (s *Scanner) walk(ctx context.Context, root gdrive.File, tr *trace.Collector) ([]model.RemoteEntry, error) {
	entries := []model.RemoteEntry{}
	seen := map[string]bool{root.ID: true}
	queue := []pending{{id: root.ID, dir: root.Name}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "scanner: walk")
		}
		cur := queue[0]
		queue = queue[1:]

		children, err := s.client.ListChildren(ctx, cur.id)
		if err != nil {
			tr.Step("list %s failed: %v", cur.dir, err)
			return nil, eris.Wrapf(err, "scanner: list %s", cur.dir)
		}
		tr.Step("listed %s: %d children", cur.dir, len(children))

		for _, f := range children {
			if f.IsFolder() {
				if !seen[f.ID] {
					seen[f.ID] = true
					queue = append(queue, pending{id: f.ID, dir: path.Join(cur.dir, f.Name)})
				}
				continue
			}
			if e := Entry(f, cur.dir); e.IsSpreadsheet() {
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// Entry converts Drive metadata into a RemoteEntry located in dir.
func Entry(f gdrive.File, dir string) model.RemoteEntry {
	e := model.RemoteEntry{
		ID:         f.ID,
		Name:       f.Name,
		MimeType:   f.MimeType,
		IsFolder:   f.IsFolder(),
		SizeBytes:  f.Size,
		ModifiedAt: f.ModifiedTime,
	}
	if dir != "" {
		e.Path = path.Join(dir, f.Name)
	}
	return e
}
