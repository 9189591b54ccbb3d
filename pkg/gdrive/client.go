// Package gdrive reads folders and spreadsheets from Google Drive.
package gdrive

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/sells-group/quote-sync/internal/resilience"
)

// Drive MIME types used by the client.
const (
	MimeFolder      = "application/vnd.google-apps.folder"
	MimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	MimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const fileFields = "id,name,mimeType,size,modifiedTime"

// File is the metadata the client exposes for a Drive item.
type File struct {
	ID           string
	Name         string
	MimeType     string
	Size         int64
	ModifiedTime *time.Time
}

// IsFolder reports whether f is a folder.
func (f File) IsFolder() bool {
	return f.MimeType == MimeFolder
}

// Client performs Google Drive operations.
type Client interface {
	// Authorize checks that a valid bearer token can be obtained.
	Authorize(ctx context.Context) error
	// FindFolder returns the first non-trashed folder named name, or nil.
	FindFolder(ctx context.Context, name string) (*File, error)
	// ListChildren returns every non-trashed direct child of folderID.
	ListChildren(ctx context.Context, folderID string) ([]File, error)
	GetMetadata(ctx context.Context, fileID string) (*File, error)
	// Download streams the content of f into w. Native Google Sheets are
	// exported as xlsx.
	Download(ctx context.Context, f File, w io.Writer) (int64, error)
}

// Option configures the client.
type Option func(*options)

type options struct {
	endpoint string
	http     *http.Client
	retry    resilience.RetryConfig
	pageSize int64
}

// WithEndpoint overrides the Drive API base URL. It must end in "/".
func WithEndpoint(url string) Option {
	return func(o *options) {
		o.endpoint = url
	}
}

// WithHTTPClient overrides the base http.Client. Its transport is wrapped
// with the token source.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.http = hc
	}
}

// WithRetry overrides the retry policy for each API request.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(o *options) {
		o.retry = cfg
	}
}

// WithPageSize sets the list page size (Drive allows up to 1000).
func WithPageSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

type driveClient struct {
	svc      *drive.Service
	ts       oauth2.TokenSource
	retry    resilience.RetryConfig
	pageSize int64
}

// NewClient creates a Drive client authenticated by ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...Option) (Client, error) {
	o := options{
		http:     &http.Client{Timeout: 60 * time.Second},
		retry:    resilience.DefaultRetryConfig(),
		pageSize: 200,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.retry.OnRetry == nil {
		o.retry.OnRetry = resilience.RetryLogger("gdrive", "request")
	}

	base := o.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := &http.Client{
		Timeout:   o.http.Timeout,
		Transport: &oauth2.Transport{Source: ts, Base: base},
	}

	copts := []option.ClientOption{option.WithHTTPClient(hc)}
	if o.endpoint != "" {
		copts = append(copts, option.WithEndpoint(o.endpoint))
	}
	svc, err := drive.NewService(ctx, copts...)
	if err != nil {
		return nil, eris.Wrap(err, "gdrive: create service")
	}
	return &driveClient{svc: svc, ts: ts, retry: o.retry, pageSize: o.pageSize}, nil
}

func (c *driveClient) Authorize(_ context.Context) error {
	tok, err := c.ts.Token()
	if err != nil {
		return eris.Wrap(err, "gdrive: obtain token")
	}
	if !tok.Valid() {
		return eris.New("gdrive: token is not valid")
	}
	return nil
}

func (c *driveClient) FindFolder(ctx context.Context, name string) (*File, error) {
	q := "name = '" + escapeQuery(name) + "' and mimeType = '" + MimeFolder + "' and trashed = false"
	list, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*drive.FileList, error) {
		return c.svc.Files.List().
			Q(q).
			Fields("files(" + fileFields + ")").
			PageSize(10).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, eris.Wrapf(err, "gdrive: find folder %q", name)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	f := fromDrive(list.Files[0])
	return &f, nil
}

func (c *driveClient) ListChildren(ctx context.Context, folderID string) ([]File, error) {
	q := "'" + escapeQuery(folderID) + "' in parents and trashed = false"
	var out []File
	pageToken := ""
	for {
		list, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*drive.FileList, error) {
			call := c.svc.Files.List().
				Q(q).
				Fields("nextPageToken, files(" + fileFields + ")").
				PageSize(c.pageSize).
				OrderBy("name").
				SupportsAllDrives(true).
				IncludeItemsFromAllDrives(true).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			return call.Do()
		})
		if err != nil {
			return nil, eris.Wrapf(err, "gdrive: list children of %s", folderID)
		}
		for _, f := range list.Files {
			out = append(out, fromDrive(f))
		}
		if list.NextPageToken == "" {
			return out, nil
		}
		pageToken = list.NextPageToken
	}
}

func (c *driveClient) GetMetadata(ctx context.Context, fileID string) (*File, error) {
	df, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*drive.File, error) {
		return c.svc.Files.Get(fileID).
			Fields(fileFields).
			SupportsAllDrives(true).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, eris.Wrapf(err, "gdrive: get metadata %s", fileID)
	}
	f := fromDrive(df)
	return &f, nil
}

func (c *driveClient) Download(ctx context.Context, f File, w io.Writer) (int64, error) {
	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*http.Response, error) {
		if f.MimeType == MimeGoogleSheet {
			return c.svc.Files.Export(f.ID, MimeXLSX).Context(ctx).Download()
		}
		return c.svc.Files.Get(f.ID).SupportsAllDrives(true).Context(ctx).Download()
	})
	if err != nil {
		return 0, eris.Wrapf(err, "gdrive: download %s", f.ID)
	}
	defer resp.Body.Close() //nolint:errcheck

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, eris.Wrapf(err, "gdrive: read content of %s", f.ID)
	}
	return n, nil
}

func fromDrive(df *drive.File) File {
	f := File{ID: df.Id, Name: df.Name, MimeType: df.MimeType, Size: df.Size}
	if t, err := time.Parse(time.RFC3339, df.ModifiedTime); err == nil {
		t = t.UTC()
		f.ModifiedTime = &t
	}
	return f
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}
