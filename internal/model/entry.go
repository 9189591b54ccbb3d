package model

import "time"

// Spreadsheet MIME types recognised by the folder scanner.
const (
	MimeFolder       = "application/vnd.google-apps.folder"
	MimeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeXLSX         = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeXLSM         = "application/vnd.ms-excel.sheet.macroEnabled.12"
	MimeXLSXTemplate = "application/vnd.openxmlformats-officedocument.spreadsheetml.template"
)

// spreadsheetMimes is the set of media types treated as candidate documents.
var spreadsheetMimes = map[string]bool{
	MimeGoogleSheet:  true,
	MimeXLSX:         true,
	MimeXLSM:         true,
	MimeXLSXTemplate: true,
}

// IsSpreadsheetMime reports whether the media type is a parseable spreadsheet.
func IsSpreadsheetMime(mime string) bool {
	return spreadsheetMimes[mime]
}

// RemoteEntry is a snapshot of one node in the remote file store.
type RemoteEntry struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	MimeType   string     `json:"mime_type" yaml:"mime_type"`
	IsFolder   bool       `json:"is_folder" yaml:"is_folder"`
	SizeBytes  int64      `json:"size_bytes" yaml:"size_bytes"`
	ModifiedAt *time.Time `json:"modified_at,omitempty" yaml:"modified_at,omitempty"`
	Path       string     `json:"path,omitempty" yaml:"path,omitempty"`
}

// IsSpreadsheet reports whether the entry is a candidate document.
func (e RemoteEntry) IsSpreadsheet() bool {
	return !e.IsFolder && IsSpreadsheetMime(e.MimeType)
}
