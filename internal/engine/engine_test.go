package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/store"
	"github.com/sells-group/quote-sync/pkg/gdrive"
	"github.com/sells-group/quote-sync/pkg/gdrive/mocks"
)

var (
	clock    = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	modified = time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)
)

func workbook(t *testing.T, fill func(s *xlsx.Sheet)) []byte {
	t.Helper()
	f := xlsx.NewFile()
	sh, err := f.AddSheet("Preventivo")
	require.NoError(t, err)
	fill(sh)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func currentWorkbook(t *testing.T) []byte {
	return workbook(t, func(s *xlsx.Sheet) {
		s.Cell(2, 1).SetString("Menu 757")
		s.Cell(4, 2).SetFloatWithFormat(45945, "dd/mm/yyyy")
		s.Cell(5, 2).SetString("Matrimonio")
		s.Cell(7, 2).SetFloat(90)
		s.Cell(19, 5).SetFloat(5000)
		s.Cell(20, 5).SetFloat(1000)
	})
}

func fileMeta(id, name string) *gdrive.File {
	m := modified
	return &gdrive.File{ID: id, Name: name, MimeType: gdrive.MimeXLSX, Size: 2048, ModifiedTime: &m}
}

func serve(content []byte) func(context.Context, gdrive.File, io.Writer) (int64, error) {
	return func(_ context.Context, _ gdrive.File, w io.Writer) (int64, error) {
		n, err := w.Write(content)
		return int64(n), err
	}
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "quotes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func newEngine(t *testing.T, client gdrive.Client, opts ...Option) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithTempDir(dir), WithClock(func() time.Time { return clock })}, opts...)
	return New(client, nil, opts...), dir
}

func assertTempDirEmpty(t *testing.T, dir string) {
	t.Helper()
	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func hasStep(lines []string, sub string) bool {
	for _, l := range lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func TestAnalyzeDocument_Current(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Authorize", mock.Anything).Return(nil)
	client.On("GetMetadata", mock.Anything, "f1").Return(fileMeta("f1", "Matrimonio Rossi.xlsx"), nil)
	client.On("Download", mock.Anything, mock.Anything, mock.Anything).Return(serve(currentWorkbook(t)))

	e, dir := newEngine(t, client)
	res := e.AnalyzeDocument(context.Background(), "f1")

	require.True(t, res.OK, res.Error)
	require.NotNil(t, res.Data)
	assert.Equal(t, model.TemplateCurrent, res.Data.TemplateKind)
	assert.Equal(t, "2025-10-15", res.Data.EventDate)
	assert.Equal(t, "757", res.Data.MenuTier)
	assert.Equal(t, 90, res.Data.GuestCount)
	assert.InDelta(t, 4000, res.Data.BalanceDue, 0.001)
	assert.Equal(t, model.StatusConfirmed, res.Data.Status)
	assert.Equal(t, "f1", res.Data.SourceFileID)
	assert.Equal(t, modified, *res.Data.SourceModifiedAt)

	assert.True(t, hasStep(res.Trace, "credential: valid"))
	assert.True(t, hasStep(res.Trace, "template: anchor B3"))
	assert.True(t, hasStep(res.Trace, "cleanup: removed temp copy"))
	assert.True(t, strings.HasPrefix(res.Trace[0], "2025-03-01T10:00:00.000Z "))
	assertTempDirEmpty(t, dir)
}

func TestAnalyzeDocument_UnreadableFileKeepsFilenameHints(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Authorize", mock.Anything).Return(nil)
	client.On("GetMetadata", mock.Anything, "f2").
		Return(fileMeta("f2", "CONF 15_10 Compleanno Sara (Menu 747).xlsx"), nil)
	client.On("Download", mock.Anything, mock.Anything, mock.Anything).Return(serve([]byte("not a workbook")))

	e, dir := newEngine(t, client)
	res := e.AnalyzeDocument(context.Background(), "f2")

	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "open spreadsheet")
	require.NotNil(t, res.Data)
	assert.Equal(t, "2025-10-15", res.Data.EventDate)
	assert.Equal(t, model.StatusConfirmed, res.Data.Status)
	assert.Equal(t, "747", res.Data.MenuTier)
	assert.True(t, hasStep(res.Trace, "cleanup: removed temp copy"))
	assertTempDirEmpty(t, dir)
}

func TestAnalyzeDocument_DownloadErrorCleansUp(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Authorize", mock.Anything).Return(nil)
	client.On("GetMetadata", mock.Anything, "f3").Return(fileMeta("f3", "x.xlsx"), nil)
	client.On("Download", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("connection reset"))

	e, dir := newEngine(t, client)
	res := e.AnalyzeDocument(context.Background(), "f3")

	assert.False(t, res.OK)
	assert.Nil(t, res.Data)
	assert.Contains(t, res.Error, "connection reset")
	assert.True(t, hasStep(res.Trace, "download failed"))
	assert.True(t, hasStep(res.Trace, "cleanup: removed temp copy"))
	assertTempDirEmpty(t, dir)
}

func TestAnalyzeDocument_PanicCleansUp(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Authorize", mock.Anything).Return(nil)
	client.On("GetMetadata", mock.Anything, "f4").Return(fileMeta("f4", "x.xlsx"), nil)
	client.On("Download", mock.Anything, mock.Anything, mock.Anything).
		Return(func(context.Context, gdrive.File, io.Writer) (int64, error) { panic("driver bug") })

	e, dir := newEngine(t, client)
	res := e.AnalyzeDocument(context.Background(), "f4")

	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "driver bug")
	assert.True(t, hasStep(res.Trace, "cleanup: removed temp copy"))
	assertTempDirEmpty(t, dir)
}

func TestAnalyzeDocument_CredentialFailure(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Authorize", mock.Anything).Return(gdrive.ErrNoCredentials)

	e, _ := newEngine(t, client)
	res := e.AnalyzeDocument(context.Background(), "f1")

	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "no credentials")
	assert.True(t, hasStep(res.Trace, "credential: unavailable"))
	assert.True(t, hasStep(res.Trace, "failed:"))
}

func TestAnalyzeDocument_NotASpreadsheet(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Authorize", mock.Anything).Return(nil)
	client.On("GetMetadata", mock.Anything, "pdf").
		Return(&gdrive.File{ID: "pdf", Name: "menu.pdf", MimeType: "application/pdf"}, nil)

	e, _ := newEngine(t, client)
	res := e.AnalyzeDocument(context.Background(), "pdf")
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "not a spreadsheet")
}

func TestAnalyzeAndSave(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Authorize", mock.Anything).Return(nil)
	client.On("GetMetadata", mock.Anything, "f1").Return(fileMeta("f1", "Matrimonio.xlsx"), nil)
	client.On("Download", mock.Anything, mock.Anything, mock.Anything).Return(serve(currentWorkbook(t)))

	st := newTestStore(t)
	e, _ := newEngine(t, client, WithRepository(st))

	res, out := e.AnalyzeAndSave(context.Background(), "f1")
	require.True(t, res.OK, res.Error)
	require.NotNil(t, out)
	assert.True(t, out.Created)

	res, again := e.AnalyzeAndSave(context.Background(), "f1")
	require.True(t, res.OK, res.Error)
	assert.Equal(t, out.ID, again.ID)
	assert.False(t, again.Created)
	assert.Empty(t, again.Changed)

	got, err := st.Get(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.GuestCount)
}

func TestAnalyzeAndSave_NoStore(t *testing.T) {
	e, _ := newEngine(t, mocks.NewMockClient(t))
	res, out := e.AnalyzeAndSave(context.Background(), "f1")
	assert.False(t, res.OK)
	assert.Nil(t, out)
}

func TestScanDocuments(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Authorize", mock.Anything).Return(nil)
	client.On("FindFolder", mock.Anything, "Preventivi").
		Return(&gdrive.File{ID: "root", Name: "Preventivi", MimeType: gdrive.MimeFolder}, nil).Once()
	client.On("ListChildren", mock.Anything, "root").Return([]gdrive.File{*fileMeta("f1", "a.xlsx")}, nil).Once()

	e, _ := newEngine(t, client)
	first := e.ScanDocuments(context.Background(), false)
	require.True(t, first.OK, first.Error)
	require.Len(t, first.Data, 1)

	second := e.ScanDocuments(context.Background(), false)
	require.True(t, second.OK)
	assert.Equal(t, first.Data, second.Data)
	assert.True(t, hasStep(second.Trace, "scan cache hit"))
	client.AssertNumberOfCalls(t, "ListChildren", 1)
}

func TestScanDocuments_Failure(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Authorize", mock.Anything).Return(nil)
	client.On("FindFolder", mock.Anything, mock.Anything).Return(nil, errors.New("quota"))

	e, _ := newEngine(t, client)
	res := e.ScanDocuments(context.Background(), true)
	assert.False(t, res.OK)
	assert.NotNil(t, res.Data)
	assert.Contains(t, res.Error, "quota")
}
