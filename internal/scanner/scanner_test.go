package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/trace"
	"github.com/sells-group/quote-sync/pkg/gdrive"
	"github.com/sells-group/quote-sync/pkg/gdrive/mocks"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func tree(client *mocks.MockClient) {
	client.On("FindFolder", mock.Anything, "Preventivi").Return(nil, nil).Once()
	client.On("FindFolder", mock.Anything, "PREVENTIVI").
		Return(&gdrive.File{ID: "root", Name: "PREVENTIVI", MimeType: gdrive.MimeFolder}, nil).Once()
	client.On("ListChildren", mock.Anything, "root").Return([]gdrive.File{
		{ID: "x1", Name: "CONF 15_10 Sara.xlsx", MimeType: gdrive.MimeXLSX},
		{ID: "d2025", Name: "2025", MimeType: gdrive.MimeFolder},
		{ID: "pdf", Name: "menu.pdf", MimeType: "application/pdf"},
	}, nil).Once()
	client.On("ListChildren", mock.Anything, "d2025").Return([]gdrive.File{
		{ID: "g1", Name: "Cena", MimeType: gdrive.MimeGoogleSheet},
		{ID: "root", Name: "loop", MimeType: gdrive.MimeFolder},
	}, nil).Once()
}

func TestScan_WalksTree(t *testing.T) {
	client := mocks.NewMockClient(t)
	tree(client)

	s := New(client, nil)
	tr := trace.New("scan")
	entries, err := s.Scan(context.Background(), false, tr)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "x1", entries[0].ID)
	assert.Equal(t, "PREVENTIVI/CONF 15_10 Sara.xlsx", entries[0].Path)
	assert.Equal(t, "g1", entries[1].ID)
	assert.Equal(t, "PREVENTIVI/2025/Cena", entries[1].Path)
	assert.Positive(t, tr.Len())
}

func TestScan_CachedWithinTTL(t *testing.T) {
	client := mocks.NewMockClient(t)
	tree(client)

	clock := &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	s := New(client, NewCache(time.Minute, WithClock(clock.now)))

	first, err := s.Scan(context.Background(), false, trace.New("scan"))
	require.NoError(t, err)

	clock.t = clock.t.Add(30 * time.Second)
	second, err := s.Scan(context.Background(), false, trace.New("scan"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Once() expectations fail on any extra remote call.
	client.AssertNumberOfCalls(t, "ListChildren", 2)
	client.AssertNumberOfCalls(t, "FindFolder", 2)
}

func TestScan_ForceBypassesCache(t *testing.T) {
	client := mocks.NewMockClient(t)
	tree(client)
	s := New(client, nil)

	_, err := s.Scan(context.Background(), false, trace.New("scan"))
	require.NoError(t, err)

	tree(client)
	_, err = s.Scan(context.Background(), true, trace.New("scan"))
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "ListChildren", 4)
}

func TestScan_MissingRootIsEmpty(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("FindFolder", mock.Anything, mock.Anything).Return(nil, nil)

	s := New(client, nil, WithRootNames("A", "B"))
	entries, err := s.Scan(context.Background(), false, trace.New("scan"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
	client.AssertNumberOfCalls(t, "FindFolder", 2)

	_, _, cached := s.Cache().Get()
	assert.False(t, cached)
}

func TestScan_ListError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("FindFolder", mock.Anything, "Preventivi").
		Return(&gdrive.File{ID: "root", Name: "Preventivi", MimeType: gdrive.MimeFolder}, nil)
	client.On("ListChildren", mock.Anything, "root").Return(nil, errors.New("boom"))

	s := New(client, nil)
	_, err := s.Scan(context.Background(), false, trace.New("scan"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCache(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewCache(10*time.Second, WithClock(clock.now))

	_, _, ok := c.Get()
	assert.False(t, ok)

	c.Set([]model.RemoteEntry{{ID: "a"}})
	got, _, ok := c.Get()
	require.True(t, ok)
	got[0].ID = "mutated"

	again, _, _ := c.Get()
	assert.Equal(t, "a", again[0].ID)

	clock.t = clock.t.Add(10 * time.Second)
	_, _, ok = c.Get()
	assert.False(t, ok)

	c.Set([]model.RemoteEntry{})
	empty, _, ok := c.Get()
	assert.True(t, ok)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	c.Invalidate()
	_, _, ok = c.Get()
	assert.False(t, ok)
}

func TestEntry(t *testing.T) {
	mod := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	e := Entry(gdrive.File{ID: "1", Name: "q.xlsx", MimeType: gdrive.MimeXLSX, Size: 42, ModifiedTime: &mod}, "root/sub")
	assert.Equal(t, "root/sub/q.xlsx", e.Path)
	assert.Equal(t, int64(42), e.SizeBytes)
	assert.True(t, e.IsSpreadsheet())
	assert.Empty(t, Entry(gdrive.File{ID: "1"}, "").Path)
}
