// Package mocks provides test doubles for the gdrive client.
package mocks

import (
	"context"
	"io"

	gdrive "github.com/sells-group/quote-sync/pkg/gdrive"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Authorize provides a mock function with given fields: ctx
func (_m *MockClient) Authorize(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Authorize")
	}

	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		return rf(ctx)
	}
	return ret.Error(0)
}

// FindFolder provides a mock function with given fields: ctx, name
func (_m *MockClient) FindFolder(ctx context.Context, name string) (*gdrive.File, error) {
	ret := _m.Called(ctx, name)

	if len(ret) == 0 {
		panic("no return value specified for FindFolder")
	}

	var r0 *gdrive.File
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*gdrive.File, error)); ok {
		return rf(ctx, name)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*gdrive.File)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// ListChildren provides a mock function with given fields: ctx, folderID
func (_m *MockClient) ListChildren(ctx context.Context, folderID string) ([]gdrive.File, error) {
	ret := _m.Called(ctx, folderID)

	if len(ret) == 0 {
		panic("no return value specified for ListChildren")
	}

	var r0 []gdrive.File
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]gdrive.File, error)); ok {
		return rf(ctx, folderID)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]gdrive.File)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// GetMetadata provides a mock function with given fields: ctx, fileID
func (_m *MockClient) GetMetadata(ctx context.Context, fileID string) (*gdrive.File, error) {
	ret := _m.Called(ctx, fileID)

	if len(ret) == 0 {
		panic("no return value specified for GetMetadata")
	}

	var r0 *gdrive.File
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*gdrive.File, error)); ok {
		return rf(ctx, fileID)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*gdrive.File)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// Download provides a mock function with given fields: ctx, f, w
func (_m *MockClient) Download(ctx context.Context, f gdrive.File, w io.Writer) (int64, error) {
	ret := _m.Called(ctx, f, w)

	if len(ret) == 0 {
		panic("no return value specified for Download")
	}

	if rf, ok := ret.Get(0).(func(context.Context, gdrive.File, io.Writer) (int64, error)); ok {
		return rf(ctx, f, w)
	}

	var r0 int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(int64)
	}
	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
