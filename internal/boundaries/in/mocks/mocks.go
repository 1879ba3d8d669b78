// Package mocks provides testify mocks of the input ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/domain"
)

// MockSiteService is a mock implementation of in.SiteService
type MockSiteService struct {
	mock.Mock
}

func (m *MockSiteService) Add(ctx context.Context, req domain.SiteRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockSiteService) Remove(ctx context.Context, domainName string) error {
	args := m.Called(ctx, domainName)
	return args.Error(0)
}

func (m *MockSiteService) List(ctx context.Context) ([]domain.Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Site), args.Error(1)
}

func (m *MockSiteService) Show(ctx context.Context, domainName string) (*domain.Site, error) {
	args := m.Called(ctx, domainName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteService) Preview(ctx context.Context, req domain.SiteRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockProxyService is a mock implementation of in.ProxyService
type MockProxyService struct {
	mock.Mock
}

func (m *MockProxyService) TestConfig(ctx context.Context) (*out.ExecResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*out.ExecResult), args.Error(1)
}

func (m *MockProxyService) Reload(ctx context.Context) (*out.ExecResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*out.ExecResult), args.Error(1)
}

// MockCronService is a mock implementation of in.CronService
type MockCronService struct {
	mock.Mock
}

func (m *MockCronService) EnsureReloadJob(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockCronService) Entry() string {
	args := m.Called()
	return args.String(0)
}
