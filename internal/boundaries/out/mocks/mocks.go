// Package mocks provides testify mocks of the output ports.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/domain"
)

// MockSiteStore is a mock implementation of out.SiteStore
type MockSiteStore struct {
	mock.Mock
}

func (m *MockSiteStore) Write(ctx context.Context, domainName, config string) error {
	args := m.Called(ctx, domainName, config)
	return args.Error(0)
}

func (m *MockSiteStore) Stage(ctx context.Context, domainName, config string) (out.StagedChange, error) {
	args := m.Called(ctx, domainName, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(out.StagedChange), args.Error(1)
}

func (m *MockSiteStore) Delete(ctx context.Context, domainName string) error {
	args := m.Called(ctx, domainName)
	return args.Error(0)
}

func (m *MockSiteStore) StageDelete(ctx context.Context, domainName string) (out.StagedChange, error) {
	args := m.Called(ctx, domainName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(out.StagedChange), args.Error(1)
}

func (m *MockSiteStore) Get(ctx context.Context, domainName string) (*domain.Site, error) {
	args := m.Called(ctx, domainName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteStore) Exists(ctx context.Context, domainName string) (bool, error) {
	args := m.Called(ctx, domainName)
	return args.Bool(0), args.Error(1)
}

func (m *MockSiteStore) List(ctx context.Context) ([]domain.Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Site), args.Error(1)
}

// MockStagedChange is a mock implementation of out.StagedChange
type MockStagedChange struct {
	mock.Mock
}

func (m *MockStagedChange) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStagedChange) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockCredentialStore is a mock implementation of out.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Lookup(ctx context.Context, domainName string) (string, string, error) {
	args := m.Called(ctx, domainName)
	return args.String(0), args.String(1), args.Error(2)
}

// MockCertProvisioner is a mock implementation of out.CertProvisioner
type MockCertProvisioner struct {
	mock.Mock
}

func (m *MockCertProvisioner) Obtain(ctx context.Context, req domain.CertRequest) (*out.ExecResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*out.ExecResult), args.Error(1)
}

// MockProxyController is a mock implementation of out.ProxyController
type MockProxyController struct {
	mock.Mock
}

func (m *MockProxyController) Validate(ctx context.Context) (*out.ExecResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*out.ExecResult), args.Error(1)
}

func (m *MockProxyController) Reload(ctx context.Context) (*out.ExecResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*out.ExecResult), args.Error(1)
}

// MockCommandExecutor is a mock implementation of out.CommandExecutor
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Exec(ctx context.Context, cmd []string, stdin io.Reader) (*out.ExecResult, error) {
	args := m.Called(ctx, cmd, stdin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*out.ExecResult), args.Error(1)
}

// MockCrontab is a mock implementation of out.Crontab
type MockCrontab struct {
	mock.Mock
}

func (m *MockCrontab) Read(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockCrontab) Write(ctx context.Context, content string) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}
