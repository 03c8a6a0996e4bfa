package repository

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/issuels/internal/git"
)

type MockGitRunner struct {
	mock.Mock
}

func (m *MockGitRunner) RepoRoot(ctx context.Context, dir string) (string, error) {
	args := m.Called(ctx, dir)
	return args.String(0), args.Error(1)
}

func (m *MockGitRunner) RemoteInfo(ctx context.Context, dir string) (*git.RemoteInfo, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*git.RemoteInfo), args.Error(1)
}

type MockUserSource struct {
	mock.Mock
}

func (m *MockUserSource) GetAuthenticatedUser(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
