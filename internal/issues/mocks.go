package issues

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/issuels/internal/models"
)

type MockIssueClient struct {
	mock.Mock
}

func (m *MockIssueClient) SearchIssues(ctx context.Context, query string, limit int) ([]models.Issue, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Issue), args.Error(1)
}

func (m *MockIssueClient) GetIssue(ctx context.Context, owner, repo string, number int) (*models.Issue, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}

func (m *MockIssueClient) GetAuthenticatedUser(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockDefaultsSource struct {
	mock.Mock
}

func (m *MockDefaultsSource) DefaultsFor(ctx context.Context, rootURI string) (*models.RepositoryDefaults, error) {
	args := m.Called(ctx, rootURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RepositoryDefaults), args.Error(1)
}
