package completion

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/issuels/internal/models"
)

type MockCommentDetector struct {
	mock.Mock
}

func (m *MockCommentDetector) IsInsideComment(ctx context.Context, doc models.Document, pos models.Position) (bool, error) {
	args := m.Called(ctx, doc, pos)
	return args.Bool(0), args.Error(1)
}

type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) RootURI() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRepositoryManager) DefaultRepositoryContext(ctx context.Context) (*models.RepositoryDefaults, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RepositoryDefaults), args.Error(1)
}

type MockRepositoryResolver struct {
	mock.Mock
}

func (m *MockRepositoryResolver) ManagerForURI(uri string) (RepositoryManager, error) {
	args := m.Called(uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(RepositoryManager), args.Error(1)
}

type MockIssueCollectionSource struct {
	mock.Mock
}

func (m *MockIssueCollectionSource) CollectionFor(ctx context.Context, rootURI string) []models.QueryEntry {
	args := m.Called(ctx, rootURI)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.QueryEntry)
}

type MockMarkdownRenderer struct {
	mock.Mock
}

func (m *MockMarkdownRenderer) Render(ctx context.Context, issue models.Issue) (string, error) {
	args := m.Called(ctx, issue)
	return args.String(0), args.Error(1)
}
