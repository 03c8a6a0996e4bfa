package lsp

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/issuels/internal/completion"
	"github.com/thomas-vilte/issuels/internal/models"
)

type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) ProvideCompletions(ctx context.Context, req completion.Request) ([]models.Candidate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Candidate), args.Error(1)
}

func (m *MockCompletionProvider) ResolveCompletion(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(models.Candidate), args.Error(1)
}

// StaticFolders is an in-memory FolderTracker.
type StaticFolders struct {
	mu      sync.Mutex
	folders []string
}

func (f *StaticFolders) SetFolders(folders []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders = append([]string(nil), folders...)
}

func (f *StaticFolders) Folders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.folders...)
}

type MockQueryCollections struct {
	mock.Mock
}

func (m *MockQueryCollections) Refresh(ctx context.Context, rootURI string) []models.QueryEntry {
	args := m.Called(ctx, rootURI)
	entries, _ := args.Get(0).([]models.QueryEntry)
	return entries
}

func (m *MockQueryCollections) Invalidate(rootURI string) {
	m.Called(rootURI)
}
