package repository

import (
	"context"
	"sync"

	"github.com/thomas-vilte/issuels/internal/git"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
)

// GitRunner is the part of the git service the managers need.
type GitRunner interface {
	RepoRoot(ctx context.Context, dir string) (string, error)
	RemoteInfo(ctx context.Context, dir string) (*git.RemoteInfo, error)
}

// FolderManager owns one repository checkout and remembers its remote once
// it has been read successfully.
type FolderManager struct {
	rootURI string
	dir     string
	git     GitRunner
	user    func(ctx context.Context) string

	mu     sync.Mutex
	remote *git.RemoteInfo
}

func newFolderManager(rootURI, dir string, runner GitRunner, user func(ctx context.Context) string) *FolderManager {
	return &FolderManager{rootURI: rootURI, dir: dir, git: runner, user: user}
}

func (m *FolderManager) RootURI() string {
	return m.rootURI
}

func (m *FolderManager) Dir() string {
	return m.dir
}

// DefaultRepositoryContext returns the owner and repository of the origin
// remote plus the authenticated user, when known. No lock is held while git
// or the user lookup runs.
func (m *FolderManager) DefaultRepositoryContext(ctx context.Context) (*models.RepositoryDefaults, error) {
	m.mu.Lock()
	remote := m.remote
	m.mu.Unlock()

	if remote == nil {
		info, err := m.git.RemoteInfo(ctx, m.dir)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		if m.remote == nil {
			m.remote = info
			logger.Debug(ctx, "repository remote resolved",
				"root", m.rootURI,
				"owner", info.Owner,
				"repo", info.Repo)
		}
		remote = m.remote
		m.mu.Unlock()
	}

	return &models.RepositoryDefaults{
		Owner: remote.Owner,
		Repo:  remote.Repo,
		User:  m.user(ctx),
	}, nil
}
