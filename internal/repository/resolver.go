package repository

import (
	"context"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/thomas-vilte/issuels/internal/completion"
	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
)

// UserSource returns the login of the authenticated user.
type UserSource interface {
	GetAuthenticatedUser(ctx context.Context) (string, error)
}

// Resolver maps document URIs to the repository that owns them. Workspace
// folders get a manager each; files outside them are matched to their git
// checkout on demand.
type Resolver struct {
	git   GitRunner
	users UserSource

	mu         sync.RWMutex
	folders    []string
	managers   map[string]*FolderManager
	discovered map[string]*FolderManager

	userMu       sync.Mutex
	user         string
	userFailedAt time.Time
	now          func() time.Time
}

// userRetryInterval spaces out user lookups after a failure, so a missing
// or rejected token does not cost a request per completion.
const userRetryInterval = 5 * time.Minute

func NewResolver(runner GitRunner, users UserSource) *Resolver {
	return &Resolver{
		git:        runner,
		users:      users,
		managers:   make(map[string]*FolderManager),
		discovered: make(map[string]*FolderManager),
		now:        time.Now,
	}
}

// SetFolders replaces the workspace folders. Managers of removed folders are
// dropped.
func (r *Resolver) SetFolders(folders []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	managers := make(map[string]*FolderManager, len(folders))
	for _, folder := range folders {
		if m, ok := r.managers[folder]; ok {
			managers[folder] = m
			continue
		}
		dir, ok := FilePath(folder)
		if !ok {
			continue
		}
		managers[folder] = newFolderManager(folder, dir, r.git, r.currentUser)
	}
	r.folders = append([]string(nil), folders...)
	r.managers = managers
}

func (r *Resolver) Folders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.folders...)
}

// ManagerForURI returns the manager of the deepest workspace folder holding
// uri, or of the git checkout holding it.
func (r *Resolver) ManagerForURI(uri string) (completion.RepositoryManager, error) {
	m, err := r.managerFor(context.Background(), uri)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultsFor returns the repository defaults for rootURI.
func (r *Resolver) DefaultsFor(ctx context.Context, rootURI string) (*models.RepositoryDefaults, error) {
	m, err := r.managerFor(ctx, rootURI)
	if err != nil {
		return nil, err
	}
	return m.DefaultRepositoryContext(ctx)
}

func (r *Resolver) managerFor(ctx context.Context, uri string) (*FolderManager, error) {
	r.mu.RLock()
	m := r.managers[completion.FolderFor(r.folders, uri)]
	if m == nil {
		m = r.discovered[completion.FolderFor(slices.Collect(maps.Keys(r.discovered)), uri)]
	}
	r.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	path, ok := FilePath(uri)
	if !ok {
		return nil, domainErrors.ErrNoRepositoryManager.WithContext("uri", uri)
	}

	dir := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		dir = filepath.Dir(path)
	}
	root, err := r.git.RepoRoot(ctx, dir)
	if err != nil {
		return nil, domainErrors.ErrNoRepositoryManager.WithError(err).WithContext("uri", uri)
	}
	rootURI := FileURI(root)

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.discovered[rootURI]; ok {
		return m, nil
	}
	m = newFolderManager(rootURI, root, r.git, r.currentUser)
	r.discovered[rootURI] = m
	logger.Debug(ctx, "repository discovered", "root", rootURI)
	return m, nil
}

// currentUser returns the cached login. A failed lookup is not repeated
// before userRetryInterval has passed.
func (r *Resolver) currentUser(ctx context.Context) string {
	if r.users == nil {
		return ""
	}
	r.userMu.Lock()
	defer r.userMu.Unlock()
	if r.user != "" {
		return r.user
	}
	if !r.userFailedAt.IsZero() && r.now().Sub(r.userFailedAt) < userRetryInterval {
		return ""
	}
	login, err := r.users.GetAuthenticatedUser(ctx)
	if err != nil || login == "" {
		r.userFailedAt = r.now()
		logger.Debug(ctx, "authenticated user unavailable", "error", err, "retry_in", userRetryInterval)
		return ""
	}
	r.user = login
	r.userFailedAt = time.Time{}
	return login
}

// FilePath converts a file URI to a local path.
func FilePath(uri string) (string, bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != models.SchemeFile || u.Path == "" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}

// FileURI converts an absolute local path to a file URI.
func FileURI(path string) string {
	return (&url.URL{Scheme: models.SchemeFile, Path: filepath.ToSlash(path)}).String()
}
