package issues

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thomas-vilte/issuels/internal/cache"
	"github.com/thomas-vilte/issuels/internal/config"
	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
	"github.com/thomas-vilte/issuels/internal/regex"
	"github.com/thomas-vilte/issuels/internal/vcs"
)

const (
	defaultQueryLimit   = 100
	defaultFetchTimeout = 30 * time.Second
	maxParallelQueries  = 4
)

// RepositoryDefaultsSource supplies the owner, repository and user that
// query variables expand to for a root.
type RepositoryDefaultsSource interface {
	DefaultsFor(ctx context.Context, rootURI string) (*models.RepositoryDefaults, error)
}

type collection struct {
	entries   []models.QueryEntry
	startedAt time.Time
}

// StateManager keeps one collection of running or finished issue queries
// per repository root.
type StateManager struct {
	client   vcs.IssueClient
	defaults RepositoryDefaultsSource
	cache    *cache.Cache

	limit        int
	staleAfter   time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	queries     []config.QueryConfig
	collections map[string]*collection
}

type Option func(*StateManager)

// WithCache persists query results between runs.
func WithCache(c *cache.Cache) Option {
	return func(s *StateManager) { s.cache = c }
}

// WithStaleAfter re-runs a root's queries once they are older than d.
// Zero keeps results until Invalidate.
func WithStaleAfter(d time.Duration) Option {
	return func(s *StateManager) { s.staleAfter = d }
}

func WithQueryLimit(n int) Option {
	return func(s *StateManager) {
		if n > 0 {
			s.limit = n
		}
	}
}

func NewStateManager(client vcs.IssueClient, defaults RepositoryDefaultsSource, queries []config.QueryConfig, opts ...Option) *StateManager {
	s := &StateManager{
		client:       client,
		defaults:     defaults,
		limit:        defaultQueryLimit,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
		queries:      append([]config.QueryConfig(nil), queries...),
		collections:  make(map[string]*collection),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CollectionFor returns the queries of rootURI in configuration order,
// starting them when they have not run yet or went stale. It never blocks
// on the network.
func (s *StateManager) CollectionFor(ctx context.Context, rootURI string) []models.QueryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[rootURI]; ok && !s.isStale(c) {
		return c.entries
	}
	return s.startLocked(ctx, rootURI)
}

// Refresh re-runs every query of rootURI.
func (s *StateManager) Refresh(ctx context.Context, rootURI string) []models.QueryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx, rootURI)
}

// SetLimits changes the result limit per query and the staleness window.
// Running queries keep the values they started with.
func (s *StateManager) SetLimits(limit int, staleAfter time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > 0 {
		s.limit = limit
	}
	s.staleAfter = staleAfter
}

// SetQueries replaces the configured queries and drops every collection.
func (s *StateManager) SetQueries(queries []config.QueryConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append([]config.QueryConfig(nil), queries...)
	s.collections = make(map[string]*collection)
}

// Invalidate drops the collection of rootURI so the next request re-runs it.
func (s *StateManager) Invalidate(rootURI string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, rootURI)
}

func (s *StateManager) isStale(c *collection) bool {
	if s.staleAfter <= 0 {
		return false
	}
	for _, e := range c.entries {
		if p, ok := e.Result.(*Pending); ok && !p.Done() {
			return false
		}
	}
	return s.now().Sub(c.startedAt) > s.staleAfter
}

func (s *StateManager) startLocked(ctx context.Context, rootURI string) []models.QueryEntry {
	queries := s.queries
	pendings := make([]*Pending, len(queries))
	entries := make([]models.QueryEntry, len(queries))
	for i, q := range queries {
		pendings[i] = newPending()
		entries[i] = models.QueryEntry{Name: q.Label, Result: pendings[i]}
	}
	s.collections[rootURI] = &collection{entries: entries, startedAt: s.now()}

	// Queries outlive the request that started them.
	runCtx := logger.With(context.WithoutCancel(ctx), "root", rootURI)
	go s.run(runCtx, rootURI, queries, pendings, s.limit)

	logger.Debug(ctx, "issue queries started", "root", rootURI, "queries", len(queries))
	return entries
}

func (s *StateManager) run(ctx context.Context, rootURI string, queries []config.QueryConfig, pendings []*Pending, limit int) {
	var defaults *models.RepositoryDefaults
	if s.defaults != nil {
		d, err := s.defaults.DefaultsFor(ctx, rootURI)
		if err != nil {
			logger.Debug(ctx, "repository defaults unavailable", "error", err)
		} else {
			defaults = d
		}
	}

	var g errgroup.Group
	g.SetLimit(maxParallelQueries)
	for i, q := range queries {
		g.Go(func() error {
			result, err := s.runQuery(ctx, rootURI, q, defaults, limit)
			if err != nil {
				logger.Warn(ctx, "issue query failed", "query", q.Label, "error", err)
			}
			pendings[i].resolve(result, err)
			return nil
		})
	}
	_ = g.Wait()
	logger.Info(ctx, "issue queries refreshed", "count", len(queries))
}

func (s *StateManager) runQuery(ctx context.Context, rootURI string, q config.QueryConfig, defaults *models.RepositoryDefaults, limit int) (models.IssueQueryResult, error) {
	query, err := ExpandQuery(q.Query, defaults, s.now())
	if err != nil {
		return models.IssueQueryResult{}, err
	}

	var key string
	if s.cache != nil {
		key = s.cache.GenerateHash(rootURI, q.Label, query)
		if raw, found, err := s.cache.Get(key); err != nil {
			logger.Debug(ctx, "ignoring unreadable cache entry", "query", q.Label, "error", err)
		} else if found {
			var cached models.IssueQueryResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				logger.Debug(ctx, "issue query served from cache", "query", q.Label, "issues", len(cached.Issues))
				return cached, nil
			}
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	issues, err := s.client.SearchIssues(fetchCtx, query, limit)
	if err != nil {
		return models.IssueQueryResult{}, err
	}
	result := models.IssueQueryResult{Issues: issues}

	if s.cache != nil {
		if err := s.cache.Set(key, result); err != nil {
			logger.Debug(ctx, "failed to cache issue query", "query", q.Label, "error", err)
		}
	}
	return result, nil
}

// ExpandQuery substitutes ${user}, ${owner}, ${repository} and ${today} in a
// search query. A variable without a value is an error.
func ExpandQuery(query string, defaults *models.RepositoryDefaults, now time.Time) (string, error) {
	var missing []string
	expanded := regex.QueryVariable.ReplaceAllStringFunc(query, func(match string) string {
		name := regex.QueryVariable.FindStringSubmatch(match)[1]
		var value string
		switch name {
		case "today":
			value = now.Format(time.DateOnly)
		case "user":
			if defaults != nil {
				value = defaults.User
			}
		case "owner":
			if defaults != nil {
				value = defaults.Owner
			}
		case "repository":
			if defaults != nil {
				value = defaults.Repo
			}
		default:
			return match
		}
		if value == "" {
			missing = append(missing, name)
		}
		return value
	})

	if len(missing) > 0 {
		return "", domainErrors.ErrSearchIssues.
			WithError(fmt.Errorf("no value for %v", missing)).
			WithContext("query", query)
	}
	return expanded, nil
}
