package providers

import (
	"context"

	"github.com/thomas-vilte/issuels/internal/cache"
	"github.com/thomas-vilte/issuels/internal/comments"
	"github.com/thomas-vilte/issuels/internal/completion"
	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/git"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/issues"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/markdown"
	"github.com/thomas-vilte/issuels/internal/repository"
	"github.com/thomas-vilte/issuels/internal/vcs"
)

// Stack is the fully wired completion service and the collaborators the
// commands need to reach directly.
type Stack struct {
	Provider *completion.Provider
	Issues   *issues.StateManager
	Resolver *repository.Resolver
	Comments *comments.Detector
	Renderer *markdown.IssueRenderer
	Client   vcs.IssueClient

	// cfg is the configuration the client and cache were built from.
	cfg *config.Config
}

// NewStack wires the completion provider for cfg.
func NewStack(ctx context.Context, cfg *config.Config, t *i18n.Translations) (*Stack, error) {
	client, err := NewIssueClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewStackWithClient(ctx, cfg, t, client), nil
}

// NewStackWithClient wires the completion provider around an existing client.
func NewStackWithClient(ctx context.Context, cfg *config.Config, t *i18n.Translations, client vcs.IssueClient) *Stack {
	resolver := repository.NewResolver(git.NewGitService(), client)

	opts := []issues.Option{
		issues.WithStaleAfter(cfg.Cache.TTL.Duration),
		issues.WithQueryLimit(cfg.GitHub.QueryLimit),
	}
	if c, err := cache.NewCache(cfg.CacheDir(), cfg.Cache.TTL.Duration); err != nil {
		logger.Warn(ctx, "issue cache disabled", "error", err)
	} else {
		opts = append(opts, issues.WithCache(c))
	}
	states := issues.NewStateManager(client, resolver, cfg.Queries, opts...)

	detector := comments.NewDetector()
	renderer := markdown.NewIssueRenderer(client)

	return &Stack{
		Provider: completion.NewProvider(states, resolver, detector, renderer, t),
		Issues:   states,
		Resolver: resolver,
		Comments: detector,
		Renderer: renderer,
		Client:   client,
		cfg:      cfg,
	}
}

// Apply makes a reloaded configuration effective for later requests.
// Queries, the query limit and the cache TTL apply at once; the keys that
// shape the client or the cache location only take effect after a restart.
func (s *Stack) Apply(ctx context.Context, cfg *config.Config) {
	s.Issues.SetLimits(cfg.GitHub.QueryLimit, cfg.Cache.TTL.Duration)
	s.Issues.SetQueries(cfg.Queries)

	if s.cfg != nil {
		for _, key := range restartRequired(s.cfg, cfg) {
			logger.Warn(ctx, "configuration change needs a restart", "key", key)
		}
	}
}

// restartRequired lists the changed keys Apply cannot honor.
func restartRequired(old, updated *config.Config) []string {
	var keys []string
	if old.Token() != updated.Token() {
		keys = append(keys, "github.token")
	}
	if old.GitHub.BaseURL != updated.GitHub.BaseURL {
		keys = append(keys, "github.base_url")
	}
	if old.CacheDir() != updated.CacheDir() {
		keys = append(keys, "cache.dir")
	}
	return keys
}

func (s *Stack) Close() {
	s.Comments.Close()
}
