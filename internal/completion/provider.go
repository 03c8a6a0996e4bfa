package completion

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
)

// Commands carried by candidate effects.
const (
	CommandOpenSettings    = "issuels.openSettings"
	CommandIssueCompletion = "issues.issueCompletion"

	settingsQueriesSection = "queries"
)

// Provider assembles issue completions for a document position.
type Provider struct {
	trigger     *TriggerDetector
	collections IssueCollectionSource
	repos       RepositoryResolver
	renderer    MarkdownRenderer
	trans       *i18n.Translations
}

func NewProvider(
	collections IssueCollectionSource,
	repos RepositoryResolver,
	comments CommentDetector,
	renderer MarkdownRenderer,
	trans *i18n.Translations,
) *Provider {
	return &Provider{
		trigger:     NewTriggerDetector(comments),
		collections: collections,
		repos:       repos,
		renderer:    renderer,
		trans:       trans,
	}
}

// ProvideCompletions returns the candidates for req ordered by SortKey.
// A cancelled request yields no candidates and no error.
func (p *Provider) ProvideCompletions(ctx context.Context, req Request) ([]models.Candidate, error) {
	ctx = logger.With(ctx, "uri", req.Document.URI)

	trig, ok := p.trigger.Detect(ctx, req)
	if !ok || ctx.Err() != nil {
		return nil, nil
	}

	root := resolveRoot(ctx, req.Document, req.Workspace)
	if root == "" {
		logger.Debug(ctx, "no root for document")
		return nil, nil
	}

	defaults, collectionRoot := p.repositoryContext(ctx, root)
	if ctx.Err() != nil {
		return nil, nil
	}

	entries := p.collections.CollectionFor(ctx, collectionRoot)
	results := awaitAll(ctx, entries)
	if ctx.Err() != nil {
		return nil, nil
	}

	builder := candidateBuilder{
		defaults: defaults,
		rng:      trig.Range,
		doc:      req.Document,
		settings: req.Settings,
	}

	byKey := make(map[string]int)
	var candidates []models.Candidate
	for _, result := range results {
		if result == nil || len(result.Issues) == 0 {
			continue
		}
		for _, issue := range result.Issues {
			if trig.Filter != nil && !trig.Filter.Matches(issue) {
				continue
			}
			c := builder.build(issue, nil)
			if i, seen := byKey[issue.Key()]; seen {
				candidates[i] = c
				continue
			}
			byKey[issue.Key()] = len(candidates)
			candidates = append(candidates, c)
		}
	}

	if len(candidates) == 0 {
		logger.Debug(ctx, "no issues found, offering configure prompt")
		return []models.Candidate{p.configurePrompt(req.Settings)}, nil
	}

	slices.SortStableFunc(candidates, func(a, b models.Candidate) int {
		switch {
		case a.SortKey < b.SortKey:
			return -1
		case a.SortKey > b.SortKey:
			return 1
		default:
			return 0
		}
	})

	logger.Debug(ctx, "completion assembled", "candidates", len(candidates), "root", collectionRoot)
	return candidates, nil
}

// repositoryContext finds the repository defaults for root and the key of its
// issue collection. Lookup failures only drop the defaults.
func (p *Provider) repositoryContext(ctx context.Context, root string) (*models.RepositoryDefaults, string) {
	if p.repos == nil {
		return nil, root
	}
	manager, err := p.repos.ManagerForURI(root)
	if err != nil {
		logger.Debug(ctx, "repository manager lookup failed", "root", root, "error", err)
		return nil, root
	}
	if manager == nil {
		logger.Debug(ctx, "repository manager lookup failed", "root", root,
			"error", domainErrors.ErrNoRepositoryManager)
		return nil, root
	}

	collectionRoot := root
	if r := manager.RootURI(); r != "" {
		collectionRoot = r
	}

	defaults, err := manager.DefaultRepositoryContext(ctx)
	if err != nil {
		logger.Debug(ctx, "default repository context unavailable", "root", collectionRoot, "error", err)
		return nil, collectionRoot
	}
	return defaults, collectionRoot
}

// awaitAll waits for every entry independently. Failed or nil entries leave
// a nil slot so one query never hides the others.
func awaitAll(ctx context.Context, entries []models.QueryEntry) []*models.IssueQueryResult {
	results := make([]*models.IssueQueryResult, len(entries))
	var g errgroup.Group
	for i, entry := range entries {
		if entry.Result == nil {
			continue
		}
		g.Go(func() error {
			res, err := entry.Result.Await(ctx)
			if err != nil {
				logger.Debug(ctx, "issue query skipped", "query", entry.Name, "error", err)
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Provider) configurePrompt(settings models.Settings) models.Candidate {
	return configurePrompt(
		p.trans.GetMessage("completion.configure_queries", 0, nil),
		p.trans.GetMessage("completion.no_issues_found", 0, nil),
		p.trans.GetMessage("completion.open_settings", 0, nil),
		settings.SettingsLocation,
	)
}

// ResolveCompletion renders the full documentation of an issue candidate and
// attaches the post-acceptance effect. Other kinds are returned unchanged.
func (p *Provider) ResolveCompletion(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	if c.Kind != models.CandidateIssue || c.Issue == nil {
		return c, nil
	}
	if ctx.Err() != nil {
		return c, nil
	}

	doc, err := p.renderer.Render(ctx, *c.Issue)
	if err != nil {
		if ctx.Err() != nil {
			return c, nil
		}
		return c, domainErrors.ErrRenderIssue.WithError(err).WithContext("issue", c.Issue.Key())
	}

	c.Documentation = doc
	c.DocumentationMarkdown = true
	c.Effect = &models.Effect{
		Command: CommandIssueCompletion,
		Title:   p.trans.GetMessage("completion.issue_chosen", 0, nil),
	}
	return c, nil
}
