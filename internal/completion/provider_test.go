package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/models"
)

// stubResult resolves immediately, or blocks until the context is done when
// block is set.
type stubResult struct {
	result models.IssueQueryResult
	err    error
	block  bool
}

func (s stubResult) Await(ctx context.Context) (models.IssueQueryResult, error) {
	if s.block {
		<-ctx.Done()
		return models.IssueQueryResult{}, ctx.Err()
	}
	return s.result, s.err
}

func issuesEntry(name string, issues ...models.Issue) models.QueryEntry {
	return models.QueryEntry{Name: name, Result: stubResult{result: models.IssueQueryResult{Issues: issues}}}
}

func testIssue(owner, repo string, number int, title string, updated time.Time) models.Issue {
	return models.Issue{
		Number:    number,
		Remote:    models.Remote{Owner: owner, RepositoryName: repo},
		Title:     title,
		Body:      "body of " + title,
		URL:       "https://github.com/" + owner + "/" + repo + "/issues/1",
		UpdatedAt: updated,
	}
}

type providerFixture struct {
	comments    *MockCommentDetector
	resolver    *MockRepositoryResolver
	manager     *MockRepositoryManager
	collections *MockIssueCollectionSource
	renderer    *MockMarkdownRenderer
	provider    *Provider
}

func newProviderFixture(t *testing.T) *providerFixture {
	t.Helper()
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	f := &providerFixture{
		comments:    new(MockCommentDetector),
		resolver:    new(MockRepositoryResolver),
		manager:     new(MockRepositoryManager),
		collections: new(MockIssueCollectionSource),
		renderer:    new(MockMarkdownRenderer),
	}
	f.comments.On("IsInsideComment", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Maybe()
	f.provider = NewProvider(f.collections, f.resolver, f.comments, f.renderer, trans)
	return f
}

// withRepo wires a repository manager for root whose default repository is owner/repo.
func (f *providerFixture) withRepo(root, owner, repo string) {
	f.resolver.On("ManagerForURI", mock.Anything).Return(f.manager, nil)
	f.manager.On("RootURI").Return(root)
	f.manager.On("DefaultRepositoryContext", mock.Anything).
		Return(&models.RepositoryDefaults{Owner: owner, Repo: repo, User: "octocat"}, nil)
}

func commentRequest(text string) Request {
	return Request{
		Document: models.Document{URI: "file:///repo/main.go", LanguageID: "go", Text: text},
		Position: models.Position{Line: 0, Character: len([]rune(text))},
		Trigger:  models.TriggerCharacter,
	}
}

func TestProvider_ProvideCompletions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should insert a markdown link in markdown documents", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.withRepo("file:///repo", "acme", "app")
		issue := testIssue("acme", "app", 42, "Fix bug", now)
		issue.URL = "https://x/42"
		f.collections.On("CollectionFor", mock.Anything, "file:///repo").
			Return([]models.QueryEntry{issuesEntry("My Issues", issue)})
		req := Request{
			Document: models.Document{URI: "file:///repo/README.md", LanguageID: "markdown", Text: "Fixes #"},
			Position: models.Position{Line: 0, Character: 7},
			Trigger:  models.TriggerCharacter,
		}

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), req)

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, models.CandidateIssue, got[0].Kind)
		assert.Equal(t, "42: Fix bug", got[0].Label)
		assert.Equal(t, "[#42](https://x/42)", got[0].InsertText)
		assert.Equal(t, "body of Fix bug", got[0].Documentation)
		assert.Equal(t, models.NewRange(models.Position{Character: 6}, models.Position{Character: 7}), got[0].Range)
		assert.Equal(t, " # 42 Fix bug body of Fix bug", got[0].FilterText)
		f.collections.AssertExpectations(t)
	})

	t.Run("should apply the configured template in commit inputs", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.withRepo("file:///repo", "acme", "app")
		f.collections.On("CollectionFor", mock.Anything, "file:///repo").
			Return([]models.QueryEntry{issuesEntry("My Issues", testIssue("acme", "app", 7, "Crash", now))})
		format := "#{number} {title}"
		req := Request{
			Document: models.Document{URI: "vscode-scm:git/scm0/input?rootUri=file:///repo", LanguageID: "scminput", Text: "#"},
			Position: models.Position{Line: 0, Character: 1},
			Trigger:  models.TriggerCharacter,
			Settings: models.Settings{CompletionFormatSCM: &format},
		}

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), req)

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "#7 Crash", got[0].InsertText)
		f.resolver.AssertCalled(t, "ManagerForURI", "file:///repo")
	})

	t.Run("should exclude issues outside the owner/repo filter", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.withRepo("file:///repo", "a", "b")
		f.collections.On("CollectionFor", mock.Anything, "file:///repo").Return([]models.QueryEntry{
			issuesEntry("Recent", testIssue("a", "c", 1, "Other repo", now), testIssue("a", "b", 2, "Same repo", now)),
		})

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), commentRequest("// see a/b#"))

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "2: Same repo", got[0].Label)
	})

	t.Run("should keep the last candidate for a duplicated issue", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.withRepo("file:///repo", "acme", "app")
		f.collections.On("CollectionFor", mock.Anything, "file:///repo").Return([]models.QueryEntry{
			issuesEntry("My Issues", testIssue("acme", "app", 3, "Old title", now)),
			issuesEntry("Recent", testIssue("ACME", "App", 3, "New title", now)),
		})

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), commentRequest("// #"))

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "3: New title", got[0].Label)
	})

	t.Run("should order candidates by recency", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.withRepo("file:///repo", "acme", "app")
		f.collections.On("CollectionFor", mock.Anything, "file:///repo").Return([]models.QueryEntry{
			issuesEntry("My Issues",
				testIssue("acme", "app", 1, "oldest", now.Add(-48*time.Hour)),
				testIssue("acme", "app", 2, "newest", now),
			),
			issuesEntry("Recent", testIssue("acme", "app", 3, "middle", now.Add(-time.Hour))),
		})

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), commentRequest("// #"))

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"2: newest", "3: middle", "1: oldest"},
			[]string{got[0].Label, got[1].Label, got[2].Label})
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].SortKey, got[i].SortKey)
		}
	})

	t.Run("should offer a single configure prompt when nothing matches", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.withRepo("file:///repo", "acme", "app")
		f.collections.On("CollectionFor", mock.Anything, "file:///repo").Return([]models.QueryEntry{
			issuesEntry("My Issues"),
			{Name: "Milestones", Result: stubResult{result: models.IssueQueryResult{Milestones: []models.Milestone{{Number: 1, Title: "v1"}}}}},
		})
		req := commentRequest("// #")
		req.Settings.SettingsLocation = "/home/me/.issuels/config.toml"

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), req)

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		prompt := got[0]
		assert.Equal(t, models.CandidateConfigurePrompt, prompt.Kind)
		assert.Equal(t, "Configure issue queries...", prompt.Label)
		assert.Equal(t, "No issues found. Set up queries to see relevant issues.", prompt.Detail)
		assert.Empty(t, prompt.InsertText)
		assert.Equal(t, "~", prompt.SortKey)
		assert.Nil(t, prompt.Issue)
		require.NotNil(t, prompt.Effect)
		assert.Equal(t, CommandOpenSettings, prompt.Effect.Command)
		assert.Equal(t, []any{"/home/me/.issuels/config.toml", "queries"}, prompt.Effect.Arguments)
	})

	t.Run("should skip a failing query without hiding the others", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.withRepo("file:///repo", "acme", "app")
		f.collections.On("CollectionFor", mock.Anything, "file:///repo").Return([]models.QueryEntry{
			{Name: "Broken", Result: stubResult{err: errors.New("search failed")}},
			{Name: "Missing"},
			issuesEntry("Recent", testIssue("acme", "app", 9, "Survivor", now)),
		})

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), commentRequest("// #"))

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "9: Survivor", got[0].Label)
	})

	t.Run("should qualify labels when the repository manager fails", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.resolver.On("ManagerForURI", "file:///repo/main.go").Return(nil, errors.New("not a repository"))
		f.collections.On("CollectionFor", mock.Anything, "file:///repo/main.go").
			Return([]models.QueryEntry{issuesEntry("Recent", testIssue("acme", "app", 5, "Qualified", now))})

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), commentRequest("// #"))

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "acme/app#5", got[0].InsertText)
	})

	t.Run("should qualify issues from other repositories", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.withRepo("file:///repo", "acme", "app")
		f.collections.On("CollectionFor", mock.Anything, "file:///repo").
			Return([]models.QueryEntry{issuesEntry("Recent", testIssue("acme", "lib", 11, "Upstream", now))})

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), commentRequest("// #"))

		// Assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "acme/lib#11", got[0].InsertText)
	})

	t.Run("should return nothing when the root cannot be resolved", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		req := Request{
			Document:  models.Document{URI: "comment://thread/1", LanguageID: "markdown", Text: "#"},
			Position:  models.Position{Line: 0, Character: 1},
			Trigger:   models.TriggerCharacter,
			Workspace: models.Workspace{Folders: []string{"file:///repo"}, VisibleEditors: []string{"file:///elsewhere/a.go"}},
		}

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), req)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, got)
		f.collections.AssertNotCalled(t, "CollectionFor", mock.Anything, mock.Anything)
	})

	t.Run("should return nothing when cancelled while awaiting queries", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.withRepo("file:///repo", "acme", "app")
		f.collections.On("CollectionFor", mock.Anything, "file:///repo").Return([]models.QueryEntry{
			issuesEntry("Fast", testIssue("acme", "app", 1, "fast", now)),
			{Name: "Slow", Result: stubResult{block: true}},
		})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		// Act
		got, err := f.provider.ProvideCompletions(ctx, commentRequest("// #"))

		// Assert
		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("should return nothing when the trigger is suppressed", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		req := commentRequest("x := 1")
		req.Trigger = models.TriggerInvoke

		// Act
		got, err := f.provider.ProvideCompletions(context.Background(), req)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, got)
		f.resolver.AssertNotCalled(t, "ManagerForURI", mock.Anything)
	})
}

func TestProvider_ResolveCompletion(t *testing.T) {
	issue := testIssue("acme", "app", 42, "Fix bug", time.Now())

	t.Run("should render documentation and attach the completion effect", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.renderer.On("Render", mock.Anything, issue).Return("**rendered**", nil)
		candidate := candidateBuilder{}.build(issue, nil)

		// Act
		first, err := f.provider.ResolveCompletion(context.Background(), candidate)
		require.NoError(t, err)
		second, err := f.provider.ResolveCompletion(context.Background(), first)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "**rendered**", first.Documentation)
		assert.True(t, first.DocumentationMarkdown)
		require.NotNil(t, first.Effect)
		assert.Equal(t, CommandIssueCompletion, first.Effect.Command)
		assert.Equal(t, first, second)
	})

	t.Run("should leave the configure prompt untouched", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		prompt := configurePrompt("label", "detail", "open", "")

		// Act
		got, err := f.provider.ResolveCompletion(context.Background(), prompt)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, prompt, got)
		f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	})

	t.Run("should report render failures and keep the candidate", func(t *testing.T) {
		// Arrange
		f := newProviderFixture(t)
		f.renderer.On("Render", mock.Anything, issue).Return("", errors.New("boom"))
		candidate := candidateBuilder{}.build(issue, nil)

		// Act
		got, err := f.provider.ResolveCompletion(context.Background(), candidate)

		// Assert
		assert.ErrorIs(t, err, domainErrors.ErrRenderIssue)
		assert.Equal(t, candidate, got)
	})
}
