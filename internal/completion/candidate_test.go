package completion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thomas-vilte/issuels/internal/models"
)

func TestIssueNumberLabel(t *testing.T) {
	issue := models.Issue{Number: 12, Remote: models.Remote{Owner: "acme", RepositoryName: "app"}}

	tests := []struct {
		name     string
		defaults *models.RepositoryDefaults
		want     string
	}{
		{name: "same repository", defaults: &models.RepositoryDefaults{Owner: "acme", Repo: "app"}, want: "#12"},
		{name: "same repository different case", defaults: &models.RepositoryDefaults{Owner: "ACME", Repo: "App"}, want: "#12"},
		{name: "other repository", defaults: &models.RepositoryDefaults{Owner: "acme", Repo: "lib"}, want: "acme/app#12"},
		{name: "no defaults", defaults: nil, want: "acme/app#12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IssueNumberLabel(issue, tt.defaults))
		})
	}

	t.Run("unknown remote", func(t *testing.T) {
		assert.Equal(t, "#3", IssueNumberLabel(models.Issue{Number: 3}, nil))
	})
}

func TestSortKey(t *testing.T) {
	t.Run("should count down from the largest safe integer", func(t *testing.T) {
		issue := models.Issue{UpdatedAt: time.UnixMilli(1_700_000_000_000)}
		assert.Equal(t, "9005499254740991", SortKey(issue))
	})

	t.Run("should give newer issues smaller keys", func(t *testing.T) {
		older := models.Issue{UpdatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
		newer := models.Issue{UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		assert.Less(t, SortKey(newer), SortKey(older))
	})

	t.Run("should treat a missing timestamp as the epoch", func(t *testing.T) {
		assert.Equal(t, "9007199254740991", SortKey(models.Issue{}))
	})
}

func TestCandidateBuilder_Build(t *testing.T) {
	issue := models.Issue{
		Number:    8,
		Remote:    models.Remote{Owner: "acme", RepositoryName: "app"},
		Title:     "Flaky test",
		Body:      "fails on CI",
		URL:       "https://github.com/acme/app/issues/8",
		Milestone: &models.Milestone{Title: "v1.2"},
	}
	defaults := &models.RepositoryDefaults{Owner: "acme", Repo: "app"}
	rng := models.NewRange(models.Position{Character: 3}, models.Position{Character: 4})

	t.Run("should use the issue milestone as detail", func(t *testing.T) {
		// Arrange
		b := candidateBuilder{defaults: defaults, rng: rng, doc: models.Document{LanguageID: "go"}}

		// Act
		c := b.build(issue, nil)

		// Assert
		assert.Equal(t, "8: Flaky test", c.Label)
		assert.Equal(t, "#8", c.InsertText)
		assert.Equal(t, "v1.2", c.Detail)
		assert.Equal(t, "v1.2 # 8 Flaky test fails on CI", c.FilterText)
		assert.Equal(t, rng, c.Range)
		assert.Equal(t, &issue, c.Issue)
	})

	t.Run("should prefer an explicit milestone", func(t *testing.T) {
		b := candidateBuilder{defaults: defaults, rng: rng}
		c := b.build(issue, &models.Milestone{Title: "backlog"})
		assert.Equal(t, "backlog", c.Detail)
	})

	t.Run("should ignore the template outside commit inputs", func(t *testing.T) {
		// Arrange
		format := "{title}"
		b := candidateBuilder{
			defaults: defaults,
			doc:      models.Document{URI: "file:///repo/main.go", LanguageID: "go"},
			settings: models.Settings{CompletionFormatSCM: &format},
		}

		// Act
		c := b.build(issue, nil)

		// Assert
		assert.Equal(t, "#8", c.InsertText)
	})

	t.Run("should accept an empty template", func(t *testing.T) {
		// Arrange
		format := ""
		b := candidateBuilder{
			defaults: defaults,
			doc:      models.Document{URI: "vscode-scm:git/scm1/input?rootUri=file:///repo", LanguageID: "scminput"},
			settings: models.Settings{CompletionFormatSCM: &format},
		}

		// Act
		c := b.build(issue, nil)

		// Assert
		assert.Equal(t, "", c.InsertText)
	})
}
