package providers

import (
	"context"

	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/vcs"
	"github.com/thomas-vilte/issuels/internal/vcs/github"
)

// NewIssueClient creates the GitHub client described by the configuration.
// Without a token the client still works against public repositories, with
// GitHub's anonymous rate limit.
func NewIssueClient(ctx context.Context, cfg *config.Config) (vcs.IssueClient, error) {
	token := cfg.Token()
	if token == "" {
		logger.Warn(ctx, "no GitHub token configured, issue queries run anonymously")
	}
	return github.NewGitHubClient(token, cfg.GitHub.BaseURL)
}
