package vcs

import (
	"context"

	"github.com/thomas-vilte/issuels/internal/models"
)

// IssueClient reads issues from a hosting provider.
type IssueClient interface {
	// SearchIssues runs a provider search query and returns at most limit
	// issues. Pull requests are left out.
	SearchIssues(ctx context.Context, query string, limit int) ([]models.Issue, error)
	// GetIssue gets a single issue of owner/repo by its number
	GetIssue(ctx context.Context, owner, repo string, number int) (*models.Issue, error)
	// GetAuthenticatedUser gets the login of the token owner
	GetAuthenticatedUser(ctx context.Context) (string, error)
}
