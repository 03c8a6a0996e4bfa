package completion

import (
	"context"

	"github.com/thomas-vilte/issuels/internal/models"
)

// CommentDetector reports whether a position lies inside a source comment.
type CommentDetector interface {
	IsInsideComment(ctx context.Context, doc models.Document, pos models.Position) (bool, error)
}

// RepositoryManager owns one repository checkout.
type RepositoryManager interface {
	RootURI() string
	DefaultRepositoryContext(ctx context.Context) (*models.RepositoryDefaults, error)
}

// RepositoryResolver finds the repository manager responsible for a URI.
// A nil manager with a nil error means no repository owns the URI.
type RepositoryResolver interface {
	ManagerForURI(uri string) (RepositoryManager, error)
}

// IssueCollectionSource supplies the issue queries configured for a root,
// in display order.
type IssueCollectionSource interface {
	CollectionFor(ctx context.Context, rootURI string) []models.QueryEntry
}

// MarkdownRenderer renders the full documentation of an issue.
type MarkdownRenderer interface {
	Render(ctx context.Context, issue models.Issue) (string, error)
}
