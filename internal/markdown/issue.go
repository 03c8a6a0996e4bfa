package markdown

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
	"github.com/thomas-vilte/issuels/internal/vcs"
)

const (
	bodyLength = 200
	dateLayout = "Jan 2, 2006"
)

// IssueRenderer produces the hover-style markdown shown next to an issue
// completion.
type IssueRenderer struct {
	client vcs.IssueClient
}

// NewIssueRenderer returns a renderer. When client is not nil the issue is
// fetched again before rendering so the body and labels are current.
func NewIssueRenderer(client vcs.IssueClient) *IssueRenderer {
	return &IssueRenderer{client: client}
}

func (r *IssueRenderer) Render(ctx context.Context, issue models.Issue) (string, error) {
	issue = r.refresh(ctx, issue)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder

	ownerName := issue.Remote.FullName()
	fmt.Fprintf(&b, "[%s](%s)", ownerName, repositoryURL(issue))
	if !issue.CreatedAt.IsZero() {
		fmt.Fprintf(&b, " on %s", issue.CreatedAt.Format(dateLayout))
	}
	b.WriteString("  \n")

	title := PlainText(issue.Title)
	if issue.State != "" {
		fmt.Fprintf(&b, "`%s` ", strings.ToLower(issue.State))
	}
	fmt.Fprintf(&b, "**%s** [#%d](%s)  \n", escape(title), issue.Number, issue.URL)

	if body := truncate(PlainText(issue.Body), bodyLength); body != "" {
		b.WriteString("  \n")
		b.WriteString(body)
		b.WriteString("  \n")
	}

	if len(issue.Labels) > 0 {
		b.WriteString("&nbsp;  \n")
		labels := make([]string, len(issue.Labels))
		for i, l := range issue.Labels {
			labels[i] = "`" + l + "`"
		}
		b.WriteString(strings.Join(labels, " "))
		b.WriteString("  \n")
	}

	if issue.Milestone != nil {
		fmt.Fprintf(&b, "Milestone: %s  \n", escape(issue.Milestone.Title))
	}

	return b.String(), nil
}

// refresh fetches the latest copy of issue, keeping the snapshot on failure.
func (r *IssueRenderer) refresh(ctx context.Context, issue models.Issue) models.Issue {
	if r.client == nil || issue.Remote.Owner == "" || issue.Remote.RepositoryName == "" {
		return issue
	}
	fresh, err := r.client.GetIssue(ctx, issue.Remote.Owner, issue.Remote.RepositoryName, issue.Number)
	if err != nil {
		logger.Debug(ctx, "using cached issue for documentation", "issue", issue.Key(), "error", err)
		return issue
	}
	if fresh == nil {
		return issue
	}
	return *fresh
}

// repositoryURL derives the repository page from the issue URL so GitHub
// Enterprise hosts link correctly.
func repositoryURL(issue models.Issue) string {
	if idx := strings.LastIndex(issue.URL, "/issues/"); idx > 0 {
		return issue.URL[:idx]
	}
	return "https://github.com/" + issue.Remote.FullName()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"`", "\\`",
)

func escape(s string) string {
	return escaper.Replace(s)
}
