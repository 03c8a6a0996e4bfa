package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
	"github.com/thomas-vilte/issuels/internal/regex"
	"github.com/thomas-vilte/issuels/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.IssueClient = (*GitHubClient)(nil)

const maxPerPage = 100

type SearchService interface {
	Issues(ctx context.Context, query string, opts *github.SearchOptions) (*github.IssuesSearchResult, *github.Response, error)
}

type IssuesService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.Issue, *github.Response, error)
}

type UsersService interface {
	Get(ctx context.Context, user string) (*github.User, *github.Response, error)
}

type GitHubClient struct {
	searchService SearchService
	issuesService IssuesService
	usersService  UsersService
}

// NewGitHubClient builds a client for github.com, or for a GitHub Enterprise
// server when baseURL is set.
func NewGitHubClient(token, baseURL string) (*GitHubClient, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, domainErrors.ErrConfigInvalid.
				WithError(err).
				WithContext("base_url", baseURL)
		}
	}

	return NewGitHubClientWithServices(client.Search, client.Issues, client.Users), nil
}

func NewGitHubClientWithServices(searchService SearchService, issuesService IssuesService, usersService UsersService) *GitHubClient {
	return &GitHubClient{
		searchService: searchService,
		issuesService: issuesService,
		usersService:  usersService,
	}
}

func (ghc *GitHubClient) SearchIssues(ctx context.Context, query string, limit int) ([]models.Issue, error) {
	log := logger.FromContext(ctx)
	if limit <= 0 {
		limit = maxPerPage
	}
	log.Debug("searching github issues", "query", query, "limit", limit)

	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: min(limit, maxPerPage)},
	}

	var issues []models.Issue
	for {
		result, resp, err := ghc.searchService.Issues(ctx, query, opts)
		if err != nil {
			if appErr := statusError(resp, "search issues"); appErr != nil {
				return nil, appErr.WithError(err)
			}
			return nil, domainErrors.ErrSearchIssues.
				WithError(err).
				WithContext("query", query)
		}

		for _, ghIssue := range result.Issues {
			if ghIssue.IsPullRequest() {
				continue
			}
			issues = append(issues, toModelIssue(ghIssue))
			if len(issues) >= limit {
				break
			}
		}

		if len(issues) >= limit || resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("github issues found", "query", query, "issues", len(issues))
	return issues, nil
}

func (ghc *GitHubClient) GetIssue(ctx context.Context, owner, repo string, number int) (*models.Issue, error) {
	log := logger.FromContext(ctx)

	log.Debug("fetching github issue",
		"owner", owner,
		"repo", repo,
		"issue_number", number)

	ghIssue, resp, err := ghc.issuesService.Get(ctx, owner, repo, number)
	if err != nil {
		if appErr := statusError(resp, "get issue"); appErr != nil {
			return nil, appErr.WithError(err).WithContext("repo", fmt.Sprintf("%s/%s", owner, repo))
		}
		log.Error("failed to fetch github issue",
			"error", err,
			"owner", owner,
			"repo", repo,
			"issue_number", number)
		return nil, domainErrors.ErrGetIssue.
			WithError(err).
			WithContext("issue_number", number)
	}

	issue := toModelIssue(ghIssue)
	if issue.Remote.Owner == "" {
		issue.Remote = models.Remote{Owner: owner, RepositoryName: repo}
	}
	return &issue, nil
}

func (ghc *GitHubClient) GetAuthenticatedUser(ctx context.Context) (string, error) {
	user, resp, err := ghc.usersService.Get(ctx, "")
	if err != nil {
		if resp != nil && resp.Response != nil && resp.StatusCode == http.StatusUnauthorized {
			return "", domainErrors.ErrGitHubTokenInvalid.
				WithContext("operation", "get authenticated user")
		}
		return "", fmt.Errorf("error obtaining authenticated user: %w", err)
	}

	if user.Login == nil {
		return "", fmt.Errorf("authenticated user has no login")
	}

	return *user.Login, nil
}

// statusError maps well-known HTTP failures to domain errors, or returns nil.
func statusError(resp *github.Response, operation string) *domainErrors.AppError {
	if resp == nil || resp.Response == nil {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domainErrors.ErrGitHubTokenInvalid.WithContext("operation", operation)
	case http.StatusTooManyRequests:
		return domainErrors.ErrGitHubRateLimit.
			WithContext("retry_after", resp.Header.Get("Retry-After")).
			WithContext("operation", operation)
	case http.StatusForbidden:
		if resp.Rate.Remaining == 0 && !resp.Rate.Reset.IsZero() {
			return domainErrors.ErrGitHubRateLimit.
				WithContext("reset", resp.Rate.Reset.Time).
				WithContext("operation", operation)
		}
	case http.StatusNotFound:
		return domainErrors.ErrRepositoryNotFound.WithContext("operation", operation)
	}
	return nil
}

func toModelIssue(ghIssue *github.Issue) models.Issue {
	issue := models.Issue{
		Number:    ghIssue.GetNumber(),
		Title:     ghIssue.GetTitle(),
		Body:      ghIssue.GetBody(),
		URL:       ghIssue.GetHTMLURL(),
		State:     ghIssue.GetState(),
		Author:    ghIssue.GetUser().GetLogin(),
		CreatedAt: ghIssue.GetCreatedAt().Time,
		UpdatedAt: ghIssue.GetUpdatedAt().Time,
	}

	if m := regex.APIRepositoryURL.FindStringSubmatch(ghIssue.GetRepositoryURL()); m != nil {
		issue.Remote = models.Remote{Owner: m[1], RepositoryName: m[2]}
	}

	for _, label := range ghIssue.Labels {
		if label.Name != nil {
			issue.Labels = append(issue.Labels, label.GetName())
		}
	}
	for _, assignee := range ghIssue.Assignees {
		if login := assignee.GetLogin(); login != "" {
			issue.Assignees = append(issue.Assignees, login)
		}
	}
	if ghIssue.Milestone != nil {
		issue.Milestone = &models.Milestone{
			Number: ghIssue.Milestone.GetNumber(),
			Title:  ghIssue.Milestone.GetTitle(),
		}
	}

	return issue
}
