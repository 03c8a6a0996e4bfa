package models

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Remote identifies the repository an issue lives in.
type Remote struct {
	Owner          string `json:"owner"`
	RepositoryName string `json:"repository_name"`
}

// FullName returns "owner/repo".
func (r Remote) FullName() string {
	return r.Owner + "/" + r.RepositoryName
}

// Matches compares two remotes ignoring case, the way GitHub does.
func (r Remote) Matches(owner, repo string) bool {
	return strings.EqualFold(r.Owner, owner) && strings.EqualFold(r.RepositoryName, repo)
}

type Milestone struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// Issue is an immutable snapshot of an issue as returned by the issue source.
type Issue struct {
	Number    int        `json:"number"`
	Remote    Remote     `json:"remote"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	URL       string     `json:"html_url"`
	State     string     `json:"state"`
	Author    string     `json:"author"`
	Labels    []string   `json:"labels,omitempty"`
	Assignees []string   `json:"assignees,omitempty"`
	Milestone *Milestone `json:"milestone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Key is the stable identity of an issue across query results.
func (i Issue) Key() string {
	return fmt.Sprintf("%s#%d", strings.ToLower(i.Remote.FullName()), i.Number)
}

// MilestoneTitle returns the milestone title or "" when the issue has none.
func (i Issue) MilestoneTitle() string {
	if i.Milestone == nil {
		return ""
	}
	return i.Milestone.Title
}

// IssueQueryResult is what a named issue query resolves to. Only one of
// Issues or Milestones is populated.
type IssueQueryResult struct {
	Issues     []Issue     `json:"issues,omitempty"`
	Milestones []Milestone `json:"milestones,omitempty"`
}

// RepositoryDefaults is the owner/repo pair considered local for a workspace
// folder, plus the login of the authenticated user when known.
type RepositoryDefaults struct {
	Owner string
	Repo  string
	User  string
}

// PendingResult is an issue query that may still be running.
type PendingResult interface {
	Await(ctx context.Context) (IssueQueryResult, error)
}

// QueryEntry pairs a query name with its pending result.
type QueryEntry struct {
	Name   string
	Result PendingResult
}
