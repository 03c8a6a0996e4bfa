package completion

import (
	"fmt"
	"strings"

	"github.com/thomas-vilte/issuels/internal/models"
	"github.com/thomas-vilte/issuels/internal/regex"
)

// maxSafeInteger is the largest integer a float64 represents exactly (2^53 - 1).
// Sort keys count down from it so fresher issues get smaller keys.
const (
	maxSafeInteger = 1<<53 - 1
	sortKeyWidth   = 15
)

// IssueNumberLabel returns "#N", qualified as "owner/repo#N" unless the issue
// belongs to the default repository. Absent defaults always qualify.
func IssueNumberLabel(issue models.Issue, defaults *models.RepositoryDefaults) string {
	if defaults != nil && issue.Remote.Matches(defaults.Owner, defaults.Repo) {
		return fmt.Sprintf("#%d", issue.Number)
	}
	if issue.Remote.Owner == "" || issue.Remote.RepositoryName == "" {
		return fmt.Sprintf("#%d", issue.Number)
	}
	return fmt.Sprintf("%s#%d", issue.Remote.FullName(), issue.Number)
}

// SortKey orders issues by recency: more recently updated issues get a
// lexicographically smaller key.
func SortKey(issue models.Issue) string {
	var ms int64
	if !issue.UpdatedAt.IsZero() {
		ms = issue.UpdatedAt.UnixMilli()
	}
	return fmt.Sprintf("%0*d", sortKeyWidth, int64(maxSafeInteger)-ms)
}

type candidateBuilder struct {
	defaults *models.RepositoryDefaults
	rng      models.Range
	doc      models.Document
	settings models.Settings
}

// build turns an issue into a candidate. A non-nil milestone overrides the
// issue's own milestone in the detail.
func (b candidateBuilder) build(issue models.Issue, milestone *models.Milestone) models.Candidate {
	c := models.Candidate{
		Kind:          models.CandidateIssue,
		Label:         fmt.Sprintf("%d: %s", issue.Number, issue.Title),
		InsertText:    b.insertText(issue),
		Documentation: issue.Body,
		Range:         b.rng,
		SortKey:       SortKey(issue),
	}

	if milestone != nil {
		c.Detail = milestone.Title
	} else {
		c.Detail = issue.MilestoneTitle()
	}
	c.FilterText = fmt.Sprintf("%s # %d %s %s", c.Detail, issue.Number, issue.Title, c.Documentation)

	issueCopy := issue
	c.Issue = &issueCopy
	return c
}

func (b candidateBuilder) insertText(issue models.Issue) string {
	label := IssueNumberLabel(issue, b.defaults)
	if b.doc.LanguageID == models.LanguageMarkdown {
		return fmt.Sprintf("[%s](%s)", label, issue.URL)
	}
	if b.settings.CompletionFormatSCM != nil && regex.SCMInputPath.MatchString(b.doc.Path()) {
		return substituteVariables(*b.settings.CompletionFormatSCM, issue, b.defaults)
	}
	return label
}

// configurePrompt is the placeholder offered when no query produced an issue.
func configurePrompt(label, detail, effectTitle, settingsLocation string) models.Candidate {
	return models.Candidate{
		Kind:       models.CandidateConfigurePrompt,
		Label:      label,
		Detail:     detail,
		InsertText: "",
		SortKey:    "~",
		FilterText: strings.TrimSpace(label),
		Effect: &models.Effect{
			Command:   CommandOpenSettings,
			Title:     effectTitle,
			Arguments: []any{settingsLocation, settingsQueriesSection},
		},
	}
}
