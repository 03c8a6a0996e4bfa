package completion

import (
	"strconv"
	"strings"
	"time"

	"github.com/thomas-vilte/issuels/internal/models"
	"github.com/thomas-vilte/issuels/internal/regex"
)

const maxSanitizedTitleLength = 150

// substituteVariables expands ${name} and {name} references in template.
// Unknown names are left untouched.
func substituteVariables(template string, issue models.Issue, defaults *models.RepositoryDefaults) string {
	owner, repo := issue.Remote.Owner, issue.Remote.RepositoryName
	if defaults != nil {
		if owner == "" {
			owner = defaults.Owner
		}
		if repo == "" {
			repo = defaults.Repo
		}
	}

	return regex.TemplateVariable.ReplaceAllStringFunc(template, func(match string) string {
		name := regex.TemplateVariable.FindStringSubmatch(match)[1]
		switch name {
		case "user":
			if defaults != nil && defaults.User != "" {
				return defaults.User
			}
			return match
		case "issueNumber", "number":
			return strconv.Itoa(issue.Number)
		case "issueNumberLabel":
			return IssueNumberLabel(issue, defaults)
		case "issueTitle", "title":
			return issue.Title
		case "url":
			return issue.URL
		case "repository", "repo":
			return repo
		case "owner":
			return owner
		case "assignees":
			return strings.Join(issue.Assignees, ", ")
		case "sanitizedIssueTitle":
			return sanitizeIssueTitle(issue.Title)
		case "sanitizedLowercaseIssueTitle":
			return strings.ToLower(sanitizeIssueTitle(issue.Title))
		case "today":
			return time.Now().Format(time.DateOnly)
		default:
			return match
		}
	})
}

// sanitizeIssueTitle makes a title safe for branch names: characters git
// rejects are dropped and whitespace runs become a single '-'.
func sanitizeIssueTitle(title string) string {
	s := regex.UnsafeTitleChars.ReplaceAllString(strings.TrimSpace(title), "")
	s = regex.Whitespace.ReplaceAllString(s, "-")
	if r := []rune(s); len(r) > maxSanitizedTitleLength {
		s = string(r[:maxSanitizedTitleLength])
	}
	return s
}
