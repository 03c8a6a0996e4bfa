package regex

import "regexp"

var (
	// Editor word definition, the same default used by most editors. '#' is a
	// separator, so "#12" yields the word "12".
	Word = regexp.MustCompile("(-?\\d*\\.\\d\\w*)|([^`~!@#$%^&*()\\-=+\\[{\\]}\\\\|;:'\",.<>/?\\s]+)")

	// Completion trigger patterns
	IssueTrigger    = regexp.MustCompile(`#[0-9]*$`)
	OwnerRepoPrefix = regexp.MustCompile(`([^\s/]+)/([^\s/]+)$`)
	SCMInputPath    = regexp.MustCompile(`git/scm\d/input`)

	// Template variables: ${name} and {name}
	TemplateVariable = regexp.MustCompile(`\$?\{(\w+)\}`)
	// Issue query variables only take the ${name} form
	QueryVariable = regexp.MustCompile(`\$\{(\w+)\}`)

	// Characters dropped when turning an issue title into a branch-safe slug
	UnsafeTitleChars = regexp.MustCompile(`[~^:;'".,#?%*&\[\]@\\{}()/]|//`)
	Whitespace       = regexp.MustCompile(`\s+`)

	// Git and Repo patterns
	SSHRepo   = regexp.MustCompile(`git@([^:]+):([^/]+)/(.+)\.git$`)
	HTTPSRepo = regexp.MustCompile(`https://([^/]+)/([^/]+)/(.+?)(?:\.git)?$`)

	// GitHub API repository URL, e.g. https://api.github.com/repos/owner/repo
	APIRepositoryURL = regexp.MustCompile(`/repos/([^/]+)/([^/]+)/?$`)
)
