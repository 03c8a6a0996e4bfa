package models

// CandidateKind discriminates the variants of a completion candidate.
type CandidateKind int

const (
	CandidateIssue CandidateKind = iota
	CandidateConfigurePrompt
)

func (k CandidateKind) String() string {
	switch k {
	case CandidateIssue:
		return "issue"
	case CandidateConfigurePrompt:
		return "configurePrompt"
	default:
		return "unknown"
	}
}

// Effect describes a command the caller runs after the user accepts a
// candidate. The core never dispatches it.
type Effect struct {
	Command   string `json:"command"`
	Title     string `json:"title"`
	Arguments []any  `json:"arguments,omitempty"`
}

// Candidate is one display-ready completion entry.
type Candidate struct {
	Kind  CandidateKind
	Label string
	// InsertText is empty for the configure prompt.
	InsertText    string
	Documentation string
	// DocumentationMarkdown is set once the documentation has been rendered.
	DocumentationMarkdown bool
	Detail                string
	SortKey               string
	FilterText            string
	Range                 Range
	// Issue is set only for CandidateIssue.
	Issue  *Issue
	Effect *Effect
}
