package models

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/thomas-vilte/issuels/internal/regex"
)

// Language identifiers with special meaning for issue completion.
const (
	LanguageMarkdown  = "markdown"
	LanguagePlainText = "plaintext"
	LanguageSCMInput  = "scminput"
	LanguageGitCommit = "git-commit"
)

// URI schemes with special meaning for issue completion.
const (
	SchemeComment  = "comment"
	SchemeNewIssue = "newIssue"
	SchemeFile     = "file"
)

// Position is a zero-based line and a zero-based character (rune) offset in that line.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Translate returns the position moved by delta characters on the same line,
// clamped at column 0.
func (p Position) Translate(delta int) Position {
	c := p.Character + delta
	if c < 0 {
		c = 0
	}
	return Position{Line: p.Line, Character: c}
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func NewRange(start, end Position) Range {
	return Range{Start: start, End: end}
}

// TriggerKind tells how the completion request was started.
type TriggerKind int

const (
	TriggerInvoke TriggerKind = iota + 1
	TriggerCharacter
	TriggerForIncompleteCompletions
)

// Document is a read-only snapshot of an editor buffer.
type Document struct {
	URI        string
	LanguageID string
	Text       string
}

// Scheme returns the URI scheme, or "" when the URI cannot be parsed.
func (d Document) Scheme() string {
	u, err := url.Parse(d.URI)
	if err != nil {
		return ""
	}
	return u.Scheme
}

// HasScheme compares the URI scheme ignoring case; url.Parse lowercases it.
func (d Document) HasScheme(scheme string) bool {
	return strings.EqualFold(d.Scheme(), scheme)
}

// Path returns the URI path component. Opaque URIs such as
// "vscode-scm:git/scm0/input" return their opaque part.
func (d Document) Path() string {
	u, err := url.Parse(d.URI)
	if err != nil {
		return ""
	}
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Path
}

// Query returns the raw URI query.
func (d Document) Query() string {
	u, err := url.Parse(d.URI)
	if err != nil {
		return ""
	}
	return u.RawQuery
}

// LineText returns the text of the given line without its line terminator.
func (d Document) LineText(line int) string {
	if line < 0 {
		return ""
	}
	rest := d.Text
	for i := 0; i < line; i++ {
		idx := strings.IndexByte(rest, '\n')
		if idx < 0 {
			return ""
		}
		rest = rest[idx+1:]
	}
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[:idx]
	}
	return strings.TrimSuffix(rest, "\r")
}

// TextInRange returns the text covered by a single-line or multi-line range.
func (d Document) TextInRange(r Range) string {
	if r.Start.Line == r.End.Line {
		line := []rune(d.LineText(r.Start.Line))
		start, end := clamp(r.Start.Character, len(line)), clamp(r.End.Character, len(line))
		if start >= end {
			return ""
		}
		return string(line[start:end])
	}

	var b strings.Builder
	for l := r.Start.Line; l <= r.End.Line; l++ {
		line := []rune(d.LineText(l))
		switch l {
		case r.Start.Line:
			b.WriteString(string(line[clamp(r.Start.Character, len(line)):]))
			b.WriteByte('\n')
		case r.End.Line:
			b.WriteString(string(line[:clamp(r.End.Character, len(line))]))
		default:
			b.WriteString(string(line))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// WordRangeAtPosition returns the range of the word containing or touching pos.
func (d Document) WordRangeAtPosition(pos Position) (Range, bool) {
	line := d.LineText(pos.Line)
	for _, loc := range regex.Word.FindAllStringIndex(line, -1) {
		start := utf8.RuneCountInString(line[:loc[0]])
		end := start + utf8.RuneCountInString(line[loc[0]:loc[1]])
		if start <= pos.Character && pos.Character <= end {
			return NewRange(
				Position{Line: pos.Line, Character: start},
				Position{Line: pos.Line, Character: end},
			), true
		}
	}
	return Range{}, false
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Workspace is the snapshot of editor state needed to resolve a document's root.
type Workspace struct {
	// Folders are the URIs of the open workspace folders.
	Folders []string
	// VisibleEditors are the URIs of documents currently shown to the user.
	VisibleEditors []string
}

// Settings is the per-request snapshot of user configuration.
type Settings struct {
	IgnoreCompletionTrigger []string
	// CompletionFormatSCM is the insertion template for source-control inputs.
	// nil means not configured; an empty string is a valid template.
	CompletionFormatSCM *string
	// SettingsLocation is handed to the open-settings effect.
	SettingsLocation string
}
