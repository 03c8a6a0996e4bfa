package completion

import (
	"context"
	"slices"
	"strings"

	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
	"github.com/thomas-vilte/issuels/internal/regex"
)

const (
	triggerChar = "#"

	// Markdown headings go up to six '#'.
	maxHeadingLevel = 6

	// Shortest "o/r" that can precede a '#'.
	minOwnerRepoLength = 3
)

// Request is everything a completion request needs. Settings and Workspace
// are snapshots taken by the caller when the request starts.
type Request struct {
	Document  models.Document
	Position  models.Position
	Trigger   models.TriggerKind
	Settings  models.Settings
	Workspace models.Workspace
}

// OwnerRepoFilter restricts candidates to one repository.
type OwnerRepoFilter struct {
	Owner string
	Repo  string
}

func (f OwnerRepoFilter) Matches(issue models.Issue) bool {
	return issue.Remote.Matches(f.Owner, f.Repo)
}

// Trigger is the outcome of an accepted detection.
type Trigger struct {
	// Range is the text the inserted candidate replaces.
	Range  models.Range
	Filter *OwnerRepoFilter
}

// TriggerDetector decides whether a completion request should proceed.
type TriggerDetector struct {
	comments CommentDetector
}

func NewTriggerDetector(comments CommentDetector) *TriggerDetector {
	return &TriggerDetector{comments: comments}
}

// Detect returns the replacement range and optional owner/repo filter, or
// false when completion must not be offered at this position.
func (d *TriggerDetector) Detect(ctx context.Context, req Request) (Trigger, bool) {
	doc, pos := req.Document, req.Position
	lang := doc.LanguageID
	commitInput := lang == models.LanguageSCMInput
	commitMessage := lang == models.LanguageGitCommit
	commentScheme := doc.HasScheme(models.SchemeComment)

	wordRange, hasWord := doc.WordRangeAtPosition(pos)
	var word string
	if hasWord {
		word = doc.TextInRange(wordRange)
	}
	if !hasWord || !strings.HasPrefix(word, triggerChar) {
		start := pos
		if hasWord {
			start = wordRange.Start
		}
		testRange := models.NewRange(start.Translate(-1), pos)
		if testWord := doc.TextInRange(testRange); strings.HasPrefix(testWord, triggerChar) {
			wordRange, word, hasWord = testRange, testWord, true
		}
	}

	// A manual "trigger suggest" must still be sitting on something like "#12".
	if !commitInput && !commentScheme && pos.Character > 0 &&
		req.Trigger == models.TriggerInvoke && !regex.IssueTrigger.MatchString(word) {
		return suppress(ctx, "invoked outside an issue reference")
	}

	if pos.Character <= maxHeadingLevel && lang == models.LanguageMarkdown && !commentScheme &&
		req.Trigger == models.TriggerCharacter {
		lineStart := models.Position{Line: pos.Line}
		if doc.TextInRange(models.NewRange(lineStart, pos)) == strings.Repeat(triggerChar, pos.Character) {
			return suppress(ctx, "markdown heading")
		}
	}

	if req.Trigger == models.TriggerCharacter && slices.Contains(req.Settings.IgnoreCompletionTrigger, lang) {
		return suppress(ctx, "language ignores trigger character")
	}

	if !commitInput && !commitMessage {
		inComment, err := d.comments.IsInsideComment(ctx, doc, pos)
		if err != nil {
			logger.Debug(ctx, "comment detection failed", "error", err)
		}
		if ctx.Err() != nil {
			return Trigger{}, false
		}
		if !inComment {
			return suppress(ctx, "outside comment")
		}
	}

	rng := models.NewRange(pos, pos)
	if pos.Character > 0 && hasWord && (strings.HasPrefix(word, triggerChar) || commitInput || commitMessage) {
		rng = wordRange
	}

	var filter *OwnerRepoFilter
	if word == triggerChar && wordRange.Start.Character >= minOwnerRepoLength {
		prefix := doc.TextInRange(models.NewRange(models.Position{Line: wordRange.Start.Line}, wordRange.Start))
		if m := regex.OwnerRepoPrefix.FindStringSubmatch(prefix); m != nil {
			filter = &OwnerRepoFilter{Owner: m[1], Repo: m[2]}
		}
	}

	return Trigger{Range: rng, Filter: filter}, true
}

func suppress(ctx context.Context, reason string) (Trigger, bool) {
	logger.Debug(ctx, "completion suppressed", "reason", reason)
	return Trigger{}, false
}
