package comments

import (
	"context"

	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
)

// Detector decides whether a position is inside a comment. Languages with a
// tree-sitter grammar are parsed; the rest are scanned lexically.
type Detector struct {
	syntax *SyntaxDetector
}

func NewDetector() *Detector {
	return &Detector{syntax: NewSyntaxDetector()}
}

func (d *Detector) Close() {
	d.syntax.Close()
}

// IsInsideComment reports whether pos sits inside a comment of doc. Markdown
// and plain text count as comments everywhere.
func (d *Detector) IsInsideComment(ctx context.Context, doc models.Document, pos models.Position) (bool, error) {
	switch doc.LanguageID {
	case models.LanguageMarkdown, models.LanguagePlainText:
		return true, nil
	}

	if d.syntax.Supports(doc.LanguageID) {
		inside, err := d.syntax.IsInsideComment(ctx, doc, pos)
		if err == nil {
			return inside, nil
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		logger.Debug(ctx, "syntax comment detection failed, scanning instead",
			"language", doc.LanguageID, "error", err)
	}

	syntax, ok := lexicalSyntax(doc.LanguageID)
	if !ok {
		return false, domainErrors.ErrUnsupportedLanguage.WithContext("language", doc.LanguageID)
	}
	return scanInsideComment(doc, pos, syntax), nil
}
