package comments

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/models"
)

var grammars = map[string]func() *sitter.Language{
	"go":              golang.GetLanguage,
	"python":          python.GetLanguage,
	"javascript":      javascript.GetLanguage,
	"javascriptreact": javascript.GetLanguage,
	"typescript":      typescript.GetLanguage,
	"rust":            rust.GetLanguage,
}

// SyntaxDetector parses documents with tree-sitter. A parser is not safe for
// concurrent use, so each language has its own behind a mutex.
type SyntaxDetector struct {
	mu      sync.Mutex
	parsers map[string]*sitter.Parser
}

func NewSyntaxDetector() *SyntaxDetector {
	return &SyntaxDetector{parsers: make(map[string]*sitter.Parser)}
}

func (d *SyntaxDetector) Supports(languageID string) bool {
	_, ok := grammars[languageID]
	return ok
}

func (d *SyntaxDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for lang, p := range d.parsers {
		p.Close()
		delete(d.parsers, lang)
	}
}

// IsInsideComment checks the character just before pos, where the trigger
// was typed.
func (d *SyntaxDetector) IsInsideComment(ctx context.Context, doc models.Document, pos models.Position) (bool, error) {
	grammar, ok := grammars[doc.LanguageID]
	if !ok {
		return false, domainErrors.ErrUnsupportedLanguage.WithContext("language", doc.LanguageID)
	}

	content := []byte(doc.Text)
	point, ok := bytePoint(doc, pos)
	if !ok {
		return false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	parser, ok := d.parsers[doc.LanguageID]
	if !ok {
		parser = sitter.NewParser()
		parser.SetLanguage(grammar())
		d.parsers[doc.LanguageID] = parser
	}

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return false, err
	}
	defer tree.Close()

	for n := tree.RootNode().DescendantForPointRange(point, point); n != nil; n = n.Parent() {
		if strings.Contains(n.Type(), "comment") {
			return true, nil
		}
	}
	return false, nil
}

// bytePoint converts the rune column before pos to a tree-sitter point.
func bytePoint(doc models.Document, pos models.Position) (sitter.Point, bool) {
	if pos.Character == 0 {
		return sitter.Point{}, false
	}
	line := []rune(doc.LineText(pos.Line))
	col := min(pos.Character-1, len(line))
	return sitter.Point{
		Row:    uint32(pos.Line),
		Column: uint32(len(string(line[:col]))),
	}, true
}
