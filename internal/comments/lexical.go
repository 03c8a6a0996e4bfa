package comments

import (
	"strings"

	"github.com/thomas-vilte/issuels/internal/models"
)

type blockMarker struct {
	open, close string
}

// commentSyntax is what the scanner needs to know about a language.
type commentSyntax struct {
	line    []string
	block   []blockMarker
	quotes  string
	escaped bool
}

var (
	cStyle = commentSyntax{
		line:    []string{"//"},
		block:   []blockMarker{{"/*", "*/"}},
		quotes:  `"'`,
		escaped: true,
	}
	hashStyle = commentSyntax{
		line:    []string{"#"},
		quotes:  `"'`,
		escaped: true,
	}
	dashStyle = commentSyntax{
		line:   []string{"--"},
		quotes: `'"`,
	}
	markupStyle = commentSyntax{
		block: []blockMarker{{"<!--", "-->"}},
	}
)

var lexicalSyntaxes = map[string]commentSyntax{
	"c":               cStyle,
	"cpp":             cStyle,
	"csharp":          cStyle,
	"java":            cStyle,
	"kotlin":          cStyle,
	"scala":           cStyle,
	"swift":           cStyle,
	"dart":            cStyle,
	"groovy":          cStyle,
	"objective-c":     cStyle,
	"php":             {line: []string{"//", "#"}, block: cStyle.block, quotes: `"'`, escaped: true},
	"jsonc":           cStyle,
	"scss":            cStyle,
	"less":            cStyle,
	"css":             {block: cStyle.block, quotes: `"'`, escaped: true},
	"typescriptreact": {line: cStyle.line, block: cStyle.block, quotes: "\"'`", escaped: true},
	"go":              {line: cStyle.line, block: cStyle.block, quotes: "\"'`", escaped: true},
	"javascript":      {line: cStyle.line, block: cStyle.block, quotes: "\"'`", escaped: true},
	"javascriptreact": {line: cStyle.line, block: cStyle.block, quotes: "\"'`", escaped: true},
	"typescript":      {line: cStyle.line, block: cStyle.block, quotes: "\"'`", escaped: true},
	"rust":            {line: cStyle.line, block: cStyle.block, quotes: `"`, escaped: true},
	"python":          hashStyle,
	"shellscript":     hashStyle,
	"ruby":            hashStyle,
	"perl":            hashStyle,
	"r":               hashStyle,
	"yaml":            hashStyle,
	"toml":            hashStyle,
	"dockerfile":      hashStyle,
	"makefile":        hashStyle,
	"elixir":          hashStyle,
	"coffeescript":    hashStyle,
	"julia":           hashStyle,
	"powershell":      {line: []string{"#"}, block: []blockMarker{{"<#", "#>"}}, quotes: `"'`},
	"ini":             {line: []string{";", "#"}},
	"sql":             {line: dashStyle.line, block: cStyle.block, quotes: dashStyle.quotes},
	"lua":             {line: dashStyle.line, block: []blockMarker{{"--[[", "]]"}}, quotes: `"'`, escaped: true},
	"haskell":         {line: dashStyle.line, block: []blockMarker{{"{-", "-}"}}, quotes: `"`, escaped: true},
	"latex":           {line: []string{"%"}},
	"erlang":          {line: []string{"%"}, quotes: `"`, escaped: true},
	"html":            markupStyle,
	"xml":             markupStyle,
	"vue":             {line: cStyle.line, block: append([]blockMarker{{"<!--", "-->"}}, cStyle.block...), quotes: "\"'`", escaped: true},
}

func lexicalSyntax(languageID string) (commentSyntax, bool) {
	s, ok := lexicalSyntaxes[languageID]
	return s, ok
}

// scanInsideComment walks the text up to the character before pos and
// reports whether that character belongs to a comment. Strings are skipped
// so comment markers inside them do not count.
func scanInsideComment(doc models.Document, pos models.Position, syntax commentSyntax) bool {
	if pos.Character == 0 {
		return false
	}
	target := offsetOf(doc.Text, models.Position{Line: pos.Line, Character: pos.Character - 1})
	text := doc.Text

	var (
		inLine  bool
		inBlock *blockMarker
		quote   byte
	)
	for i := 0; i <= target && i < len(text); {
		rest := text[i:]
		switch {
		case inLine:
			if text[i] == '\n' {
				inLine = false
			}
			i++
		case inBlock != nil:
			if strings.HasPrefix(rest, inBlock.close) {
				i += len(inBlock.close)
				if i > target {
					return true
				}
				inBlock = nil
				continue
			}
			i++
		case quote != 0:
			switch {
			case syntax.escaped && text[i] == '\\':
				i += 2
			case text[i] == quote || text[i] == '\n' && quote != '`':
				quote = 0
				i++
			default:
				i++
			}
		default:
			if b, ok := matchBlock(rest, syntax.block); ok {
				inBlock = &b
				i += len(b.open)
				continue
			}
			if hasAnyPrefix(rest, syntax.line) {
				inLine = true
				i++
				continue
			}
			if strings.IndexByte(syntax.quotes, text[i]) >= 0 {
				quote = text[i]
			}
			i++
		}
	}
	return inLine || inBlock != nil
}

func matchBlock(s string, blocks []blockMarker) (blockMarker, bool) {
	for _, b := range blocks {
		if strings.HasPrefix(s, b.open) {
			return b, true
		}
	}
	return blockMarker{}, false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// offsetOf converts a line and rune column to a byte offset in text.
func offsetOf(text string, pos models.Position) int {
	offset := 0
	for line := 0; line < pos.Line; line++ {
		idx := strings.IndexByte(text[offset:], '\n')
		if idx < 0 {
			return len(text)
		}
		offset += idx + 1
	}
	col := 0
	for i, r := range text[offset:] {
		if col == pos.Character || r == '\n' {
			return offset + i
		}
		col++
	}
	return len(text)
}
