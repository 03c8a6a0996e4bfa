package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var parser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// PlainText strips markdown formatting from src, keeping the readable text.
// Blocks are separated by a blank line.
func PlainText(src string) string {
	source := []byte(src)
	doc := parser.Parse(text.NewReader(source))

	var out bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.NextSibling() != nil {
				out.WriteString(blockSeparator(n))
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			out.Write(node.Segment.Value(source))
			if node.HardLineBreak() {
				out.WriteByte('\n')
			} else if node.SoftLineBreak() {
				out.WriteByte(' ')
			}
		case *ast.String:
			out.Write(node.Value)
		case *ast.AutoLink:
			out.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				out.Write(seg.Value(source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(out.String())
}

func blockSeparator(n ast.Node) string {
	switch n.Kind() {
	case extast.KindTableCell:
		return " "
	case ast.KindListItem, extast.KindTableRow, extast.KindTableHeader:
		return "\n"
	case ast.KindTextBlock:
		return ""
	}
	return "\n\n"
}
