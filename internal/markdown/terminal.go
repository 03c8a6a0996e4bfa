package markdown

import (
	"context"

	"github.com/charmbracelet/glamour"

	"github.com/thomas-vilte/issuels/internal/completion"
	"github.com/thomas-vilte/issuels/internal/models"
)

const defaultWrap = 80

// TerminalRenderer renders issue documentation as ANSI text for a terminal.
type TerminalRenderer struct {
	source completion.MarkdownRenderer
	wrap   int
	style  string
}

type TerminalOption func(*TerminalRenderer)

// WithWordWrap sets the wrap column. Values <= 0 keep the default.
func WithWordWrap(width int) TerminalOption {
	return func(r *TerminalRenderer) {
		if width > 0 {
			r.wrap = width
		}
	}
}

// WithStyle forces a glamour style such as "dark", "light" or "notty".
func WithStyle(style string) TerminalOption {
	return func(r *TerminalRenderer) {
		r.style = style
	}
}

func NewTerminalRenderer(source completion.MarkdownRenderer, opts ...TerminalOption) *TerminalRenderer {
	r := &TerminalRenderer{source: source, wrap: defaultWrap}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the styled documentation. If styling fails the raw
// markdown is returned.
func (r *TerminalRenderer) Render(ctx context.Context, issue models.Issue) (string, error) {
	md, err := r.source.Render(ctx, issue)
	if err != nil {
		return "", err
	}

	styleOpt := glamour.WithAutoStyle()
	if r.style != "" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(r.wrap))
	if err != nil {
		return md, nil
	}
	out, err := tr.Render(md)
	if err != nil {
		return md, nil
	}
	return out, nil
}
