package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "emphasis", in: "Hello **world**", want: "Hello world"},
		{name: "heading and paragraph", in: "# Title\n\nSome `code` here", want: "Title\n\nSome code here"},
		{name: "link keeps its text", in: "See [docs](https://example.com)", want: "See docs"},
		{name: "list items on their own lines", in: "- a\n- b", want: "a\nb"},
		{name: "soft break becomes a space", in: "line one\nline two", want: "line one line two"},
		{name: "inline html dropped", in: "<b>hi</b>", want: "hi"},
		{name: "image dropped", in: "![alt](x.png) text", want: "text"},
		{name: "fenced code kept", in: "```go\nfmt.Println()\n```", want: "fmt.Println()"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
