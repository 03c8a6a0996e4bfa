package comments

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/models"
)

// at returns the document and the position right after the first '#' that
// follows marker.
func at(t *testing.T, language, text, marker string) (models.Document, models.Position) {
	t.Helper()
	start := strings.Index(text, marker)
	require.GreaterOrEqual(t, start, 0, "marker %q not found", marker)
	hash := start + strings.Index(text[start:], "#")
	before := text[:hash+1]
	line := strings.Count(before, "\n")
	col := len([]rune(before[strings.LastIndex(before, "\n")+1:]))
	return models.Document{URI: "file:///repo/x", LanguageID: language, Text: text}, models.Position{Line: line, Character: col}
}

func TestDetector_IsInsideComment(t *testing.T) {
	goSource := "package main\n\n// Fixes #\nfunc main() {\n\ts := \"see #\"\n\t/* block #\n\t   still #12 */\n\t_ = s // tail #\n}\n"
	pySource := "def f():\n    # todo #\n    return \"#\"\n"
	jsSource := "const a = `tpl #`;\n// done #\n/** docs\n * ref #\n */\n"
	rustSource := "fn main() {\n    let s = \"#\";\n    // see #\n}\n"
	tsSource := "let n: number = 1; // n #\nconst s = '#';\n"

	tests := []struct {
		name     string
		language string
		text     string
		marker   string
		want     bool
	}{
		{"go line comment", "go", goSource, "Fixes", true},
		{"go string", "go", goSource, "see", false},
		{"go block comment first line", "go", goSource, "block", true},
		{"go block comment continued", "go", goSource, "still", true},
		{"go trailing comment", "go", goSource, "tail", true},
		{"python comment", "python", pySource, "todo", true},
		{"python string", "python", pySource, "return", false},
		{"javascript template literal", "javascript", jsSource, "tpl", false},
		{"javascript line comment", "javascript", jsSource, "done", true},
		{"javascript doc comment", "javascript", jsSource, "ref", true},
		{"rust string", "rust", rustSource, "let", false},
		{"rust line comment", "rust", rustSource, "see", true},
		{"typescript comment", "typescript", tsSource, "// n", true},
		{"typescript string", "typescript", tsSource, "const s", false},
		{"java scanned comment", "java", "class A {\n  // see #\n  String s = \"#\";\n}\n", "see", true},
		{"java scanned string", "java", "class A {\n  String s = \"x#\";\n}\n", "String", false},
		{"shell comment", "shellscript", "echo '#' # note #\n", "note", true},
		{"shell quoted", "shellscript", "echo '#' # note #\n", "echo", false},
		{"sql comment", "sql", "SELECT 1; -- ticket #\n", "ticket", true},
		{"html comment", "html", "<p>#</p>\n<!-- fix #\n-->\n", "fix", true},
		{"html text", "html", "<p>#</p>\n<!-- fix #\n-->\n", "<p>", false},
		{"tsx scanned comment", "typescriptreact", "const el = <div/>; // ok #\n", "ok", true},
	}

	detector := NewDetector()
	defer detector.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			doc, pos := at(t, tt.language, tt.text, tt.marker)

			// Act
			got, err := detector.IsInsideComment(context.Background(), doc, pos)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetector_IsInsideComment_Prose(t *testing.T) {
	detector := NewDetector()
	defer detector.Close()

	for _, language := range []string{models.LanguageMarkdown, models.LanguagePlainText} {
		doc := models.Document{URI: "file:///repo/README", LanguageID: language, Text: "anything #"}
		got, err := detector.IsInsideComment(context.Background(), doc, models.Position{Character: 10})
		require.NoError(t, err)
		assert.True(t, got, language)
	}
}

func TestDetector_IsInsideComment_Unsupported(t *testing.T) {
	detector := NewDetector()
	defer detector.Close()
	doc := models.Document{URI: "file:///repo/x.zz", LanguageID: "zz", Text: "#"}

	got, err := detector.IsInsideComment(context.Background(), doc, models.Position{Character: 1})

	assert.ErrorIs(t, err, domainErrors.ErrUnsupportedLanguage)
	assert.False(t, got)
}

func TestOffsetOf(t *testing.T) {
	text := "añb\ncd\n"
	assert.Equal(t, 0, offsetOf(text, models.Position{Line: 0, Character: 0}))
	assert.Equal(t, 3, offsetOf(text, models.Position{Line: 0, Character: 2}))
	assert.Equal(t, 4, offsetOf(text, models.Position{Line: 0, Character: 9}))
	assert.Equal(t, 6, offsetOf(text, models.Position{Line: 1, Character: 1}))
	assert.Equal(t, len(text), offsetOf(text, models.Position{Line: 5, Character: 0}))
}
