package complete

import (
	"path/filepath"
	"strings"

	"github.com/thomas-vilte/issuels/internal/models"
)

var extensionLanguages = map[string]string{
	".c":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".cs":    "csharp",
	".css":   "css",
	".go":    "go",
	".h":     "c",
	".hpp":   "cpp",
	".html":  "html",
	".java":  "java",
	".js":    "javascript",
	".jsx":   "javascriptreact",
	".kt":    "kotlin",
	".lua":   "lua",
	".md":    models.LanguageMarkdown,
	".php":   "php",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".scala": "scala",
	".sh":    "shellscript",
	".sql":   "sql",
	".swift": "swift",
	".toml":  "toml",
	".ts":    "typescript",
	".tsx":   "typescriptreact",
	".txt":   models.LanguagePlainText,
	".yaml":  "yaml",
	".yml":   "yaml",
}

var fileNameLanguages = map[string]string{
	"COMMIT_EDITMSG": models.LanguageGitCommit,
	"MERGE_MSG":      models.LanguageGitCommit,
	"Dockerfile":     "dockerfile",
	"Makefile":       "makefile",
}

// detectLanguage guesses the editor language identifier of path.
func detectLanguage(path string) string {
	base := filepath.Base(path)
	if lang, ok := fileNameLanguages[base]; ok {
		return lang
	}
	if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(base))]; ok {
		return lang
	}
	return models.LanguagePlainText
}
