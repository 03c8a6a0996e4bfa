package completion

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomas-vilte/issuels/internal/models"
)

func TestResolveRoot(t *testing.T) {
	ws := models.Workspace{
		Folders:        []string{"file:///work/api", "file:///work/web"},
		VisibleEditors: []string{"file:///tmp/scratch.txt", "file:///work/web/src/app.ts"},
	}
	origin := url.QueryEscape(`{"originUri":"file:///work/api/main.go"}`)

	tests := []struct {
		name string
		doc  models.Document
		ws   models.Workspace
		want string
	}{
		{
			name: "commit input uses the bound root",
			doc:  models.Document{URI: "vscode-scm:git/scm0/input?rootUri=file%3A%2F%2F%2Fwork%2Fapi", LanguageID: models.LanguageSCMInput},
			want: "file:///work/api",
		},
		{
			name: "commit input without root",
			doc:  models.Document{URI: "vscode-scm:git/scm0/input", LanguageID: models.LanguageSCMInput},
			want: "",
		},
		{
			name: "comment resolves through visible editors",
			doc:  models.Document{URI: "comment://thread/12", LanguageID: models.LanguageMarkdown},
			ws:   ws,
			want: "file:///work/web",
		},
		{
			name: "comment without workspace folders",
			doc:  models.Document{URI: "comment://thread/12", LanguageID: models.LanguageMarkdown},
			ws:   models.Workspace{VisibleEditors: ws.VisibleEditors},
			want: "",
		},
		{
			name: "new issue redirects to its origin",
			doc:  models.Document{URI: "newIssue:/NewIssue.md?" + origin, LanguageID: models.LanguageMarkdown},
			want: "file:///work/api/main.go",
		},
		{
			name: "new issue without origin keeps its own uri",
			doc:  models.Document{URI: "newIssue:/NewIssue.md", LanguageID: models.LanguageMarkdown},
			want: "newIssue:/NewIssue.md",
		},
		{
			name: "regular file",
			doc:  models.Document{URI: "file:///work/api/main.go", LanguageID: "go"},
			want: "file:///work/api/main.go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRoot(context.Background(), tt.doc, tt.ws))
		})
	}
}

func TestFolderFor(t *testing.T) {
	folders := []string{"file:///work", "file:///work/api/", "file:///work/apiv2"}

	assert.Equal(t, "file:///work/api/", FolderFor(folders, "file:///work/api/cmd/main.go"))
	assert.Equal(t, "file:///work/apiv2", FolderFor(folders, "file:///work/apiv2/go.mod"))
	assert.Equal(t, "file:///work", FolderFor(folders, "file:///work/README.md"))
	assert.Equal(t, "file:///work", FolderFor(folders, "file:///work"))
	assert.Equal(t, "", FolderFor(folders, "file:///elsewhere/x.go"))
	assert.Equal(t, "", FolderFor(nil, "file:///work/x.go"))
}
