package completion

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
)

const rootURIParam = "rootUri"

// resolveRoot returns the URI whose repository and issue collection apply to
// doc, or "" when none can be determined.
func resolveRoot(ctx context.Context, doc models.Document, ws models.Workspace) string {
	switch {
	case doc.LanguageID == models.LanguageSCMInput:
		return scmInputRoot(doc)
	case doc.HasScheme(models.SchemeComment):
		if len(ws.Folders) == 0 {
			return ""
		}
		for _, editor := range ws.VisibleEditors {
			if folder := FolderFor(ws.Folders, editor); folder != "" {
				return folder
			}
		}
		return ""
	case doc.HasScheme(models.SchemeNewIssue):
		if origin := newIssueOrigin(ctx, doc); origin != "" {
			return origin
		}
		return doc.URI
	default:
		return doc.URI
	}
}

func scmInputRoot(doc models.Document) string {
	values, err := url.ParseQuery(doc.Query())
	if err != nil {
		return ""
	}
	return values.Get(rootURIParam)
}

func newIssueOrigin(ctx context.Context, doc models.Document) string {
	query, err := url.QueryUnescape(doc.Query())
	if err != nil || query == "" {
		return ""
	}
	var params struct {
		OriginURI string `json:"originUri"`
	}
	if err := json.Unmarshal([]byte(query), &params); err != nil {
		logger.Debug(ctx, "malformed new issue uri", "uri", doc.URI, "error", err)
		return ""
	}
	return params.OriginURI
}

// FolderFor returns the workspace folder that contains uri, preferring the
// deepest match, or "" when no folder does.
func FolderFor(folders []string, uri string) string {
	path := uriPath(uri)
	if path == "" {
		return ""
	}
	var best string
	bestLen := -1
	for _, folder := range folders {
		fp := strings.TrimSuffix(uriPath(folder), "/")
		if fp == "" {
			continue
		}
		if path != fp && !strings.HasPrefix(path, fp+"/") {
			continue
		}
		if len(fp) > bestLen {
			best, bestLen = folder, len(fp)
		}
	}
	return best
}

func uriPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Path
}
