package lsp

import (
	"encoding/json"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thomas-vilte/issuels/internal/completion"
	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
)

// itemData travels in CompletionItem.Data so resolve can rebuild the candidate.
type itemData struct {
	Kind  string        `json:"kind"`
	Issue *models.Issue `json:"issue,omitempty"`
}

func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	ctx, cancel := s.requestContext("textDocument/completion")
	defer cancel()

	uri := string(params.TextDocument.URI)
	doc, ok := s.docs.get(uri)
	if !ok {
		logger.Debug(ctx, "completion for unknown document", "uri", uri, "error", domainErrors.ErrDocumentNotOpen)
		return nil, nil
	}

	req := completion.Request{
		Document:  doc,
		Position:  fromProtocolPosition(doc, params.Position),
		Trigger:   triggerKind(params.Context),
		Settings:  s.config.Load().Settings(),
		Workspace: s.workspace(),
	}

	candidates, err := s.provider.ProvideCompletions(ctx, req)
	if err != nil {
		logger.Error(ctx, "completion failed", err, "uri", uri)
		return nil, nil
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	items := make([]protocol.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, toCompletionItem(doc, c))
	}
	return &protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

func (s *Server) completionItemResolve(_ *glsp.Context, item *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	ctx, cancel := s.requestContext("completionItem/resolve")
	defer cancel()

	data, ok := decodeItemData(item.Data)
	if !ok || data.Issue == nil {
		return item, nil
	}

	resolved, err := s.provider.ResolveCompletion(ctx, models.Candidate{
		Kind:  models.CandidateIssue,
		Label: item.Label,
		Issue: data.Issue,
	})
	if err != nil {
		logger.Warn(ctx, "could not render issue documentation", "issue", data.Issue.Key(), "error", err)
		return item, nil
	}

	if resolved.DocumentationMarkdown {
		item.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: resolved.Documentation}
	}
	if resolved.Effect != nil {
		item.Command = toCommand(resolved.Effect)
	}
	return item, nil
}

func toCompletionItem(doc models.Document, c models.Candidate) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:      c.Label,
		SortText:   stringPtr(c.SortKey),
		FilterText: stringPtr(c.FilterText),
	}
	if c.Detail != "" {
		item.Detail = stringPtr(c.Detail)
	}

	switch c.Kind {
	case models.CandidateIssue:
		kind := protocol.CompletionItemKindReference
		item.Kind = &kind
		item.TextEdit = protocol.TextEdit{
			Range:   toProtocolRange(doc, c.Range),
			NewText: c.InsertText,
		}
		if c.Documentation != "" {
			format := protocol.MarkupKindPlainText
			if c.DocumentationMarkdown {
				format = protocol.MarkupKindMarkdown
			}
			item.Documentation = protocol.MarkupContent{Kind: format, Value: c.Documentation}
		}
		item.Data = itemData{Kind: c.Kind.String(), Issue: c.Issue}
	case models.CandidateConfigurePrompt:
		kind := protocol.CompletionItemKindText
		item.Kind = &kind
		item.InsertText = stringPtr(c.InsertText)
		item.Data = itemData{Kind: c.Kind.String()}
	}

	if c.Effect != nil {
		item.Command = toCommand(c.Effect)
	}
	return item
}

func toCommand(e *models.Effect) *protocol.Command {
	return &protocol.Command{
		Title:     e.Title,
		Command:   e.Command,
		Arguments: e.Arguments,
	}
}

// decodeItemData reads back itemData after it went through the client as
// generic JSON.
func decodeItemData(raw any) (itemData, bool) {
	var data itemData
	if raw == nil {
		return data, false
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return data, false
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return data, false
	}
	return data, true
}

func triggerKind(c *protocol.CompletionContext) models.TriggerKind {
	if c == nil {
		return models.TriggerInvoke
	}
	switch c.TriggerKind {
	case protocol.CompletionTriggerKindTriggerCharacter:
		return models.TriggerCharacter
	case protocol.CompletionTriggerKindTriggerForIncompleteCompletions:
		return models.TriggerForIncompleteCompletions
	default:
		return models.TriggerInvoke
	}
}

func stringPtr(s string) *string {
	return &s
}
