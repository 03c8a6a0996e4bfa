package lsp

import (
	"slices"
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thomas-vilte/issuels/internal/models"
)

type document struct {
	languageID string
	version    protocol.Integer
	text       string
}

// documentStore holds the text of every open document.
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]*document)}
}

func (s *documentStore) open(item protocol.TextDocumentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[string(item.URI)] = &document{
		languageID: item.LanguageID,
		version:    item.Version,
		text:       item.Text,
	}
}

// change applies content changes in order. Changes without a range replace
// the whole text.
func (s *documentStore) change(uri string, version protocol.Integer, changes []any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		return false
	}
	for _, c := range changes {
		switch change := c.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			doc.text = change.Text
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				doc.text = change.Text
				continue
			}
			doc.text = applyEdit(doc.text, *change.Range, change.Text)
		}
	}
	doc.version = version
	return true
}

func (s *documentStore) close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *documentStore) get(uri string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return models.Document{}, false
	}
	return models.Document{URI: uri, LanguageID: doc.languageID, Text: doc.text}, true
}

// uris returns the open document URIs in sorted order.
func (s *documentStore) uris() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		out = append(out, uri)
	}
	slices.Sort(out)
	return out
}

// applyEdit replaces r in text with newText.
func applyEdit(text string, r protocol.Range, newText string) string {
	start := byteOffset(text, r.Start)
	end := byteOffset(text, r.End)
	if end < start {
		start, end = end, start
	}
	return text[:start] + newText + text[end:]
}

// byteOffset converts an LSP position to a byte offset in text, clamped to
// the text bounds.
func byteOffset(text string, p protocol.Position) int {
	offset := 0
	for i := 0; i < int(p.Line); i++ {
		idx := strings.IndexByte(text[offset:], '\n')
		if idx < 0 {
			return len(text)
		}
		offset += idx + 1
	}

	line := text[offset:]
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	col := utf16ToRune(line, int(p.Character))
	for i := range line {
		if col == 0 {
			return offset + i
		}
		col--
	}
	return offset + len(line)
}
