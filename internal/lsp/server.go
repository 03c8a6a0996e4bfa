// Package lsp serves issue completions over the Language Server Protocol.
package lsp

import (
	"context"
	"sync/atomic"

	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/thomas-vilte/issuels/internal/completion"
	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/models"
)

const serverName = "issuels"

// CompletionProvider is the completion core the server delegates to.
type CompletionProvider interface {
	ProvideCompletions(ctx context.Context, req completion.Request) ([]models.Candidate, error)
	ResolveCompletion(ctx context.Context, c models.Candidate) (models.Candidate, error)
}

// FolderTracker is told about the workspace folders the client opens.
type FolderTracker interface {
	SetFolders(folders []string)
	Folders() []string
}

// QueryCollections re-runs or drops the issue queries of a root.
type QueryCollections interface {
	Refresh(ctx context.Context, rootURI string) []models.QueryEntry
	Invalidate(rootURI string)
}

// Server adapts the completion core to an LSP client.
type Server struct {
	provider CompletionProvider
	folders  FolderTracker
	// collections is optional; without it folder changes keep their results.
	collections QueryCollections
	docs        *documentStore
	config      atomic.Pointer[config.Config]
	version     string
	debug       bool

	// base is the parent of every request context.
	base context.Context
}

type Option func(*Server)

func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

func WithCollections(c QueryCollections) Option {
	return func(s *Server) { s.collections = c }
}

// WithDebug makes the transport log every message.
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

func NewServer(provider CompletionProvider, folders FolderTracker, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		provider: provider,
		folders:  folders,
		docs:     newDocumentStore(),
		version:  "dev",
		base:     context.Background(),
	}
	s.config.Store(cfg)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetConfig swaps the configuration used by subsequent requests.
func (s *Server) SetConfig(cfg *config.Config) {
	s.config.Store(cfg)
}

// RunStdio serves a single client on stdin/stdout until it disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.base = ctx
	handler := s.Handler()
	return server.NewServer(&handler, serverName, s.debug).RunStdio()
}

func (s *Server) Handler() protocol.Handler {
	return protocol.Handler{
		Initialize:                         s.initialize,
		Initialized:                        s.initialized,
		Shutdown:                           s.shutdown,
		SetTrace:                           s.setTrace,
		TextDocumentDidOpen:                s.textDocumentDidOpen,
		TextDocumentDidChange:              s.textDocumentDidChange,
		TextDocumentDidClose:               s.textDocumentDidClose,
		TextDocumentCompletion:             s.textDocumentCompletion,
		CompletionItemResolve:              s.completionItemResolve,
		WorkspaceExecuteCommand:            s.workspaceExecuteCommand,
		WorkspaceDidChangeWorkspaceFolders: s.workspaceDidChangeWorkspaceFolders,
	}
}

// requestContext derives a cancellable context for one request. Query
// latency is bounded by the issue client, not here.
func (s *Server) requestContext(method string) (context.Context, context.CancelFunc) {
	ctx := logger.With(s.base, "method", method)
	return context.WithCancel(ctx)
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	var folders []string
	for _, f := range params.WorkspaceFolders {
		folders = append(folders, string(f.URI))
	}
	if len(folders) == 0 && params.RootURI != nil && *params.RootURI != "" {
		folders = append(folders, string(*params.RootURI))
	}
	s.folders.SetFolders(folders)
	logger.Info(s.base, "client initialized", "folders", len(folders))

	t := true
	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &t,
			Change:    &syncKind,
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"#"},
			ResolveProvider:   &t,
		},
		ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
			Commands: []string{completion.CommandOpenSettings, completion.CommandIssueCompletion, CommandRefreshQueries},
		},
		Workspace: &protocol.ServerCapabilitiesWorkspace{
			WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{
				Supported:           &t,
				ChangeNotifications: &protocol.BoolOrString{Value: true},
			},
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.open(params.TextDocument)
	logger.Debug(s.base, "document opened", "uri", params.TextDocument.URI, "language", params.TextDocument.LanguageID)
	return nil
}

func (s *Server) textDocumentDidChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if !s.docs.change(uri, params.TextDocument.Version, params.ContentChanges) {
		logger.Debug(s.base, "change for unknown document", "uri", uri)
	}
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.close(string(params.TextDocument.URI))
	return nil
}

func (s *Server) workspaceDidChangeWorkspaceFolders(_ *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	removed := make(map[string]bool, len(params.Event.Removed))
	for _, f := range params.Event.Removed {
		removed[string(f.URI)] = true
	}

	var folders []string
	for _, f := range s.folders.Folders() {
		if !removed[f] {
			folders = append(folders, f)
		}
	}
	for _, f := range params.Event.Added {
		folders = append(folders, string(f.URI))
	}
	s.folders.SetFolders(folders)

	if s.collections != nil {
		for uri := range removed {
			s.collections.Invalidate(uri)
		}
	}
	return nil
}

// workspace snapshots the folders and the open documents. Open documents
// stand in for the visible editors, which LSP does not expose.
func (s *Server) workspace() models.Workspace {
	return models.Workspace{
		Folders:        s.folders.Folders(),
		VisibleEditors: s.docs.uris(),
	}
}
