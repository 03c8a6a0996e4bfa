package lsp

import (
	"context"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thomas-vilte/issuels/internal/completion"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/repository"
)

const (
	methodShowDocument = "window/showDocument"
	methodShowMessage  = "window/showMessage"

	// CommandRefreshQueries re-runs the issue queries of every workspace folder.
	CommandRefreshQueries = "issuels.refreshQueries"
)

func (s *Server) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	reqCtx, cancel := s.requestContext("workspace/executeCommand")
	defer cancel()

	switch params.Command {
	case completion.CommandOpenSettings:
		location := s.config.Load().PathFile
		if len(params.Arguments) > 0 {
			if l, ok := params.Arguments[0].(string); ok && l != "" {
				location = l
			}
		}
		if location == "" {
			return nil, nil
		}
		// The client answers showDocument on the connection this handler
		// is blocking, so the call must not run inline.
		go s.openSettings(logger.With(s.base, "command", params.Command), ctx, location)
		return nil, nil

	case CommandRefreshQueries:
		if s.collections == nil {
			return nil, nil
		}
		folders := s.folders.Folders()
		for _, folder := range folders {
			s.collections.Refresh(reqCtx, folder)
		}
		logger.Info(reqCtx, "issue queries refreshed on request", "count", len(folders))
		return nil, nil

	case completion.CommandIssueCompletion:
		logger.Info(reqCtx, "issue completion accepted")
		return nil, nil

	default:
		logger.Warn(reqCtx, "unknown command", "command", params.Command)
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
}

// openSettings asks the client to show the configuration file and falls back
// to a message naming it.
func (s *Server) openSettings(ctx context.Context, client *glsp.Context, location string) {
	t := true
	var result protocol.ShowDocumentResult
	client.Call(methodShowDocument, protocol.ShowDocumentParams{
		URI:       protocol.URI(repository.FileURI(location)),
		TakeFocus: &t,
	}, &result)
	if result.Success {
		return
	}
	logger.Debug(ctx, "client did not open the settings", "location", location)
	client.Notify(methodShowMessage, protocol.ShowMessageParams{
		Type:    protocol.MessageTypeInfo,
		Message: fmt.Sprintf("Issue queries are configured in %s", location),
	})
}
