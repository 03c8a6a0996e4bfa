package serve

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/commands/completion_helper"
	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/lsp"
	"github.com/thomas-vilte/issuels/internal/providers"
	"github.com/thomas-vilte/issuels/internal/version"
)

// StackBuilder wires the completion service for a configuration.
type StackBuilder func(ctx context.Context, cfg *config.Config, t *i18n.Translations) (*providers.Stack, error)

type ServeCommandFactory struct {
	newStack StackBuilder
}

func NewServeCommandFactory(newStack StackBuilder) *ServeCommandFactory {
	return &ServeCommandFactory{newStack: newStack}
}

func (f *ServeCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: t.GetMessage("serve.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: t.GetMessage("serve.flag_debug", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: t.GetMessage("serve.flag_verbose", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, command *cli.Command) error {
			debug := command.Bool("debug")
			// stdout carries the protocol
			log := logger.Initialize(os.Stderr, logger.Options{
				Debug:   debug,
				Verbose: command.Bool("verbose"),
			})
			ctx = logger.WithLogger(ctx, log)

			stack, err := f.newStack(ctx, cfg, t)
			if err != nil {
				return err
			}
			defer stack.Close()

			srv := lsp.NewServer(stack.Provider, stack.Resolver, cfg,
				lsp.WithVersion(version.Version),
				lsp.WithDebug(debug),
				lsp.WithCollections(stack.Issues),
			)

			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go watchConfig(watchCtx, cfg.PathFile, srv, stack)

			logger.Info(ctx, t.GetMessage("serve.starting", 0, nil), "version", version.Version)
			return srv.RunStdio(ctx)
		},
	}
}

func watchConfig(ctx context.Context, path string, srv *lsp.Server, stack *providers.Stack) {
	if path == "" {
		return
	}
	err := config.Watch(ctx, path, func(cfg *config.Config) {
		srv.SetConfig(cfg)
		stack.Apply(ctx, cfg)
	})
	if err != nil {
		logger.Warn(ctx, "configuration changes will not be picked up", "path", path, "error", err)
	}
}
