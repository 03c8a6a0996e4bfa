package cache

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/cache"
	"github.com/thomas-vilte/issuels/internal/commands/completion_helper"
	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/ui"
)

type CacheCommand struct{}

func NewCacheCommand() *CacheCommand {
	return &CacheCommand{}
}

func (c *CacheCommand) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "cache",
		Usage:         t.GetMessage("cache.usage", 0, nil),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Commands: []*cli.Command{
			{
				Name:  "clean",
				Usage: t.GetMessage("cache.clean_usage", 0, nil),
				Action: func(ctx context.Context, command *cli.Command) error {
					store, err := cache.NewCache(cfg.CacheDir(), cfg.Cache.TTL.Duration)
					if err != nil {
						return fmt.Errorf(t.GetMessage("cache.error_init", 0, nil)+": %w", err)
					}

					if err := store.Clean(); err != nil {
						return fmt.Errorf(t.GetMessage("cache.error_clean", 0, nil)+": %w", err)
					}

					ui.PrintSuccess(command.Root().Writer, t.GetMessage("cache.cleaned", 0, nil))
					return nil
				},
			},
			{
				Name:  "path",
				Usage: t.GetMessage("cache.path_usage", 0, nil),
				Action: func(ctx context.Context, command *cli.Command) error {
					store, err := cache.NewCache(cfg.CacheDir(), cfg.Cache.TTL.Duration)
					if err != nil {
						return fmt.Errorf(t.GetMessage("cache.error_init", 0, nil)+": %w", err)
					}
					_, err = fmt.Fprintln(command.Root().Writer, store.Dir())
					return err
				},
			},
		},
	}
}
