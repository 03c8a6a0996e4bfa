package config

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/commands/completion_helper"
	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/ui"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("config.init_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("config.flag_force", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        initConfigAction(cfg, t),
	}
}

func initConfigAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		data := map[string]interface{}{"Path": cfg.PathFile}

		if _, err := os.Stat(cfg.PathFile); err == nil && !command.Bool("force") {
			return errors.New(t.GetMessage("config.already_exists", 0, data))
		}

		fresh := config.Default()
		fresh.PathFile = cfg.PathFile
		fresh.Language = cfg.Language
		if err := config.SaveConfig(fresh); err != nil {
			return err
		}
		*cfg = *fresh

		ui.PrintSuccess(command.Root().Writer, t.GetMessage("config.init_done", 0, data))
		return nil
	}
}
