package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/config"
	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/ui"
)

const tokenCheckTimeout = 10 * time.Second

func (c *ConfigCommandFactory) newSetTokenCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set-token",
		Usage:     t.GetMessage("config.set_token_usage", 0, nil),
		ArgsUsage: "<token>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-check",
				Usage: t.GetMessage("config.flag_skip_check", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			token := strings.TrimSpace(command.Args().First())
			if token == "" {
				return errors.New(t.GetMessage("config.token_required", 0, nil))
			}

			w := command.Root().Writer
			if !command.Bool("skip-check") {
				login, err := c.checkToken(ctx, token, cfg.GitHub.BaseURL, t)
				if err != nil {
					return err
				}
				ui.PrintKeyValue(w, t.GetMessage("config.authenticated_as", 0, nil), login)
			}

			cfg.GitHub.Token = token
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}

			ui.PrintSuccess(w, t.GetMessage("config.token_saved", 0, nil))
			return nil
		},
	}
}

func (c *ConfigCommandFactory) checkToken(ctx context.Context, token, baseURL string, t *i18n.Translations) (string, error) {
	checker, err := c.newChecker(token, baseURL)
	if err != nil {
		return "", err
	}

	checkCtx, cancel := context.WithTimeout(ctx, tokenCheckTimeout)
	defer cancel()

	var login string
	err = ui.WithSpinner(os.Stderr, t.GetMessage("config.checking_token", 0, nil), func() error {
		var err error
		login, err = checker.GetAuthenticatedUser(checkCtx)
		return err
	})
	if err != nil {
		var appErr *domainErrors.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", domainErrors.ErrGitHubTokenInvalid.WithError(err)
	}
	return login, nil
}
