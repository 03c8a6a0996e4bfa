package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/vcs/github"
)

// UserChecker verifies a token by asking who it belongs to.
type UserChecker interface {
	GetAuthenticatedUser(ctx context.Context) (string, error)
}

type UserCheckerFactory func(token, baseURL string) (UserChecker, error)

type ConfigCommandFactory struct {
	newChecker UserCheckerFactory
}

func NewConfigCommandFactory() *ConfigCommandFactory {
	return &ConfigCommandFactory{
		newChecker: func(token, baseURL string) (UserChecker, error) {
			return github.NewGitHubClient(token, baseURL)
		},
	}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   t.GetMessage("config.usage", 0, nil),
		Commands: []*cli.Command{
			c.newShowCommand(t, cfg),
			c.newInitCommand(t, cfg),
			c.newSetTokenCommand(t, cfg),
			c.newEditCommand(t, cfg),
		},
	}
}
