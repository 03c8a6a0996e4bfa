package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/ui"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config.show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			w := command.Root().Writer

			ui.PrintSectionBanner(w, cfg.PathFile)
			ui.PrintKeyValue(w, "language", cfg.Language)

			token := t.GetMessage("config.token_missing", 0, nil)
			if cfg.Token() != "" {
				token = maskToken(cfg.Token())
			}
			ui.PrintKeyValue(w, "github.token", token)
			if cfg.GitHub.BaseURL != "" {
				ui.PrintKeyValue(w, "github.base_url", cfg.GitHub.BaseURL)
			}
			ui.PrintKeyValue(w, "github.query_limit", strconv.Itoa(cfg.GitHub.QueryLimit))

			ui.PrintKeyValue(w, "completion.ignore_completion_trigger",
				strings.Join(cfg.Completion.IgnoreCompletionTrigger, ", "))
			if f := cfg.Completion.IssueCompletionFormatSCM; f != nil {
				ui.PrintKeyValue(w, "completion.issue_completion_format_scm", fmt.Sprintf("%q", *f))
			}

			ui.PrintKeyValue(w, "cache.ttl", cfg.Cache.TTL.String())
			if cfg.Cache.Dir != "" {
				ui.PrintKeyValue(w, "cache.dir", cfg.Cache.Dir)
			}

			_, _ = fmt.Fprintln(w)
			for _, q := range cfg.Queries {
				ui.PrintKeyValue(w, q.Label, q.Query)
			}
			return nil
		},
	}
}

// maskToken keeps the last four characters visible.
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
