package versioncmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/cache"
	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/services"
	"github.com/thomas-vilte/issuels/internal/ui"
	"github.com/thomas-vilte/issuels/internal/version"
)

// releaseCacheTTL limits release lookups to one per day.
const releaseCacheTTL = 24 * time.Hour

type VersionCommandFactory struct {
	releases services.ReleasesService
}

// NewVersionCommandFactory uses the public GitHub API when releases is nil.
func NewVersionCommandFactory(releases services.ReleasesService) *VersionCommandFactory {
	return &VersionCommandFactory{releases: releases}
}

func (f *VersionCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: t.GetMessage("version.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "check",
				Usage: t.GetMessage("version.flag_check", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			w := command.Root().Writer
			if _, err := fmt.Fprintf(w, "issuels %s\n", version.FullVersion()); err != nil {
				return err
			}
			if !command.Bool("check") {
				return nil
			}

			store, err := cache.NewCache(cfg.CacheDir(), releaseCacheTTL)
			if err != nil {
				logger.Debug(ctx, "release cache unavailable", "error", err)
				store = nil
			}
			checker := services.NewVersionChecker(version.Version, f.releases, store)

			var (
				tag, url string
				newer    bool
			)
			err = ui.WithSpinner(command.Root().ErrWriter, t.GetMessage("version.checking", 0, nil), func() error {
				var err error
				tag, url, newer, err = checker.Latest(ctx)
				return err
			})
			if err != nil {
				ui.PrintWarning(w, t.GetMessage("version.check_failed", 0, nil))
				logger.Debug(ctx, "release lookup failed", "error", err)
				return nil
			}

			if !newer {
				ui.PrintSuccess(w, t.GetMessage("version.up_to_date", 0, nil))
				return nil
			}
			ui.PrintInfo(w, t.GetMessage("version.update_available", 0, map[string]interface{}{
				"Latest": tag,
				"URL":    url,
			}))
			return nil
		},
	}
}
