package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	cachecmd "github.com/thomas-vilte/issuels/internal/commands/cache"
	"github.com/thomas-vilte/issuels/internal/commands/complete"
	configcmd "github.com/thomas-vilte/issuels/internal/commands/config"
	"github.com/thomas-vilte/issuels/internal/commands/registry"
	"github.com/thomas-vilte/issuels/internal/commands/serve"
	"github.com/thomas-vilte/issuels/internal/commands/versioncmd"
	cfg "github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/providers"
	"github.com/thomas-vilte/issuels/internal/ui"
	"github.com/thomas-vilte/issuels/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Initialize(os.Stderr, logger.Options{Pretty: true})

	app, translations, err := initializeApp()
	if err != nil {
		ui.HandleAppError(os.Stderr, err, nil)
		os.Exit(1)
	}

	if err := app.Run(ctx, os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}
}

func initializeApp() (*cli.Command, *i18n.Translations, error) {
	configPath, err := configPathFromArgs(os.Args)
	if err != nil {
		return nil, nil, err
	}

	cfgApp, err := cfg.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	translations, err := i18n.NewTranslations(cfgApp.Language, "")
	if err != nil {
		return nil, nil, err
	}

	registerCommand := registry.NewRegistry(cfgApp, translations)

	factories := []struct {
		name    string
		factory registry.CommandFactory
	}{
		{"serve", serve.NewServeCommandFactory(providers.NewStack)},
		{"complete", complete.NewCompleteCommandFactory(providers.NewStack)},
		{"config", configcmd.NewConfigCommandFactory()},
		{"cache", cachecmd.NewCacheCommand()},
		{"version", versioncmd.NewVersionCommandFactory(nil)},
	}
	for _, f := range factories {
		if err := registerCommand.Register(f.name, f.factory); err != nil {
			return nil, nil, fmt.Errorf("registering %s: %w", f.name, err)
		}
	}

	return &cli.Command{
		Name:    "issuels",
		Usage:   translations.GetMessage("app_usage", 0, nil),
		Version: version.FullVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: translations.GetMessage("flag_config", 0, nil),
				Value: configPath,
			},
		},
		Commands:              registerCommand.CreateCommands(),
		EnableShellCompletion: true,
	}, translations, nil
}

// configPathFromArgs finds --config before the command tree is built, since
// the commands are created from the loaded configuration.
func configPathFromArgs(args []string) (string, error) {
	for i, arg := range args {
		switch {
		case arg == "--config" && i+1 < len(args):
			return args[i+1], nil
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config="), nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the home directory: %w", err)
	}
	return cfg.DefaultPath(homeDir), nil
}
