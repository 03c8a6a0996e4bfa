package complete

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/commands/completion_helper"
	"github.com/thomas-vilte/issuels/internal/completion"
	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/logger"
	"github.com/thomas-vilte/issuels/internal/markdown"
	"github.com/thomas-vilte/issuels/internal/models"
	"github.com/thomas-vilte/issuels/internal/providers"
	"github.com/thomas-vilte/issuels/internal/repository"
	"github.com/thomas-vilte/issuels/internal/ui"
)

// StackBuilder wires the completion service for a configuration.
type StackBuilder func(ctx context.Context, cfg *config.Config, t *i18n.Translations) (*providers.Stack, error)

type CompleteCommandFactory struct {
	newStack StackBuilder
	progress io.Writer
}

// NewCompleteCommandFactory builds the command. Progress is shown on stderr.
func NewCompleteCommandFactory(newStack StackBuilder) *CompleteCommandFactory {
	return &CompleteCommandFactory{newStack: newStack, progress: os.Stderr}
}

func (f *CompleteCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "complete",
		Usage: t.GetMessage("complete.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    t.GetMessage("complete.flag_file", 0, nil),
				Required: true,
			},
			&cli.IntFlag{
				Name:    "line",
				Aliases: []string{"l"},
				Usage:   t.GetMessage("complete.flag_line", 0, nil),
			},
			&cli.IntFlag{
				Name:    "col",
				Aliases: []string{"c"},
				Usage:   t.GetMessage("complete.flag_col", 0, nil),
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: t.GetMessage("complete.flag_language", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "invoke",
				Usage: t.GetMessage("complete.flag_invoke", 0, nil),
			},
			&cli.IntFlag{
				Name:  "resolve",
				Usage: t.GetMessage("complete.flag_resolve", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, command *cli.Command) error {
			return f.run(ctx, command, t, cfg)
		},
	}
}

func (f *CompleteCommandFactory) run(ctx context.Context, command *cli.Command, t *i18n.Translations, cfg *config.Config) error {
	out := command.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	doc, err := readDocument(command.String("file"), command.String("language"))
	if err != nil {
		return err
	}

	stack, err := f.newStack(ctx, cfg, t)
	if err != nil {
		return err
	}
	defer stack.Close()

	if wd, err := os.Getwd(); err == nil {
		stack.Resolver.SetFolders([]string{repository.FileURI(wd)})
	}

	trigger := models.TriggerCharacter
	if command.Bool("invoke") {
		trigger = models.TriggerInvoke
	}
	req := completion.Request{
		Document: doc,
		Position: models.Position{Line: int(command.Int("line")), Character: int(command.Int("col"))},
		Trigger:  trigger,
		Settings: cfg.Settings(),
		Workspace: models.Workspace{
			Folders:        stack.Resolver.Folders(),
			VisibleEditors: []string{doc.URI},
		},
	}

	var candidates []models.Candidate
	err = ui.WithSpinner(f.progress, t.GetMessage("complete.loading", 0, nil), func() error {
		var err error
		candidates, err = stack.Provider.ProvideCompletions(ctx, req)
		return err
	})
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		ui.PrintInfo(out, t.GetMessage("complete.suppressed", 0, nil))
		return nil
	}

	if n := int(command.Int("resolve")); n > 0 {
		if n > len(candidates) {
			return errors.New(t.GetMessage("complete.resolve_out_of_range", 0, map[string]interface{}{
				"Index": n,
				"Count": len(candidates),
			}))
		}
		return resolve(ctx, out, stack, candidates[n-1])
	}

	printCandidates(out, candidates)
	return nil
}

func readDocument(path, language string) (models.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return models.Document{}, err
	}
	text, err := os.ReadFile(abs)
	if err != nil {
		return models.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if language == "" {
		language = detectLanguage(abs)
	}
	return models.Document{
		URI:        repository.FileURI(abs),
		LanguageID: language,
		Text:       string(text),
	}, nil
}

func printCandidates(w io.Writer, candidates []models.Candidate) {
	index := color.New(color.FgHiBlack)
	insert := color.New(color.FgCyan)
	for i, c := range candidates {
		line := fmt.Sprintf("%s %s", index.Sprintf("%2d.", i+1), c.Label)
		if c.InsertText != "" {
			line += "  " + insert.Sprint(c.InsertText)
		}
		if c.Detail != "" {
			line += "  " + ui.Dim.Sprint(c.Detail)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func resolve(ctx context.Context, w io.Writer, stack *providers.Stack, c models.Candidate) error {
	if c.Kind != models.CandidateIssue || c.Issue == nil {
		_, _ = fmt.Fprintf(w, "%s\n%s\n", c.Label, c.Detail)
		if c.Effect != nil && len(c.Effect.Arguments) > 0 {
			ui.PrintKeyValue(w, c.Effect.Title, fmt.Sprint(c.Effect.Arguments[0]))
		}
		return nil
	}

	rendered, err := markdown.NewTerminalRenderer(stack.Renderer).Render(ctx, *c.Issue)
	if err != nil {
		logger.Warn(ctx, "could not render issue", "issue", c.Issue.Key(), "error", err)
		return err
	}
	_, _ = fmt.Fprint(w, rendered)
	return nil
}
