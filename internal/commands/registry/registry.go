package registry

import (
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
)

type CommandFactory interface {
	CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command
}

type entry struct {
	name    string
	factory CommandFactory
}

// Registry builds the top-level commands in registration order.
type Registry struct {
	entries []entry
	config  *config.Config
	t       *i18n.Translations
}

func NewRegistry(cfg *config.Config, t *i18n.Translations) *Registry {
	return &Registry{
		config: cfg,
		t:      t,
	}
}

func (r *Registry) Register(name string, factory CommandFactory) error {
	for _, e := range r.entries {
		if e.name == name {
			return errors.New(r.t.GetMessage("factory_already_registered", 0, map[string]interface{}{
				"FactoryName": name,
			}))
		}
	}
	r.entries = append(r.entries, entry{name: name, factory: factory})
	return nil
}

func (r *Registry) CreateCommands() []*cli.Command {
	commands := make([]*cli.Command, 0, len(r.entries))
	for _, e := range r.entries {
		commands = append(commands, e.factory.CreateCommand(r.t, r.config))
	}
	return commands
}
