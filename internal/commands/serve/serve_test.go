package serve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
	"github.com/thomas-vilte/issuels/internal/providers"
)

func TestServeCommand(t *testing.T) {
	t.Run("should expose the logging flags", func(t *testing.T) {
		// Arrange
		translations, err := i18n.NewTranslations("en", "")
		require.NoError(t, err)
		factory := NewServeCommandFactory(providers.NewStack)

		// Act
		cmd := factory.CreateCommand(translations, config.Default())

		// Assert
		assert.Equal(t, "serve", cmd.Name)
		assert.Equal(t, "Run the issue completion language server over stdio", cmd.Usage)
		var names []string
		for _, f := range cmd.Flags {
			names = append(names, f.Names()...)
		}
		assert.ElementsMatch(t, []string{"debug", "verbose"}, names)
	})
}
