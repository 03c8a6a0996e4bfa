package config

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/config"
	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/i18n"
)

type mockUserChecker struct {
	mock.Mock
}

func (m *mockUserChecker) GetAuthenticatedUser(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func setupConfigTest(t *testing.T) (*config.Config, *i18n.Translations) {
	t.Helper()
	color.NoColor = true
	t.Setenv("GITHUB_TOKEN", "")

	cfg := config.Default()
	cfg.PathFile = filepath.Join(t.TempDir(), "config.toml")

	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	return cfg, translations
}

func runConfig(t *testing.T, factory *ConfigCommandFactory, cfg *config.Config, trans *i18n.Translations, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.Command{
		Writer:   &out,
		Commands: []*cli.Command{factory.CreateCommand(trans, cfg)},
	}
	err := app.Run(context.Background(), append([]string{"issuels", "config"}, args...))
	return out.String(), err
}

func TestShowCommand(t *testing.T) {
	t.Run("should print settings and queries", func(t *testing.T) {
		// Arrange
		cfg, trans := setupConfigTest(t)
		cfg.GitHub.Token = "ghp_secret1234"

		// Act
		out, err := runConfig(t, NewConfigCommandFactory(), cfg, trans, "show")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out, "language: en")
		assert.Contains(t, out, "github.token: **********1234")
		assert.NotContains(t, out, "ghp_secret")
		assert.Contains(t, out, "My Issues: is:open assignee:${user} repo:${owner}/${repository}")
	})

	t.Run("should say when the token is missing", func(t *testing.T) {
		cfg, trans := setupConfigTest(t)

		out, err := runConfig(t, NewConfigCommandFactory(), cfg, trans, "show")

		require.NoError(t, err)
		assert.Contains(t, out, "github.token: not set")
	})
}

func TestInitCommand(t *testing.T) {
	t.Run("should write the default configuration", func(t *testing.T) {
		// Arrange
		cfg, trans := setupConfigTest(t)

		// Act
		out, err := runConfig(t, NewConfigCommandFactory(), cfg, trans, "init")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration written to "+cfg.PathFile)
		loaded, err := config.LoadConfig(cfg.PathFile)
		require.NoError(t, err)
		assert.Len(t, loaded.Queries, 3)
	})

	t.Run("should not overwrite without force", func(t *testing.T) {
		cfg, trans := setupConfigTest(t)
		require.NoError(t, config.SaveConfig(cfg))

		_, err := runConfig(t, NewConfigCommandFactory(), cfg, trans, "init")

		assert.ErrorContains(t, err, "use --force to overwrite it")
	})

	t.Run("should overwrite with force", func(t *testing.T) {
		cfg, trans := setupConfigTest(t)
		cfg.Queries = cfg.Queries[:1]
		require.NoError(t, config.SaveConfig(cfg))

		_, err := runConfig(t, NewConfigCommandFactory(), cfg, trans, "init", "--force")

		require.NoError(t, err)
		assert.Len(t, cfg.Queries, 3)
	})
}

func TestSetTokenCommand(t *testing.T) {
	newFactory := func(checker *mockUserChecker) *ConfigCommandFactory {
		return &ConfigCommandFactory{
			newChecker: func(token, baseURL string) (UserChecker, error) {
				return checker, nil
			},
		}
	}

	t.Run("should check and save the token", func(t *testing.T) {
		// Arrange
		cfg, trans := setupConfigTest(t)
		checker := &mockUserChecker{}
		checker.On("GetAuthenticatedUser", mock.Anything).Return("octocat", nil)

		// Act
		out, err := runConfig(t, newFactory(checker), cfg, trans, "set-token", "ghp_new")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out, "Authenticated as: octocat")
		assert.Contains(t, out, "GitHub token saved")
		loaded, err := config.LoadConfig(cfg.PathFile)
		require.NoError(t, err)
		assert.Equal(t, "ghp_new", loaded.GitHub.Token)
	})

	t.Run("should not save a rejected token", func(t *testing.T) {
		cfg, trans := setupConfigTest(t)
		checker := &mockUserChecker{}
		checker.On("GetAuthenticatedUser", mock.Anything).Return("", errors.New("401"))

		_, err := runConfig(t, newFactory(checker), cfg, trans, "set-token", "bad")

		assert.ErrorIs(t, err, domainErrors.ErrGitHubTokenInvalid)
		_, statErr := os.Stat(cfg.PathFile)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("should skip the check on request", func(t *testing.T) {
		cfg, trans := setupConfigTest(t)
		checker := &mockUserChecker{}

		_, err := runConfig(t, newFactory(checker), cfg, trans, "set-token", "--skip-check", "ghp_offline")

		require.NoError(t, err)
		checker.AssertNotCalled(t, "GetAuthenticatedUser", mock.Anything)
		assert.Equal(t, "ghp_offline", cfg.GitHub.Token)
	})

	t.Run("should require the token argument", func(t *testing.T) {
		cfg, trans := setupConfigTest(t)

		_, err := runConfig(t, newFactory(&mockUserChecker{}), cfg, trans, "set-token")

		assert.EqualError(t, err, "A token argument is required")
	})
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", maskToken("abc"))
	assert.Equal(t, "****5678", maskToken("12345678"))
}
