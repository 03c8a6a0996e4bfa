package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/issuels/internal/cache"
	"github.com/thomas-vilte/issuels/internal/config"
	"github.com/thomas-vilte/issuels/internal/i18n"
)

func runCache(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	var out bytes.Buffer
	app := &cli.Command{
		Writer:   &out,
		Commands: []*cli.Command{NewCacheCommand().CreateCommand(trans, cfg)},
	}
	err = app.Run(context.Background(), append([]string{"issuels", "cache"}, args...))
	return out.String(), err
}

func TestCacheCommand(t *testing.T) {
	t.Run("clean should remove cached results", func(t *testing.T) {
		// Arrange
		cfg := config.Default()
		cfg.Cache.Dir = t.TempDir()
		store, err := cache.NewCache(cfg.Cache.Dir, time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Set("query", []string{"#1"}))

		// Act
		out, err := runCache(t, cfg, "clean")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out, "Cache cleaned")
		_, err = os.Stat(cfg.Cache.Dir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("path should print the directory next to the config file", func(t *testing.T) {
		// Arrange
		cfg := config.Default()
		cfg.PathFile = filepath.Join(t.TempDir(), "config.toml")

		// Act
		out, err := runCache(t, cfg, "path")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(filepath.Dir(cfg.PathFile), "cache"), strings.TrimSpace(out))
	})
}
