package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	domainErrors "github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/models"
)

type (
	Config struct {
		Language   string           `toml:"language"`
		GitHub     GitHubConfig     `toml:"github"`
		Completion CompletionConfig `toml:"completion"`
		Queries    []QueryConfig    `toml:"queries"`
		Cache      CacheConfig      `toml:"cache"`

		PathFile string `toml:"-"`
	}

	GitHubConfig struct {
		Token string `toml:"token,omitempty"`
		// BaseURL points at a GitHub Enterprise API, e.g. https://ghe.example.com/api/v3/
		BaseURL string `toml:"base_url,omitempty"`
		// QueryLimit caps the issues fetched per query.
		QueryLimit int `toml:"query_limit"`
	}

	CompletionConfig struct {
		IgnoreCompletionTrigger  []string `toml:"ignore_completion_trigger"`
		IssueCompletionFormatSCM *string  `toml:"issue_completion_format_scm,omitempty"`
	}

	// QueryConfig is a named GitHub issue search. Query accepts the
	// ${user}, ${owner}, ${repository} and ${today} variables.
	QueryConfig struct {
		Label string `toml:"label"`
		Query string `toml:"query"`
	}

	CacheConfig struct {
		TTL Duration `toml:"ttl"`
		Dir string   `toml:"dir,omitempty"`
	}
)

// Duration decodes TOML strings such as "10m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

const (
	LangEN = "en"
	LangES = "es"

	defaultLang       = LangEN
	defaultCacheTTL   = 10 * time.Minute
	defaultQueryLimit = 100
	// GitHub search never returns more than 1000 results.
	maxQueryLimit  = 1000
	configDirName  = ".issuels"
	configFileName = "config.toml"
	tokenEnvVar    = "GITHUB_TOKEN"
)

// defaultIgnoreCompletionTrigger lists languages where '#' starts a comment
// or a directive, so typing it should not pop up issues.
var defaultIgnoreCompletionTrigger = []string{
	"coffeescript",
	"diff",
	"dockerfile",
	"dockercompose",
	"ignore",
	"ini",
	"julia",
	"makefile",
	"perl",
	"powershell",
	"python",
	"r",
	"ruby",
	"shellscript",
	"yaml",
}

var defaultQueries = []QueryConfig{
	{Label: "My Issues", Query: "is:open assignee:${user} repo:${owner}/${repository}"},
	{Label: "Created Issues", Query: "author:${user} state:open repo:${owner}/${repository} sort:created-desc"},
	{Label: "Recent Issues", Query: "state:open repo:${owner}/${repository} sort:updated-desc"},
}

// DefaultPath returns ~/.issuels/config.toml for the given home directory.
func DefaultPath(homeDir string) string {
	return filepath.Join(homeDir, configDirName, configFileName)
}

// LoadConfig reads the configuration at path. A directory is resolved to
// <dir>/.issuels/config.toml. A missing file is created with defaults.
func LoadConfig(path string) (*Config, error) {
	configPath := path
	if filepath.Ext(path) != ".toml" {
		configPath = DefaultPath(path)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, domainErrors.ErrConfigRead.WithError(err).WithContext("path", configPath)
	}

	config := Default()
	if _, err := toml.Decode(string(data), config); err != nil {
		return nil, domainErrors.ErrConfigRead.WithError(err).WithContext("path", configPath)
	}
	config.PathFile = configPath

	if err := validateConfig(config); err != nil {
		return nil, domainErrors.ErrConfigInvalid.WithError(err).WithContext("path", configPath)
	}

	return config, nil
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Language: defaultLang,
		GitHub:   GitHubConfig{QueryLimit: defaultQueryLimit},
		Completion: CompletionConfig{
			IgnoreCompletionTrigger: append([]string(nil), defaultIgnoreCompletionTrigger...),
		},
		Queries: append([]QueryConfig(nil), defaultQueries...),
		Cache: CacheConfig{
			TTL: Duration{defaultCacheTTL},
		},
	}
}

func createDefaultConfig(path string) (*Config, error) {
	config := Default()
	config.PathFile = path

	if err := SaveConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return domainErrors.ErrConfigInvalid.WithError(err)
	}

	if config.PathFile == "" {
		return domainErrors.ErrConfigWrite.WithError(errors.New("configuration file path is not set"))
	}

	if err := os.MkdirAll(filepath.Dir(config.PathFile), 0755); err != nil {
		return domainErrors.ErrConfigWrite.WithError(err).WithContext("path", config.PathFile)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return domainErrors.ErrConfigWrite.WithError(err)
	}

	if err := os.WriteFile(config.PathFile, buf.Bytes(), 0600); err != nil {
		return domainErrors.ErrConfigWrite.WithError(err).WithContext("path", config.PathFile)
	}

	return nil
}

func validateConfig(config *Config) error {
	switch config.Language {
	case LangEN, LangES:
	case "":
		return errors.New("language cannot be empty")
	default:
		return fmt.Errorf("unsupported language: %s", config.Language)
	}

	if config.Cache.TTL.Duration <= 0 {
		return errors.New("cache ttl must be greater than 0")
	}

	if config.GitHub.QueryLimit < 1 || config.GitHub.QueryLimit > maxQueryLimit {
		return fmt.Errorf("github query_limit must be between 1 and %d", maxQueryLimit)
	}

	seen := make(map[string]bool, len(config.Queries))
	for i, q := range config.Queries {
		if strings.TrimSpace(q.Label) == "" {
			return fmt.Errorf("query %d has an empty label", i)
		}
		if strings.TrimSpace(q.Query) == "" {
			return fmt.Errorf("query %q is empty", q.Label)
		}
		if seen[q.Label] {
			return fmt.Errorf("duplicate query label %q", q.Label)
		}
		seen[q.Label] = true
	}

	return nil
}

// Token returns the GitHub token, preferring the GITHUB_TOKEN environment variable.
func (c *Config) Token() string {
	if t := os.Getenv(tokenEnvVar); t != "" {
		return t
	}
	return c.GitHub.Token
}

// Settings returns the completion settings snapshot handed to each request.
func (c *Config) Settings() models.Settings {
	var format *string
	if c.Completion.IssueCompletionFormatSCM != nil {
		v := *c.Completion.IssueCompletionFormatSCM
		format = &v
	}
	return models.Settings{
		IgnoreCompletionTrigger: append([]string(nil), c.Completion.IgnoreCompletionTrigger...),
		CompletionFormatSCM:     format,
		SettingsLocation:        c.PathFile,
	}
}

// CacheDir returns the configured cache directory, or a "cache" directory
// next to the configuration file.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	if c.PathFile != "" {
		return filepath.Join(filepath.Dir(c.PathFile), "cache")
	}
	return ""
}
