// Package config provides hierarchical configuration management for the
// changelog generator using koanf. Configuration is loaded with priority:
// environment variables > project config (.changelog/config.yml) > user
// config (~/.config/changelog/config.yml) > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix of environment variable overrides,
// e.g. CHANGELOG_GITHUB_TOKEN sets github_token.
const envPrefix = "CHANGELOG_"

// Configuration holds the settings of one generator run.
type Configuration struct {
	// Source selects where repository history comes from:
	// "github" (GraphQL API) or "gitrepo" (directory of local clones).
	Source string `koanf:"source"`

	// GitHubOwner is the organization whose repositories are scanned.
	GitHubOwner string `koanf:"github_owner"`
	// GitHubToken authenticates GraphQL requests. Usually set via
	// CHANGELOG_GITHUB_TOKEN rather than a config file.
	GitHubToken string `koanf:"github_token"`
	// GitHubURL overrides the GraphQL endpoint, mainly for tests.
	GitHubURL string `koanf:"github_url"`

	// CloneDir is the directory of local clones for the gitrepo source.
	CloneDir string `koanf:"clone_dir"`

	// EupsURL is the EUPS distribution tag index.
	EupsURL string `koanf:"eups_url"`

	// JiraURL is the issue tracker search endpoint.
	JiraURL string `koanf:"jira_url"`
	// JiraProject is the issue tracker project key.
	JiraProject string `koanf:"jira_project"`

	// Workers bounds concurrent fetches against remote services.
	Workers int `koanf:"workers"`

	// OutputDir receives the rendered RST files.
	OutputDir string `koanf:"output_dir"`

	// ProductURL prefixes product names in rendered links.
	ProductURL string `koanf:"product_url"`
	// TicketURL prefixes issue keys in rendered links.
	TicketURL string `koanf:"ticket_url"`

	// Debug enables debug logging.
	Debug bool `koanf:"debug"`
}

// Load loads configuration from defaults, the user config file, the project
// config file, and the environment, in ascending priority. projectConfigPath
// overrides the project config location when non-empty.
func Load(projectConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		k.Set(key, value)
	}

	userPath, err := UserConfigPath()
	if err == nil && fileExists(userPath) {
		if err := k.Load(file.Provider(userPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading user config %s: %w", userPath, err)
		}
	}

	projectPath := ProjectConfigPath()
	if projectConfigPath != "" {
		projectPath = projectConfigPath
	}
	if fileExists(projectPath) {
		if err := k.Load(file.Provider(projectPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading project config %s: %w", projectPath, err)
		}
	} else if projectConfigPath != "" {
		return nil, fmt.Errorf("config file %s does not exist", projectConfigPath)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.CloneDir = expandHomePath(cfg.CloneDir)
	cfg.OutputDir = expandHomePath(cfg.OutputDir)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envTransform converts environment variable names to config keys,
// e.g. CHANGELOG_GITHUB_OWNER -> github_owner.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// expandHomePath expands a leading ~/ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
