package config

import (
	"fmt"
	"net/url"
)

// Validate checks configuration values for consistency. It is called by
// Load after all sources are merged.
func Validate(cfg *Configuration) error {
	switch cfg.Source {
	case SourceGitHub:
		if cfg.GitHubOwner == "" {
			return fmt.Errorf("source %q requires github_owner", cfg.Source)
		}
	case SourceGitRepo:
		if cfg.CloneDir == "" {
			return fmt.Errorf("source %q requires clone_dir", cfg.Source)
		}
	default:
		return fmt.Errorf("invalid source %q (valid: %q, %q)", cfg.Source, SourceGitHub, SourceGitRepo)
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}

	for name, value := range map[string]string{
		"eups_url":    cfg.EupsURL,
		"jira_url":    cfg.JiraURL,
		"product_url": cfg.ProductURL,
		"ticket_url":  cfg.TicketURL,
	} {
		if value == "" {
			continue
		}
		if _, err := url.ParseRequestURI(value); err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", name, err)
		}
	}

	if cfg.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	return nil
}
