package config

import (
	"github.com/mwittgen/changelog/internal/eups"
	"github.com/mwittgen/changelog/internal/jira"
	"github.com/mwittgen/changelog/internal/render"
)

// SourceGitHub and SourceGitRepo are the valid values of the source setting.
const (
	SourceGitHub  = "github"
	SourceGitRepo = "gitrepo"
)

// DefaultOwner is the GitHub organization scanned by default.
const DefaultOwner = "lsst"

// DefaultWorkers bounds concurrent fetches by default.
const DefaultWorkers = 8

// Defaults returns the built-in configuration values, keyed like the
// YAML config file.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"source":       SourceGitHub,
		"github_owner": DefaultOwner,
		"github_token": "",
		"github_url":   "",
		"clone_dir":    "",
		"eups_url":     eups.DefaultURL,
		"jira_url":     jira.DefaultURL,
		"jira_project": jira.DefaultProject,
		"workers":      DefaultWorkers,
		"output_dir":   "changelog",
		"product_url":  render.DefaultProductURL,
		"ticket_url":   render.DefaultTicketURL,
		"debug":        false,
	}
}
