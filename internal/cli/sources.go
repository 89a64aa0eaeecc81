package cli

import (
	"github.com/spf13/cobra"

	"github.com/mwittgen/changelog/internal/changelog"
	"github.com/mwittgen/changelog/internal/config"
	"github.com/mwittgen/changelog/internal/errors"
	"github.com/mwittgen/changelog/internal/eups"
	"github.com/mwittgen/changelog/internal/github"
	"github.com/mwittgen/changelog/internal/gitrepo"
	"github.com/mwittgen/changelog/internal/jira"
	"github.com/mwittgen/changelog/internal/reltag"
)

// loadConfig loads the configuration honoring the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration,
			"Check .changelog/config.yml for syntax errors",
			"Run 'changelog config show' to inspect the effective configuration")
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Workers = workers
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.OutputDir = output
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// parseCadence maps the release-type argument onto a cadence.
func parseCadence(arg string) (reltag.Cadence, error) {
	switch arg {
	case "weekly":
		return reltag.WeeklyCadence, nil
	case "regular":
		return reltag.RegularCadence, nil
	default:
		return 0, errors.InvalidCadenceError(arg)
	}
}

// repositorySource builds the configured repository source.
func repositorySource(cfg *config.Configuration, logf func(string, ...any)) (changelog.RepositorySource, error) {
	switch cfg.Source {
	case config.SourceGitHub:
		if cfg.GitHubToken == "" {
			return nil, errors.MissingTokenError()
		}
		return &github.Source{
			Owner: cfg.GitHubOwner,
			Token: cfg.GitHubToken,
			URL:   cfg.GitHubURL,
		}, nil
	case config.SourceGitRepo:
		if cfg.CloneDir == "" {
			return nil, errors.MissingCloneDirError()
		}
		gitrepo.SetDebugLogger(logf)
		return &gitrepo.Source{Dir: cfg.CloneDir}, nil
	}
	// Unreachable after config validation.
	return nil, errors.NewConfigError("invalid source " + cfg.Source)
}

// manifestSource builds the EUPS manifest source.
func manifestSource(cfg *config.Configuration, logf func(string, ...any)) *eups.HTTPSource {
	return &eups.HTTPSource{
		URL:     cfg.EupsURL,
		Workers: cfg.Workers,
		Logf:    logf,
	}
}

// newGenerator wires the configured sources into a generator.
func newGenerator(cfg *config.Configuration, logf func(string, ...any)) (*changelog.Generator, error) {
	repos, err := repositorySource(cfg, logf)
	if err != nil {
		return nil, err
	}
	return &changelog.Generator{
		Manifests: manifestSource(cfg, logf),
		Repos:     repos,
		Issues:    &jira.RESTSource{URL: cfg.JiraURL, Project: cfg.JiraProject},
		Workers:   cfg.Workers,
		Logf:      logf,
	}, nil
}
