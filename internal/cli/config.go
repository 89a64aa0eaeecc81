package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/mwittgen/changelog/internal/config"
	"github.com/mwittgen/changelog/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the user config file,
the project config file, and CHANGELOG_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		redacted := *cfg
		if redacted.GitHubToken != "" {
			redacted.GitHubToken = "(set)"
		}
		out := map[string]interface{}{
			"source":       redacted.Source,
			"github_owner": redacted.GitHubOwner,
			"github_token": redacted.GitHubToken,
			"clone_dir":    redacted.CloneDir,
			"eups_url":     redacted.EupsURL,
			"jira_url":     redacted.JiraURL,
			"jira_project": redacted.JiraProject,
			"workers":      redacted.Workers,
			"output_dir":   redacted.OutputDir,
			"product_url":  redacted.ProductURL,
			"ticket_url":   redacted.TicketURL,
			"debug":        redacted.Debug,
		}
		data, err := yamlv3.Marshal(out)
		if err != nil {
			return errors.Wrap(err, errors.Runtime)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the built-in defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetBool("user")
		force, _ := cmd.Flags().GetBool("force")

		path := config.ProjectConfigPath()
		if user {
			var err error
			path, err = config.UserConfigPath()
			if err != nil {
				return errors.Wrap(err, errors.Configuration)
			}
		}
		if err := config.WriteDefault(path, force); err != nil {
			return errors.Wrap(err, errors.Configuration,
				"Pass --force to overwrite an existing config file")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("user", false, "Write the user-level config instead of the project config")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
