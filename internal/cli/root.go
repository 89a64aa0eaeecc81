// Package cli implements the changelog command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwittgen/changelog/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Generate release changelogs from tags, merges, and tickets",
	Long: `changelog aggregates the release history of a software stack into
browsable changelog pages.

It reads the per-release package manifests from an EUPS distribution
server, walks the tag and merge history of every package repository
(via the GitHub API or a directory of local clones), attributes each
merged change to the first release tag containing it, cross-references
ticket numbers against the issue tracker, and renders the result as
reStructuredText.

Source: https://github.com/mwittgen/changelog`,
	Example: `  changelog generate weekly
  changelog generate regular -o docs/releases
  changelog products weekly
  changelog diff regular
  changelog config show`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints structured errors.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	if cliErr := errors.AsCLIError(err); cliErr != nil {
		errors.PrintError(cliErr)
	} else {
		errors.PrintError(errors.Wrap(err, errors.Runtime))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: .changelog/config.yml)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "Override concurrent fetch workers (0 = use config)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Override output directory")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
}

// debugLogf returns the debug logger selected by the --debug flag, or nil.
func debugLogf(cmd *cobra.Command) func(format string, args ...any) {
	debug, _ := cmd.Flags().GetBool("debug")
	if !debug {
		return nil
	}
	return func(format string, args ...any) {
		fmt.Fprintf(cmd.ErrOrStderr(), "[DEBUG] "+format+"\n", args...)
	}
}
