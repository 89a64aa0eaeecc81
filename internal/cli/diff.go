package cli

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mwittgen/changelog/internal/changelog"
	"github.com/mwittgen/changelog/internal/errors"
)

var diffCmd = &cobra.Command{
	Use:   "diff (weekly|regular)",
	Short: "Show added and removed products per release",
	Long: `Compare the package manifests of consecutive releases and print the
products that appeared or disappeared at each release tag. Releases
with an unchanged product set are omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cadence, err := parseCadence(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		src := manifestSource(cfg, debugLogf(cmd))
		set, err := src.Releases(cmd.Context(), cadence)
		if err != nil {
			return errors.FetchError("EUPS distribution server", err)
		}

		diff := changelog.PackageDiff(set.Releases)
		names := make([]string, 0, len(diff))
		for name := range diff {
			names = append(names, name)
		}
		sort.Strings(names)

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Release", "Added", "Removed"})
		for _, name := range names {
			d := diff[name]
			t.AppendRow(table.Row{name, strings.Join(d.Added, "\n"), strings.Join(d.Removed, "\n")})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
