package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mwittgen/changelog/internal/errors"
)

var productsCmd = &cobra.Command{
	Use:   "products (weekly|regular)",
	Short: "List the products named by the release manifests",
	Long: `List every product named by the release manifests of the cadence,
with the number of releases each product appears in.`,
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

		counts := make(map[string]int)
		for _, rel := range set.Releases {
			for _, pkg := range rel.Packages {
				counts[pkg]++
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Product", "Releases"})
		for _, product := range set.Products {
			t.AppendRow(table.Row{product, counts[product]})
		}
		t.AppendFooter(table.Row{"Total", len(set.Products)})
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
}
