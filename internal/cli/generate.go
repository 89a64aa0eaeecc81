package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mwittgen/changelog/internal/changelog"
	"github.com/mwittgen/changelog/internal/errors"
	"github.com/mwittgen/changelog/internal/progress"
	"github.com/mwittgen/changelog/internal/render"
)

var generateCmd = &cobra.Command{
	Use:   "generate (weekly|regular)",
	Short: "Generate the changelog pages for one release cadence",
	Long: `Generate the full changelog document set for weekly snapshot tags or
numbered release tags.

The command downloads the release manifests, fetches the tag and merge
history of every listed package, attributes merged changes to releases,
resolves ticket summaries, and writes one RST page per release plus
summary, products, and index pages into the output directory.`,
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

		logf := debugLogf(cmd)
		display := progress.NewDisplay()

		gen, err := newGenerator(cfg, logf)
		if err != nil {
			return err
		}

		display.Start(fmt.Sprintf("generating %s changelog", cadence))
		rep, err := gen.Run(cmd.Context(), cadence)
		if err != nil {
			display.Fail("generation failed")
			return errors.FetchError("release sources", err)
		}

		w := &render.Writer{
			Dir:        cfg.OutputDir,
			ProductURL: cfg.ProductURL,
			TicketURL:  cfg.TicketURL,
		}
		if err := w.Write(rep); err != nil {
			display.Fail("rendering failed")
			return errors.Wrap(err, errors.Runtime,
				"Check that the output directory is writable")
		}

		display.Succeed(fmt.Sprintf("wrote %d releases to %s", len(rep.Releases), cfg.OutputDir))
		if latest := latestRelease(rep); latest != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "latest release: %s (%s)\n",
				latest.Name, humanize.Time(latest.Date))
		}
		return nil
	},
}

// latestRelease returns the newest real release of the report, skipping the
// trunk tail.
func latestRelease(rep *changelog.Report) *changelog.ReleaseView {
	for i := range rep.Releases {
		if !rep.Releases[i].IsTail {
			return &rep.Releases[i]
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
