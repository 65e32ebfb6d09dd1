package cmd

import (
	"context"

	"github.com/Digital-Shane/library-tidy/internal/batch"
	"github.com/Digital-Shane/library-tidy/internal/config"
	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/log"
	"github.com/Digital-Shane/library-tidy/internal/series"
	"github.com/spf13/cobra"
)

var seriesCmd = &cobra.Command{
	Use:     "series",
	Aliases: []string{"shows"},
	Short:   "Rename series folders, season folders and episodes",
	Long: `Rename every series folder below --basedir together with its seasons and episodes.

A series folder is named "Title (Year) [imdbid-ttXXXXXXX]", seasons are
"Season 01" and episodes "Title S01E01.mkv" or "Title S01E01-E02.mkv".
Episodes found at the series root are moved into their season folder, which
is created when missing.`,
	RunE: runSeriesCommand,
}

// SeriesCommand wires the series pipeline into the batch runner.
var SeriesCommand = CommandConfig{
	CommandName: "series",
	Title:       "Normalizing Series",
	Workers:     func(cfg *config.Config) int { return cfg.SeriesWorkers },
	Process:     seriesProcess,
}

func runSeriesCommand(cmd *cobra.Command, args []string) error {
	return RunBatchCommand(cmd, SeriesCommand)
}

func seriesProcess(env Env) batch.ProcessFunc {
	return func(ctx context.Context, path string, j *log.Journal) (library.Outcome, error) {
		s, err := series.New(ctx, path, series.Options{
			FS:      env.FS,
			Tables:  env.Tables,
			Journal: j,
		})
		if err != nil {
			return library.OutcomeNone, err
		}
		return s.Fix(ctx, env.Resolver, env.DryRun)
	}
}

func init() {
	rootCmd.AddCommand(seriesCmd)
}
