package cmd

import (
	"context"

	"github.com/Digital-Shane/library-tidy/internal/batch"
	"github.com/Digital-Shane/library-tidy/internal/config"
	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/log"
	"github.com/Digital-Shane/library-tidy/internal/movie"
	"github.com/spf13/cobra"
)

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "Rename movie folders and their media files",
	Long: `Rename every movie folder below --basedir and the media files inside it.

A movie folder is named "Title (Year) [imdbid-ttXXXXXXX]" and holds files named
"Title (Year) - [1080p].mkv". Multi-part and 3D files keep their
"[Part N]" and "[3D.HSBS]" tags. When a file name carries no resolution it is
read from the video stream with ffprobe.`,
	RunE: runMoviesCommand,
}

// MoviesCommand wires the movie pipeline into the batch runner.
var MoviesCommand = CommandConfig{
	CommandName: "movies",
	Title:       "Normalizing Movies",
	Workers:     func(cfg *config.Config) int { return cfg.MovieWorkers },
	Process:     movieProcess,
}

func runMoviesCommand(cmd *cobra.Command, args []string) error {
	return RunBatchCommand(cmd, MoviesCommand)
}

func movieProcess(env Env) batch.ProcessFunc {
	return func(ctx context.Context, path string, j *log.Journal) (library.Outcome, error) {
		m, err := movie.New(ctx, path, movie.Options{
			FS:      env.FS,
			Tables:  env.Tables,
			Prober:  env.Prober,
			Journal: j,
		})
		if err != nil {
			return library.OutcomeNone, err
		}
		return m.Fix(ctx, env.Resolver, env.DryRun)
	}
}

func init() {
	rootCmd.AddCommand(moviesCmd)
}
