package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Digital-Shane/library-tidy/internal/watch"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "library-tidy",
	Short: "Normalize movie and series library folders",
	Long: `library-tidy brings movie and series folders in line with the library naming
grammar. Every item folder directly below --basedir must carry an
[imdbid-ttXXXXXXX] marker; the title and year are looked up on OMDb and the
folder, its media files and its season folders are renamed to match.

Items are processed in parallel. Use --dry-run to print the planned changes
without touching the disk.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var (
	baseDir      string
	dryRun       bool
	workers      int
	showProgress bool
	reportPath   string
	configPath   string

	watchMode     bool
	watchDebounce time.Duration
)

func init() {
	// Global flags for all commands
	rootCmd.PersistentFlags().StringVarP(&baseDir, "basedir", "b", "", "Library directory whose subfolders are processed")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the planned changes without renaming anything")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "Number of items processed in parallel (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&showProgress, "progress", "p", false, "Show a progress view while the batch runs")
	rootCmd.PersistentFlags().StringVar(&reportPath, "report", "", "Write a JSON report of the run to this file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.library-tidy/config.json)")
	rootCmd.PersistentFlags().BoolVar(&watchMode, "watch", false, "Keep running and process item folders that change after the batch")
	rootCmd.PersistentFlags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a changed item folder is processed")
}
