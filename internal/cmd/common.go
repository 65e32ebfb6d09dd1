package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Digital-Shane/library-tidy/internal/batch"
	"github.com/Digital-Shane/library-tidy/internal/config"
	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/log"
	"github.com/Digital-Shane/library-tidy/internal/provider"
	"github.com/Digital-Shane/library-tidy/internal/provider/ffprobe"
	"github.com/Digital-Shane/library-tidy/internal/provider/omdb"
	"github.com/Digital-Shane/library-tidy/internal/provider/tmdb"
	"github.com/Digital-Shane/library-tidy/internal/provider/tvdb"
	"github.com/Digital-Shane/library-tidy/internal/tui/preview"
	"github.com/Digital-Shane/library-tidy/internal/tui/progress"
	"github.com/Digital-Shane/library-tidy/internal/tui/theme"
	"github.com/Digital-Shane/library-tidy/internal/watch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

// CommandConfig defines one batch subcommand.
type CommandConfig struct {
	CommandName string
	Title       string
	Workers     func(*config.Config) int
	Process     func(Env) batch.ProcessFunc
}

// Env carries the collaborators shared by every item of a run.
type Env struct {
	Tables   library.Tables
	FS       library.FS
	Resolver provider.Resolver
	Prober   provider.Prober
	DryRun   bool
}

// configurable is a resolver that takes its settings from a key/value map.
type configurable interface {
	provider.Resolver
	Configure(config map[string]interface{}) error
}

// newResolver builds the metadata resolver selected by the config. Tests
// replace it.
var newResolver = func(cfg *config.Config) (provider.Resolver, error) {
	var res configurable
	settings := map[string]interface{}{"api_key": cfg.APIKey()}
	switch cfg.Provider {
	case config.ProviderOMDB, "":
		res = omdb.New()
		settings["timeout"] = cfg.OMDBTimeout()
	case config.ProviderTMDB:
		res = tmdb.New()
	case config.ProviderTVDB:
		res = tvdb.New()
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err := res.Configure(settings); err != nil {
		return nil, fmt.Errorf("failed to configure %s: %w", cfg.Provider, err)
	}
	limited := provider.NewLimitedResolver(res, cfg.RequestsPerSecond, time.Second)
	return provider.NewCachedResolver(limited, cfg.CacheTTL()), nil
}

// newProber returns nil when probing is disabled.
var newProber = func(cfg *config.Config) provider.Prober {
	if !cfg.EnableFFProbe {
		return nil
	}
	return ffprobe.New()
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// RunBatchCommand executes the common logic for the movies and series commands.
func RunBatchCommand(cmd *cobra.Command, cmdConfig CommandConfig) error {
	if baseDir == "" {
		return fmt.Errorf("--basedir is required")
	}
	root, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", baseDir, err)
	}
	if info, err := os.Stat(root); err != nil {
		return fmt.Errorf("basedir does not exist: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("basedir %s is not a directory", root)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}

	env := Env{
		Tables:   cfg.Tables(),
		FS:       library.OSFS{},
		Resolver: resolver,
		Prober:   newProber(cfg),
		DryRun:   dryRun,
	}
	n := workers
	if n <= 0 {
		n = cmdConfig.Workers(cfg)
	}

	stdout := cmd.OutOrStdout()
	useTUI := showProgress && isTerminal(stdout)

	// Journal lines would tear the progress view, so they are held back
	// until it closes.
	var held bytes.Buffer
	var journalOut io.Writer = stdout
	if useTUI {
		journalOut = &held
	}

	opts := batch.Options{
		Root:    root,
		DryRun:  dryRun,
		Workers: n,
		FS:      env.FS,
		Output:  log.NewOutput(journalOut),
		Process: cmdConfig.Process(env),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	th := theme.Default()
	title := th.Icon(cmdConfig.CommandName) + " " + cmdConfig.Title

	var summary batch.Summary
	var runErr error
	if useTUI {
		summary, runErr = runWithProgress(ctx, title, opts)
		_, _ = stdout.Write(held.Bytes())
	} else {
		summary, runErr = batch.Run(ctx, opts)
	}

	printSummary(stdout, summary, th)

	if dryRun && runErr == nil {
		if err := showPlan(stdout, useTUI, title, summary, th); err != nil {
			return err
		}
	}

	if reportPath != "" {
		if err := log.WriteReport(reportPath, summary.Report(os.Args[1:])); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if watchMode {
		opts.Output = log.NewOutput(stdout)
		return watchLibrary(ctx, opts, watchDebounce)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", summary.Failed, summary.Total)
	}
	return nil
}

// runWithProgress runs the batch behind the full-screen progress view.
func runWithProgress(ctx context.Context, title string, opts batch.Options) (batch.Summary, error) {
	run := func(ctx context.Context, onResult func(batch.Result, batch.Progress)) (batch.Summary, error) {
		opts.OnResult = onResult
		return batch.Run(ctx, opts)
	}
	model := progress.NewBatchProgressModel(ctx, title, run, theme.Default())

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return batch.Summary{}, err
	}
	pm, ok := final.(*progress.BatchProgressModel)
	if !ok {
		return batch.Summary{}, fmt.Errorf("unexpected model type %T after batch", final)
	}
	if !pm.Done() {
		return pm.Summary(), fmt.Errorf("batch interrupted")
	}
	return pm.Summary(), pm.Err()
}

// showPlan presents the changes of a dry run as a tree, interactively when
// the progress view was used.
func showPlan(w io.Writer, interactive bool, title string, summary batch.Summary, th theme.Theme) error {
	nodes, counts := preview.BuildNodes(summary.Results)
	if len(nodes) == 0 {
		return nil
	}
	if interactive {
		model := preview.NewModel(title+" (dry run)", nodes, counts, th)
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}
	out := log.NewOutput(w)
	out.Section("planned changes")
	preview.Print(out, nodes, th)
	return nil
}

// watchLibrary keeps processing item folders that change until ctx is done.
func watchLibrary(ctx context.Context, opts batch.Options, debounce time.Duration) error {
	w, err := watch.New(opts.Root, debounce, func(ctx context.Context, item string) {
		batch.RunOne(ctx, opts, item)
	})
	if err != nil {
		return err
	}
	opts.Output.Section("watching %s, press Ctrl+C to stop", opts.Root)
	return w.Run(ctx)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
