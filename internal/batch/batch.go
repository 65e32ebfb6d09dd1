// Package batch runs a library pipeline over every item folder below a root
// directory, in parallel, and summarizes the outcomes.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/log"
	"github.com/mhmtszr/concurrent-swiss-map"
	"golang.org/x/sync/errgroup"
)

// Default worker counts per pipeline.
const (
	DefaultMovieWorkers  = 10
	DefaultSeriesWorkers = 4
)

// ProcessFunc runs the full pipeline for the item folder at path, writing
// its diagnostics to j.
type ProcessFunc func(ctx context.Context, path string, j *log.Journal) (library.Outcome, error)

// Options configures a batch run.
type Options struct {
	Root    string
	DryRun  bool
	Workers int
	FS      library.FS
	Output  *log.Output
	Process ProcessFunc

	// OnResult, when set, is called from worker goroutines after each item.
	OnResult func(Result, Progress)
}

// Result is the outcome of one item.
type Result struct {
	Path       string
	Outcome    library.Outcome
	Err        error
	Elapsed    time.Duration
	Operations []log.OperationLog
}

// Succeeded reports whether the item finished without an error. Skipped
// items count as successes.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Progress is a snapshot of the run taken after an item finished.
type Progress struct {
	Total  int
	Done   int
	Failed int
	Last   string
}

// Summary aggregates a whole run.
type Summary struct {
	Root      string
	DryRun    bool
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Fixed     int
	Started   time.Time
	Finished  time.Time
	Results   []Result
}

// Elapsed is the wall-clock duration of the run.
func (s Summary) Elapsed() time.Duration {
	return s.Finished.Sub(s.Started)
}

// Candidates lists the immediate, non-hidden subdirectories of root in name order.
func Candidates(fsys library.FS, root string) ([]string, error) {
	if fsys == nil {
		fsys = library.OSFS{}
	}
	entries, err := fsys.ScanDirectory(root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir || strings.HasPrefix(e.Name, ".") {
			continue
		}
		paths = append(paths, filepath.Join(root, e.Name))
	}
	slices.Sort(paths)
	return paths, nil
}

// Run processes every candidate below opts.Root. Item failures are recorded
// in the summary and never stop sibling items; only a failure to list the
// root is returned as an error.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Process == nil {
		return Summary{}, fmt.Errorf("batch: no process function")
	}
	if opts.Output == nil {
		opts.Output = log.Discard()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	summary := Summary{Root: opts.Root, DryRun: opts.DryRun, Started: time.Now()}
	paths, err := Candidates(opts.FS, opts.Root)
	if err != nil {
		return summary, err
	}
	summary.Total = len(paths)
	opts.Output.Section("basedir=%q dryrun=%t items=%d", opts.Root, opts.DryRun, len(paths))

	results := csmap.Create[string, Result]()
	var done, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		g.Go(func() error {
			res := runItem(gctx, opts, path)
			results.Store(path, res)

			if !res.Succeeded() {
				failed.Add(1)
			}
			n := done.Add(1)
			if opts.OnResult != nil {
				opts.OnResult(res, Progress{
					Total:  len(paths),
					Done:   int(n),
					Failed: int(failed.Load()),
					Last:   path,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	results.Range(func(_ string, res Result) bool {
		summary.Results = append(summary.Results, res)
		return false
	})
	slices.SortFunc(summary.Results, func(a, b Result) int {
		return strings.Compare(a.Path, b.Path)
	})
	for _, res := range summary.Results {
		switch {
		case !res.Succeeded():
			summary.Failed++
		case res.Outcome == library.OutcomeSkipped:
			summary.Skipped++
			summary.Succeeded++
		case res.Outcome == library.OutcomeFixed || res.Outcome == library.OutcomePlanned:
			summary.Fixed++
			summary.Succeeded++
		default:
			summary.Succeeded++
		}
	}
	summary.Finished = time.Now()

	opts.Output.Section("%d/%d items processed successfully in %s",
		summary.Succeeded, summary.Total, summary.Elapsed().Round(time.Millisecond))
	return summary, ctx.Err()
}

// RunOne processes a single item folder outside of a batch run.
func RunOne(ctx context.Context, opts Options, path string) Result {
	if opts.Output == nil {
		opts.Output = log.Discard()
	}
	if opts.Process == nil {
		return Result{Path: path, Err: fmt.Errorf("batch: no process function")}
	}
	return runItem(ctx, opts, path)
}

func runItem(ctx context.Context, opts Options, path string) (res Result) {
	j := opts.Output.Journal(path)
	start := time.Now()
	res.Path = path

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = library.OutcomeNone
			res.Err = fmt.Errorf("panic processing %s: %v\n%s", path, r, debug.Stack())
			j.Warnf("%v", r)
		}
		res.Elapsed = time.Since(start)
		res.Operations = j.Operations()
		j.Flush()
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	res.Outcome, res.Err = opts.Process(ctx, path, j)
	if res.Err != nil {
		res.Outcome = library.OutcomeNone
		j.Warnf("%s failed: %v", filepath.Base(path), res.Err)
	}
	return res
}
