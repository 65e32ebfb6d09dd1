package series

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/log"
	"github.com/Digital-Shane/library-tidy/internal/provider"
	"github.com/Digital-Shane/library-tidy/internal/provider/mocks"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/mock/gomock"
)

var show = provider.Result{Title: "Show", Year: "2001"}

// makeSeries creates dir under a temp root with the given relative files and
// returns its path. Entries ending in "/" are created as empty directories.
func makeSeries(t *testing.T, dir string, files ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), dir)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		full := filepath.Join(path, f)
		if f[len(f)-1] == '/' {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

// tree lists every file and directory under root, relative and sorted.
func tree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		if d.IsDir() {
			rel += "/"
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(out)
	return out
}

func mustNew(t *testing.T, path string, opts Options) *Series {
	t.Helper()
	s, err := New(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("New(%q) error = %v", path, err)
	}
	return s
}

func TestCompliantSeriesIsLeftAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	path := makeSeries(t, "Breaking Bad (2008-2013) [imdbid-tt0903747]",
		"Season 01/Breaking Bad S01E01.mkv",
		"Season 01/Breaking Bad S01E02 Part 1.mkv",
		"Season 02/Breaking Bad S02E01-E02.mp4",
		"Season 02/folder.jpg",
		"Extras/",
	)
	s := mustNew(t, path, Options{})

	if s.NeedsFix() {
		t.Fatal("NeedsFix() = true for compliant series")
	}
	if s.Title != "Breaking Bad" || s.Year != "2008-2013" || s.ID != "tt0903747" {
		t.Errorf("decomposed = %q %q %q", s.Title, s.Year, s.ID)
	}
	if diff := cmp.Diff([]int{1, 2}, s.Seasons()); diff != "" {
		t.Errorf("Seasons() mismatch (-want +got):\n%s", diff)
	}

	plan, err := s.Plan(provider.Result{Title: "Breaking Bad", Year: "2008-2013"})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !plan.Noop() || len(plan.MakeDirs) != 0 {
		t.Errorf("Plan() for canonical series is not a no-op: %+v", plan)
	}

	before := tree(t, path)
	outcome, err := s.Fix(context.Background(), resolver, false)
	if err != nil || outcome != library.OutcomeCompliant {
		t.Fatalf("Fix() = %v, %v; want compliant", outcome, err)
	}
	if diff := cmp.Diff(before, tree(t, path)); diff != "" {
		t.Errorf("tree changed (-want +got):\n%s", diff)
	}
}

func TestOpenEndedYearRange(t *testing.T) {
	path := makeSeries(t, "Show (2019-) [imdbid-tt1234567]", "Season 01/Show S01E01.mkv")
	s := mustNew(t, path, Options{})
	if s.Year != "2019-" || s.NeedsFix() {
		t.Errorf("Year = %q, NeedsFix() = %v", s.Year, s.NeedsFix())
	}
}

func TestRootEpisodeMovesIntoSeasonFolder(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "tt1234567", provider.KindSeries).Return(show, nil).Times(1)

	path := makeSeries(t, "show.imdbid-tt1234567", "Show.S01E02.mkv")
	parent := filepath.Dir(path)
	journal := log.NewJournal()
	s := mustNew(t, path, Options{Journal: journal})

	if !s.NeedsFix() {
		t.Fatal("NeedsFix() = false with an episode at the series root")
	}

	outcome, err := s.Fix(context.Background(), resolver, false)
	if err != nil || outcome != library.OutcomeFixed {
		t.Fatalf("Fix() = %v, %v; want fixed", outcome, err)
	}

	wantPath := filepath.Join(parent, "Show (2001) [imdbid-tt1234567]")
	if s.Path != wantPath {
		t.Errorf("Path = %q, want %q", s.Path, wantPath)
	}
	want := []string{"Season 01/", "Season 01/Show S01E02.mkv"}
	if diff := cmp.Diff(want, tree(t, wantPath)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	ops := journal.Operations()
	if len(ops) != 3 || ops[0].Type != log.OpCreateDir || ops[0].DestPath != filepath.Join(path, "Season 01") {
		t.Errorf("season folder not created first: %+v", ops)
	}

	// Applying again after the in-memory update moves nothing.
	plan, err := s.Plan(show)
	if err != nil || !plan.Noop() || len(plan.MakeDirs) != 0 {
		t.Errorf("Plan() after fix = %+v, %v; want no-op", plan, err)
	}
	if diff := cmp.Diff([]string{filepath.Join("Season 01", "Show S01E02.mkv")}, s.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestFallbackEpisodeMarkers(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "tt1234567", provider.KindSeries).Return(show, nil)

	path := makeSeries(t, "Show (2001) [imdbid-tt1234567]",
		"Season 02/show.e03.mkv",
		"Season 02/show.s02e04-e05.part2.mkv",
		"Season 02/Show S02E01.mkv",
		"show.s03e01.720p.mp4",
	)
	s := mustNew(t, path, Options{})

	ep := s.Episodes[filepath.Join("Season 02", "show.e03.mkv")]
	if ep.Season != 2 || ep.EpisodeFrom != 3 || !ep.HasNumbers {
		t.Errorf("in-season fallback = %+v", ep)
	}

	if _, err := s.Fix(context.Background(), resolver, false); err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	want := []string{
		"Season 02/",
		"Season 02/Show S02E01.mkv",
		"Season 02/Show S02E03.mkv",
		"Season 02/Show S02E04-E05 Part 2.mkv",
		"Season 03/",
		"Season 03/Show S03E01.mp4",
	}
	if diff := cmp.Diff(want, tree(t, s.Path)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestUnpaddedSeasonFolder(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "tt1234567", provider.KindSeries).Return(show, nil)

	path := makeSeries(t, "Show (2001) [imdbid-tt1234567]", "Season 1/Show S01E01.mkv")
	s := mustNew(t, path, Options{})
	if !s.NeedsFix() {
		t.Fatal("NeedsFix() = false with an unpadded season folder")
	}

	if _, err := s.Fix(context.Background(), resolver, false); err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	want := []string{"Season 01/", "Season 01/Show S01E01.mkv", "Season 1/"}
	if diff := cmp.Diff(want, tree(t, s.Path)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	// The emptied legacy folder does not flag the series again.
	again := mustNew(t, s.Path, Options{})
	if again.NeedsFix() {
		t.Error("NeedsFix() = true after fix")
	}
}

func TestMiscasedSeasonFolderIsRenamed(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "tt1234567", provider.KindSeries).Return(show, nil).Times(2)

	files := []string{"season 01/Show S01E01.mkv", "season 01/show.s01e02.mkv"}

	t.Run("dry run plans a folder rename", func(t *testing.T) {
		path := makeSeries(t, "Show (2001) [imdbid-tt1234567]", files...)
		s := mustNew(t, path, Options{})
		if !s.NeedsFix() {
			t.Fatal("NeedsFix() = false with a lower-case season folder")
		}
		plan, err := s.Plan(show)
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(plan.MakeDirs) != 0 {
			t.Errorf("MakeDirs = %v, want none", plan.MakeDirs)
		}
		wantFolders := []library.Rename{{From: "season 01", To: "Season 01"}}
		if diff := cmp.Diff(wantFolders, plan.Folders); diff != "" {
			t.Errorf("Folders mismatch (-want +got):\n%s", diff)
		}
		for _, u := range plan.Units {
			if !strings.HasPrefix(u.From, "Season 01") {
				t.Errorf("unit source %q does not use the renamed folder", u.From)
			}
		}

		if _, err := s.Fix(context.Background(), resolver, true); err != nil {
			t.Fatalf("Fix() error = %v", err)
		}
		if diff := cmp.Diff(append([]string{"season 01/"}, files...), tree(t, path)); diff != "" {
			t.Errorf("dry run changed the tree (-want +got):\n%s", diff)
		}
	})

	t.Run("fix leaves a single season folder", func(t *testing.T) {
		path := makeSeries(t, "Show (2001) [imdbid-tt1234567]", files...)
		s := mustNew(t, path, Options{})
		if _, err := s.Fix(context.Background(), resolver, false); err != nil {
			t.Fatalf("Fix() error = %v", err)
		}
		want := []string{"Season 01/", "Season 01/Show S01E01.mkv", "Season 01/Show S01E02.mkv"}
		if diff := cmp.Diff(want, tree(t, s.Path)); diff != "" {
			t.Errorf("tree mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Season 01/Show S01E01.mkv", "Season 01/Show S01E02.mkv"}, s.Keys()); diff != "" {
			t.Errorf("episode keys mismatch (-want +got):\n%s", diff)
		}
		if mustNew(t, s.Path, Options{}).NeedsFix() {
			t.Error("NeedsFix() = true after fix")
		}
	})
}

func TestSeasonMismatchIsNotAFixTrigger(t *testing.T) {
	path := makeSeries(t, "Show (2001) [imdbid-tt1234567]", "Season 03/Show S04E01.mkv")
	s := mustNew(t, path, Options{})
	if s.NeedsFix() {
		t.Error("NeedsFix() = true for an episode in a foreign season folder")
	}
}

func TestEpisodeWithoutNumbersFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	path := makeSeries(t, "show.imdbid-tt1234567", "Show.S01E01.mkv", "bonus.mkv")
	s := mustNew(t, path, Options{})
	before := tree(t, path)

	outcome, err := s.Fix(context.Background(), resolver, false)
	if !errors.Is(err, library.ErrEpisodeUnknown) || outcome != library.OutcomeNone {
		t.Fatalf("Fix() = %v, %v; want ErrEpisodeUnknown", outcome, err)
	}
	if diff := cmp.Diff(before, tree(t, path)); diff != "" {
		t.Errorf("tree changed (-want +got):\n%s", diff)
	}
}

func TestCollisionMovesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "tt1234567", provider.KindSeries).Return(show, nil)

	path := makeSeries(t, "Show (2001) [imdbid-tt1234567]",
		"Show.S01E01.mkv",
		"Season 01/Show S01E01.mkv",
	)
	s := mustNew(t, path, Options{})
	before := tree(t, path)

	outcome, err := s.Fix(context.Background(), resolver, false)
	if !errors.Is(err, library.ErrCollision) || outcome != library.OutcomeNone {
		t.Fatalf("Fix() = %v, %v; want collision", outcome, err)
	}
	if diff := cmp.Diff(before, tree(t, path)); diff != "" {
		t.Errorf("tree changed (-want +got):\n%s", diff)
	}
}

func TestPlanCreatesEverySeasonInOrder(t *testing.T) {
	path := makeSeries(t, "show.imdbid-tt1234567", "Show.S02E01.mkv", "Show.S01E01.mkv", "Season 03/")
	s := mustNew(t, path, Options{})

	plan, err := s.Plan(show)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Season 01", "Season 02"}, plan.MakeDirs); diff != "" {
		t.Errorf("MakeDirs mismatch (-want +got):\n%s", diff)
	}
	want := []library.Rename{
		{From: "Show.S01E01.mkv", To: filepath.Join("Season 01", "Show S01E01.mkv")},
		{From: "Show.S02E01.mkv", To: filepath.Join("Season 02", "Show S02E01.mkv")},
	}
	if diff := cmp.Diff(want, plan.Units); diff != "" {
		t.Errorf("Units mismatch (-want +got):\n%s", diff)
	}
	if got, want := plan.Dir.To, "Show (2001) [imdbid-tt1234567]"; got != want {
		t.Errorf("Dir.To = %q, want %q", got, want)
	}
}

func TestDryRunChangesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "tt1234567", provider.KindSeries).Return(show, nil)

	path := makeSeries(t, "show.imdbid-tt1234567", "Show.S01E02.mkv")
	journal := log.NewJournal()
	s := mustNew(t, path, Options{Journal: journal})

	outcome, err := s.Fix(context.Background(), resolver, true)
	if err != nil || outcome != library.OutcomePlanned {
		t.Fatalf("Fix() = %v, %v; want planned", outcome, err)
	}
	if diff := cmp.Diff([]string{"Show.S01E02.mkv"}, tree(t, path)); diff != "" {
		t.Errorf("tree changed (-want +got):\n%s", diff)
	}
	if s.Path != path || !s.NeedsFix() {
		t.Errorf("dry run mutated state: path=%q needsFix=%v", s.Path, s.NeedsFix())
	}

	want := []string{
		"??? " + path,
		"+++ mkdir <" + filepath.Join(path, "Season 01") + ">",
		"+++ <Show.S01E02.mkv> ==> <" + filepath.Join("Season 01", "Show S01E02.mkv") + ">",
		"+++ <show.imdbid-tt1234567> ==> <Show (2001) [imdbid-tt1234567]>",
	}
	if diff := cmp.Diff(want, journal.Lines()); diff != "" {
		t.Errorf("journal mismatch (-want +got):\n%s", diff)
	}
}

func TestSeriesWithoutIdentifierIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	path := makeSeries(t, "Show (2001)", "Show.S01E01.mkv")
	s := mustNew(t, path, Options{})

	if s.NeedsFix() {
		t.Error("NeedsFix() = true without identifier")
	}
	outcome, err := s.Fix(context.Background(), resolver, false)
	if err != nil || outcome != library.OutcomeSkipped {
		t.Errorf("Fix() = %v, %v; want skipped", outcome, err)
	}
}

func TestEpisodePath(t *testing.T) {
	tests := []struct {
		ep   Episode
		want string
	}{
		{Episode{Season: 1, EpisodeFrom: 2, Extension: "mkv"}, "Season 01/Show S01E02.mkv"},
		{Episode{Season: 10, EpisodeFrom: 101, EpisodeTo: 102, Extension: "mp4"}, "Season 10/Show S10E101-E102.mp4"},
		{Episode{Season: 3, EpisodeFrom: 4, Part: 2, Extension: "avi"}, "Season 03/Show S03E04 Part 2.avi"},
	}
	for _, tc := range tests {
		if got := filepath.ToSlash(EpisodePath("Show", tc.ep)); got != tc.want {
			t.Errorf("EpisodePath(%+v) = %q, want %q", tc.ep, got, tc.want)
		}
	}
}
