package preview

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Digital-Shane/library-tidy/internal/batch"
	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/log"
	"github.com/Digital-Shane/library-tidy/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/google/go-cmp/cmp"
)

func asciiTheme() theme.Theme {
	return theme.New(theme.WithIconSet(theme.IconSet{
		"failed":    "[!]",
		"folder":    "[D]",
		"newfolder": "[N]",
		"file":      "[F]",
	}))
}

func rename(from, to string) log.OperationLog {
	return log.OperationLog{Type: log.OpRename, SourcePath: from, DestPath: to, DryRun: true, Success: true}
}

func mkdir(path string) log.OperationLog {
	return log.OperationLog{Type: log.OpCreateDir, DestPath: path, DryRun: true, Success: true}
}

func dryRunResults() []batch.Result {
	show := "/lib/show.imdbid-tt1"
	return []batch.Result{
		{
			Path:    "/lib/vertigo",
			Outcome: library.OutcomePlanned,
			Operations: []log.OperationLog{
				rename("/lib/vertigo/vertigo.mkv", "/lib/vertigo/Vertigo (1958) - [1080p].mkv"),
				rename("/lib/vertigo", "/lib/Vertigo (1958) [imdbid-tt0052357]"),
			},
		},
		{Path: "/lib/compliant", Outcome: library.OutcomeCompliant},
		{Path: "/lib/untagged", Outcome: library.OutcomeSkipped, Operations: []log.OperationLog{
			{Type: log.OpSkip, SourcePath: "/lib/untagged", Success: true, Reason: "no id"},
		}},
		{
			Path:    show,
			Outcome: library.OutcomePlanned,
			Operations: []log.OperationLog{
				rename(show+"/season 01", show+"/Season 01"),
				mkdir(show + "/Season 02"),
				rename(show+"/Season 01/show.s01e01.mkv", show+"/Season 01/Show S01E01.mkv"),
				rename(show+"/Show.S02E01.mkv", show+"/Season 02/Show S02E01.mkv"),
				rename(show, "/lib/Show (2001) [imdbid-tt1]"),
			},
		},
		{Path: "/lib/broken", Err: errors.New("quota exceeded")},
	}
}

// outline flattens nodes into indented labels.
func outline(nodes []*treeview.Node[Entry]) []string {
	var out []string
	var walk func(n *treeview.Node[Entry], depth int)
	walk = func(n *treeview.Node[Entry], depth int) {
		out = append(out, strings.Repeat("  ", depth)+Label(*n.Data()))
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}
	return out
}

func TestBuildNodes(t *testing.T) {
	nodes, counts := BuildNodes(dryRunResults())

	want := []string{
		"broken: quota exceeded",
		"Show (2001) [imdbid-tt1] ← show.imdbid-tt1",
		"  Season 01 ← season 01",
		"    Show S01E01.mkv ← Season 01/show.s01e01.mkv",
		"  [NEW] Season 02",
		"    Show S02E01.mkv ← Show.S02E01.mkv",
		"Vertigo (1958) [imdbid-tt0052357] ← vertigo",
		"  Vertigo (1958) - [1080p].mkv ← vertigo.mkv",
	}
	if diff := cmp.Diff(want, outline(nodes)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Counts{Items: 3, Renames: 6, NewFolders: 1, Failed: 1}, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildNodesKindsAndIDs(t *testing.T) {
	nodes, _ := BuildNodes(dryRunResults())
	show := nodes[1]
	if show.Data().Kind != KindItem || show.ID() != "/lib/show.imdbid-tt1" {
		t.Fatalf("item node = %q %+v", show.ID(), *show.Data())
	}
	folders := show.Children()
	if len(folders) != 2 {
		t.Fatalf("item has %d children, want 2", len(folders))
	}
	for _, f := range folders {
		if f.Data().Kind != KindFolder {
			t.Errorf("child %q kind = %v, want KindFolder", f.Name(), f.Data().Kind)
		}
	}
	if !folders[1].Data().New || folders[0].Data().New {
		t.Error("only the created season folder is marked new")
	}
	if file := folders[1].Children()[0]; file.Data().Kind != KindFile {
		t.Errorf("episode kind = %v, want KindFile", file.Data().Kind)
	}
}

func TestBuildNodesEmpty(t *testing.T) {
	nodes, counts := BuildNodes([]batch.Result{{Path: "/lib/a", Outcome: library.OutcomeCompliant}})
	if len(nodes) != 0 || counts != (Counts{}) {
		t.Errorf("BuildNodes() = %d nodes, %+v; want nothing", len(nodes), counts)
	}
}

func TestLabel(t *testing.T) {
	tests := map[string]struct {
		entry Entry
		want  string
	}{
		"unchanged": {Entry{From: "Season 01", To: "Season 01"}, "Season 01"},
		"renamed":   {Entry{From: "a.mkv", To: "A (2000).mkv"}, "A (2000).mkv ← a.mkv"},
		"created":   {Entry{To: "Season 02", New: true}, "[NEW] Season 02"},
		"failed":    {Entry{From: "x", To: "y", Err: "boom"}, "x: boom"},
	}
	for name, tc := range tests {
		if got := Label(tc.entry); got != tc.want {
			t.Errorf("%s: Label() = %q, want %q", name, got, tc.want)
		}
	}
}

func TestPrint(t *testing.T) {
	nodes, _ := BuildNodes(dryRunResults()[:1])
	var buf bytes.Buffer
	Print(log.NewOutput(&buf), nodes, asciiTheme())

	want := "[D] Vertigo (1958) [imdbid-tt0052357] ← vertigo\n" +
		"  [F] Vertigo (1958) - [1080p].mkv ← vertigo.mkv\n"
	if got := buf.String(); got != want {
		t.Errorf("Print() =\n%s\nwant\n%s", got, want)
	}
}
