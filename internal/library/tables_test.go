package library

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewTablesNormalizes(t *testing.T) {
	tables := NewTables([]string{".MKV", "mp4", "mkv", " "}, []int{1080, 480, 1080, -1})

	if diff := cmp.Diff([]string{"mkv", "mp4"}, tables.Extensions()); diff != "" {
		t.Errorf("Extensions() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{480, 1080}, tables.Ladder()); diff != "" {
		t.Errorf("Ladder() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTablesDefaults(t *testing.T) {
	tables := NewTables(nil, nil)
	if tables.IsZero() {
		t.Fatal("IsZero() = true for default tables")
	}
	if diff := cmp.Diff(DefaultExtensions(), tables.Extensions()); diff != "" {
		t.Errorf("Extensions() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultResolutions(), tables.Ladder()); diff != "" {
		t.Errorf("Ladder() mismatch (-want +got):\n%s", diff)
	}
	if !(Tables{}).IsZero() {
		t.Error("IsZero() = false for zero Tables")
	}
}

func TestTablesAccessorsReturnCopies(t *testing.T) {
	tables := DefaultTables()
	ladder := tables.Ladder()
	ladder[0] = 9999
	if tables.Ladder()[0] == 9999 {
		t.Error("Ladder() exposes internal slice")
	}
}

func TestTablesIsVideo(t *testing.T) {
	tables := DefaultTables()
	tests := []struct {
		name string
		want bool
	}{
		{"Vertigo (1958) - [1080p].mkv", true},
		{"movie.MKV", true},
		{"clip.Mp4", true},
		{"poster.jpg", false},
		{"movie.nfo", false},
		{"noext", false},
		{"Season 01", false},
	}
	for _, tc := range tests {
		if got := tables.IsVideo(tc.name); got != tc.want {
			t.Errorf("IsVideo(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTablesPatterns(t *testing.T) {
	tables := DefaultTables()
	if got, want := tables.LadderPattern(), "2160|1080|720|480|360"; got != want {
		t.Errorf("LadderPattern() = %q, want %q", got, want)
	}
	if got, want := tables.ExtensionPattern(), "mkv|mp4|avi|ts|wmv"; got != want {
		t.Errorf("ExtensionPattern() = %q, want %q", got, want)
	}
}

func TestTablesSnap(t *testing.T) {
	tables := DefaultTables()
	tests := []struct {
		height  int
		want    string
		wantErr error
	}{
		{height: 1080, want: "1080p"},
		{height: 1, want: "360p"},
		{height: 360, want: "360p"},
		{height: 361, want: "480p"},
		{height: 800, want: "1080p"},
		{height: 1600, want: "2160p"},
		{height: 2160, want: "2160p"},
		{height: 0, wantErr: ErrResolutionUnknown},
		{height: -5, wantErr: ErrResolutionUnknown},
		{height: 4320, wantErr: ErrAboveLadder},
	}
	for _, tc := range tests {
		got, err := tables.Snap(tc.height)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Snap(%d) error = %v, want %v", tc.height, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Snap(%d) unexpected error: %v", tc.height, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Snap(%d) = %q, want %q", tc.height, got, tc.want)
		}
	}
}

func TestTablesSnapAboveLadderMentionsHeight(t *testing.T) {
	_, err := DefaultTables().Snap(4320)
	if err == nil || err.Error() != "height exceeds the resolution ladder: 4320p" {
		t.Errorf("Snap(4320) error = %v", err)
	}
}
