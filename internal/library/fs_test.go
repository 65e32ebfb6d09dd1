package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOSFSScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.mkv"), "")
	writeFile(t, filepath.Join(dir, "Season 01", "a.mkv"), "")

	entries, err := OSFS{}.ScanDirectory(dir)
	if err != nil {
		t.Fatalf("ScanDirectory() error: %v", err)
	}
	want := []Entry{
		{Name: "Season 01", IsDir: true},
		{Name: "b.mkv", IsFile: true},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("ScanDirectory() mismatch (-want +got):\n%s", diff)
	}
}

func TestOSFSMoveRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "dst.mkv")
	writeFile(t, src, "source")
	writeFile(t, dst, "existing")

	err := OSFS{}.Move(src, dst)
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("Move() error = %v, want ErrDestinationExists", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "existing" {
		t.Errorf("destination overwritten: %q", data)
	}
}

func TestOSFSMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "Season 01", "dst.mkv")
	writeFile(t, src, "x")
	if err := (OSFS{}).MakeDirectory(filepath.Dir(dst), true); err != nil {
		t.Fatalf("MakeDirectory() error: %v", err)
	}
	if err := (OSFS{}).MakeDirectory(filepath.Dir(dst), true); err != nil {
		t.Fatalf("MakeDirectory() existOK error: %v", err)
	}
	if err := (OSFS{}).MakeDirectory(filepath.Dir(dst), false); err == nil {
		t.Error("MakeDirectory() on existing dir without existOK succeeded")
	}

	if err := (OSFS{}).Move(src, dst); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination missing: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still present: %v", err)
	}
}
