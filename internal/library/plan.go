package library

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/log"
)

// Rename pairs a current name with its canonical target.
type Rename struct {
	From string
	To   string
}

// Noop reports whether the rename leaves the name unchanged.
func (r Rename) Noop() bool {
	return r.From == r.To
}

// Plan is the complete set of changes computed for one library item.
// Folder, unit and MakeDirs names are relative to the item directory; Dir
// holds leaf names inside Parent. Unit sources already use the renamed
// folder names.
type Plan struct {
	Parent   string
	Dir      Rename
	Folders  []Rename
	MakeDirs []string
	Units    []Rename
}

// Root is the current absolute path of the item directory.
func (p Plan) Root() string {
	return filepath.Join(p.Parent, p.Dir.From)
}

// Target is the absolute path of the item directory once the plan is applied.
func (p Plan) Target() string {
	return filepath.Join(p.Parent, p.Dir.To)
}

// Noop reports whether applying the plan would move nothing.
func (p Plan) Noop() bool {
	if !p.Dir.Noop() {
		return false
	}
	for _, f := range p.Folders {
		if !f.Noop() {
			return false
		}
	}
	for _, u := range p.Units {
		if !u.Noop() {
			return false
		}
	}
	return true
}

// Collisions lists every target claimed by more than one unit.
func (p Plan) Collisions() []string {
	seen := make(map[string]int, len(p.Units))
	for _, u := range p.Units {
		seen[u.To]++
	}
	var dup []string
	for target, n := range seen {
		if n > 1 {
			dup = append(dup, target)
		}
	}
	slices.Sort(dup)
	return dup
}

// Check fails with ErrCollision when two units share a target.
func (p Plan) Check() error {
	if dup := p.Collisions(); len(dup) > 0 {
		return fmt.Errorf("%w: %s", ErrCollision, strings.Join(dup, ", "))
	}
	return nil
}

// Hooks lets the owner of a plan mirror each successful filesystem step in
// memory. Every hook is optional.
type Hooks struct {
	MovedFolder func(r Rename)
	MadeDir     func(rel string)
	Moved       func(r Rename)
	Renamed     func(newPath string)
}

// Executor applies plans. With DryRun set it reports the plan and leaves
// both the disk and the hooks untouched.
type Executor struct {
	FS      FS
	Journal *log.Journal
	DryRun  bool
}

// Apply runs the plan in order: folder renames, season directories, units,
// then the item directory. The first failure stops the run; completed steps
// stay applied.
func (e Executor) Apply(p Plan, h Hooks) error {
	if err := p.Check(); err != nil {
		return err
	}
	fsys := e.FS
	if fsys == nil {
		fsys = OSFS{}
	}
	root := p.Root()

	for _, f := range p.Folders {
		if f.Noop() {
			continue
		}
		e.Journal.Rename(f.From, f.To)
		oldPath, newPath := filepath.Join(root, f.From), filepath.Join(root, f.To)
		if e.DryRun {
			e.Journal.LogRename(oldPath, newPath, true, nil)
			continue
		}
		if err := fsys.Move(oldPath, newPath); err != nil {
			e.Journal.LogRename(oldPath, newPath, false, err)
			e.Journal.Warnf("move <%s> failed: %v", f.From, err)
			return fmt.Errorf("move %s: %w", f.From, err)
		}
		e.Journal.LogRename(oldPath, newPath, false, nil)
		if h.MovedFolder != nil {
			h.MovedFolder(f)
		}
	}

	for _, rel := range p.MakeDirs {
		path := filepath.Join(root, rel)
		e.Journal.MakeDir(path)
		if e.DryRun {
			e.Journal.LogCreateDir(path, true, nil)
			continue
		}
		if err := fsys.MakeDirectory(path, true); err != nil {
			e.Journal.LogCreateDir(path, false, err)
			e.Journal.Warnf("mkdir <%s> failed: %v", path, err)
			return fmt.Errorf("mkdir %s: %w", path, err)
		}
		e.Journal.LogCreateDir(path, false, nil)
		if h.MadeDir != nil {
			h.MadeDir(rel)
		}
	}

	for _, u := range p.Units {
		if u.Noop() {
			e.Journal.Notef("no change for identical old/new unit <%s>", u.From)
			continue
		}
		e.Journal.Rename(u.From, u.To)
		oldPath, newPath := filepath.Join(root, u.From), filepath.Join(root, u.To)
		if e.DryRun {
			e.Journal.LogRename(oldPath, newPath, true, nil)
			continue
		}
		if err := fsys.Move(oldPath, newPath); err != nil {
			e.Journal.LogRename(oldPath, newPath, false, err)
			e.Journal.Warnf("move <%s> failed: %v", u.From, err)
			return fmt.Errorf("move %s: %w", u.From, err)
		}
		e.Journal.LogRename(oldPath, newPath, false, nil)
		if h.Moved != nil {
			h.Moved(u)
		}
	}

	if p.Dir.Noop() {
		e.Journal.Notef("no change for identical directory <%s>", p.Dir.From)
		return nil
	}
	e.Journal.Rename(p.Dir.From, p.Dir.To)
	target := p.Target()
	if e.DryRun {
		e.Journal.LogRename(root, target, true, nil)
		return nil
	}
	if err := fsys.Move(root, target); err != nil {
		e.Journal.LogRename(root, target, false, err)
		e.Journal.Warnf("move <%s> failed: %v", p.Dir.From, err)
		return fmt.Errorf("move %s: %w", p.Dir.From, err)
	}
	e.Journal.LogRename(root, target, false, nil)
	if h.Renamed != nil {
		h.Renamed(target)
	}
	return nil
}
