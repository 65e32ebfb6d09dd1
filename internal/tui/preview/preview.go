// Package preview shows the changes a dry run would make as a tree: one node
// per library item, its season folders below it and the files below those.
package preview

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/batch"
	"github.com/Digital-Shane/library-tidy/internal/log"
	"github.com/Digital-Shane/treeview"
)

// Kind tells what a node of the plan tree stands for.
type Kind int

const (
	KindItem Kind = iota
	KindFolder
	KindFile
)

// Entry is the data behind one node. From is empty for folders the plan
// creates.
type Entry struct {
	Kind Kind
	From string
	To   string
	New  bool
	Err  string
}

// Changed reports whether the entry is renamed or created.
func (e Entry) Changed() bool {
	return e.New || e.From != e.To
}

// Label is the text shown for an entry: "new ← old" for a rename.
func Label(e Entry) string {
	switch {
	case e.Err != "":
		return fmt.Sprintf("%s: %s", e.From, e.Err)
	case e.New:
		return "[NEW] " + e.To
	case e.From != e.To:
		return fmt.Sprintf("%s ← %s", e.To, e.From)
	}
	return e.To
}

// Counts summarizes a plan tree.
type Counts struct {
	Items      int
	Renames    int
	NewFolders int
	Failed     int
}

// itemBuilder collects the nodes of one item in plan order.
type itemBuilder struct {
	root    string
	node    *treeview.Node[Entry]
	folders map[string]*treeview.Node[Entry]
	order   []string
	files   []*treeview.Node[Entry]
}

func (b *itemBuilder) folder(name string) *treeview.Node[Entry] {
	if n, ok := b.folders[name]; ok {
		return n
	}
	n := treeview.NewNode(filepath.Join(b.root, name), name, Entry{Kind: KindFolder, From: name, To: name})
	b.folders[name] = n
	b.order = append(b.order, name)
	return n
}

// BuildNodes turns the recorded operations of a dry run into tree nodes.
// Items without planned changes or errors are left out.
func BuildNodes(results []batch.Result) ([]*treeview.Node[Entry], Counts) {
	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b batch.Result) int { return strings.Compare(a.Path, b.Path) })

	var nodes []*treeview.Node[Entry]
	var counts Counts
	for _, res := range sorted {
		node, n := buildItem(res)
		if node == nil {
			continue
		}
		nodes = append(nodes, node)
		counts.Items++
		counts.Renames += n.Renames
		counts.NewFolders += n.NewFolders
		counts.Failed += n.Failed
	}
	return nodes, counts
}

func buildItem(res batch.Result) (*treeview.Node[Entry], Counts) {
	var counts Counts
	root := res.Path
	name := filepath.Base(root)
	item := Entry{Kind: KindItem, From: name, To: name}
	if res.Err != nil {
		item.Err = res.Err.Error()
		counts.Failed++
	}

	// Folder renames are recognized by their target holding other targets.
	targetDirs := make(map[string]bool)
	for _, op := range res.Operations {
		switch {
		case op.Type == log.OpCreateDir:
			targetDirs[rel(root, op.DestPath)] = true
		case op.Type == log.OpRename && op.SourcePath != root:
			if dir := filepath.Dir(rel(root, op.DestPath)); dir != "." {
				targetDirs[dir] = true
			}
		}
	}

	b := &itemBuilder{root: root, folders: make(map[string]*treeview.Node[Entry])}
	for _, op := range res.Operations {
		switch op.Type {
		case log.OpCreateDir:
			n := b.folder(rel(root, op.DestPath))
			n.Data().From, n.Data().New = "", true
			counts.NewFolders++
		case log.OpRename:
			if op.SourcePath == root {
				item.To = filepath.Base(op.DestPath)
				counts.Renames++
				continue
			}
			from, to := rel(root, op.SourcePath), rel(root, op.DestPath)
			if from != to {
				counts.Renames++
			}
			if targetDirs[to] {
				b.folder(to).Data().From = from
				continue
			}
			file := treeview.NewNode(op.DestPath, filepath.Base(to), Entry{Kind: KindFile, From: from, To: filepath.Base(to)})
			if errMsg := op.Error; errMsg != "" {
				file.Data().Err = errMsg
			}
			if dir := filepath.Dir(to); dir != "." {
				b.folder(dir).AddChild(file)
				continue
			}
			b.files = append(b.files, file)
		}
	}

	if item.Err == "" && !item.Changed() && counts.Renames == 0 && counts.NewFolders == 0 {
		return nil, Counts{}
	}
	node := treeview.NewNode(root, item.To, item)
	for _, name := range b.order {
		node.AddChild(b.folders[name])
	}
	for _, f := range b.files {
		node.AddChild(f)
	}
	return node, counts
}

func rel(root, path string) string {
	r, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return r
}
