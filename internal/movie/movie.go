// Package movie decomposes single-movie folders, decides whether they follow
// the library naming grammar and renames them when they do not.
package movie

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/log"
	"github.com/Digital-Shane/library-tidy/internal/provider"
)

// Medium is one playable file of a movie.
type Medium struct {
	Title      string
	Year       string
	Resolution string
	Extension  string
	Part       int
	Is3D       bool
	Format3D   string

	// ResolutionErr is set when the resolution could neither be read from
	// the file name nor probed.
	ResolutionErr error
}

// Options carries the collaborators a Movie needs.
type Options struct {
	FS      library.FS
	Tables  library.Tables
	Prober  provider.Prober
	Journal *log.Journal
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = library.OSFS{}
	}
	if o.Tables.IsZero() {
		o.Tables = library.DefaultTables()
	}
	if o.Journal == nil {
		o.Journal = log.NewJournal()
	}
	return o
}

// Movie is one movie folder and the media files directly inside it.
type Movie struct {
	Path   string
	Name   string
	Parent string
	Title  string
	Year   string
	ID     string

	// Media is keyed by file name relative to Path.
	Media map[string]*Medium

	flagged bool
	opts    Options
	grammar grammar
}

// New decomposes the movie folder at path. Only a failure to list the folder
// is an error; names that do not parse leave fields empty and flag the movie.
func New(ctx context.Context, path string, opts Options) (*Movie, error) {
	opts = opts.withDefaults()
	m := &Movie{
		Path:    path,
		Name:    filepath.Base(path),
		Parent:  filepath.Dir(path),
		Media:   make(map[string]*Medium),
		opts:    opts,
		grammar: newGrammar(opts.Tables),
	}
	opts.Journal.Infof("%s", path)

	if err := m.decompose(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// NeedsFix reports whether the movie must be renamed. Once true it stays true
// until a successful fix. A movie without an id never needs a fix since it
// can never be resolved.
func (m *Movie) NeedsFix() bool {
	if !m.flagged {
		m.flagged = m.Title == "" || m.Year == "" || m.mediaDiverge()
	}
	return m.flagged && m.ID != ""
}

func (m *Movie) mediaDiverge() bool {
	for _, med := range m.Media {
		if med.Title != m.Title || med.Year != m.Year {
			return true
		}
	}
	return false
}

// Keys returns the media keys in sorted order.
func (m *Movie) Keys() []string {
	keys := make([]string, 0, len(m.Media))
	for k := range m.Media {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
