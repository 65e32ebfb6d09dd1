// Package series decomposes TV series folders into episodes, decides whether
// they follow the library naming grammar and relocates every episode into
// its canonical season folder.
package series

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/log"
)

// Episode is one playable file of a series. EpisodeTo and Part are zero
// when absent.
type Episode struct {
	Title       string
	Season      int
	EpisodeFrom int
	EpisodeTo   int
	Part        int
	Extension   string

	// HasNumbers is false when neither the strict grammar nor any fallback
	// marker yielded a season and episode number.
	HasNumbers bool
}

// Options carries the collaborators a Series needs.
type Options struct {
	FS      library.FS
	Tables  library.Tables
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

// Series is one series folder with its season folders and episodes.
type Series struct {
	Path   string
	Name   string
	Parent string
	Title  string
	Year   string
	ID     string

	// Episodes is keyed by path relative to Path, including the season
	// folder when there is one.
	Episodes map[string]*Episode

	seasonDirs map[string]bool
	miscased   map[string]string
	flagged    bool
	opts       Options
	grammar    grammar
}

// New decomposes the series folder at path. Only a failure to list a folder
// is an error.
func New(ctx context.Context, path string, opts Options) (*Series, error) {
	opts = opts.withDefaults()
	s := &Series{
		Path:       path,
		Name:       filepath.Base(path),
		Parent:     filepath.Dir(path),
		Episodes:   make(map[string]*Episode),
		seasonDirs: make(map[string]bool),
		miscased:   make(map[string]string),
		opts:       opts,
		grammar:    newGrammar(opts.Tables),
	}
	opts.Journal.Infof("%s", path)

	if err := s.decompose(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NeedsFix reports whether the series must be renamed. Episodes carry no
// year, so only their titles are compared.
func (s *Series) NeedsFix() bool {
	if !s.flagged {
		s.flagged = s.Title == "" || s.Year == "" || s.episodesDiverge()
	}
	return s.flagged && s.ID != ""
}

func (s *Series) episodesDiverge() bool {
	for _, ep := range s.Episodes {
		if ep.Title != s.Title {
			return true
		}
	}
	return false
}

// Keys returns the episode keys in sorted order.
func (s *Series) Keys() []string {
	keys := make([]string, 0, len(s.Episodes))
	for k := range s.Episodes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Seasons returns the distinct season numbers of all episodes, ascending.
func (s *Series) Seasons() []int {
	var seasons []int
	for _, ep := range s.Episodes {
		if ep.HasNumbers && !slices.Contains(seasons, ep.Season) {
			seasons = append(seasons, ep.Season)
		}
	}
	slices.Sort(seasons)
	return seasons
}
