package movie

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/library"
)

type grammar struct {
	dir        *regexp.Regexp
	file       *regexp.Regexp
	resolution *regexp.Regexp
}

func newGrammar(t library.Tables) grammar {
	ladder, exts := t.LadderPattern(), t.ExtensionPattern()
	return grammar{
		dir: regexp.MustCompile(
			`(?i)^(?P<title>.+) \((?P<year>(?:19|20)\d{2})\) \[(?-i:imdbid-(?P<id>tt\d+))\]$`),
		file: regexp.MustCompile(
			`(?i)^(?P<title>.+) \((?P<year>(?:19|20)\d{2})\) ` +
				`(?:\[3D\.(?P<format>FTAB|HSBS|FSBS)\] )?` +
				`(?:\[Part (?P<part>\d+)\] )?` +
				`- \[(?P<resolution>(?:` + ladder + `)[pi])\]` +
				`\.(?P<ext>` + exts + `)$`),
		resolution: regexp.MustCompile(
			`(?i)(?:^|[^0-9a-z])(?P<resolution>(?:` + ladder + `)[pi])(?:[^0-9a-z]|$)`),
	}
}

func (m *Movie) decompose(ctx context.Context) error {
	j := m.opts.Journal

	if g := library.Submatches(m.grammar.dir, m.Name); g != nil {
		m.Title, m.Year, m.ID = g["title"], g["year"], g["id"]
	} else {
		m.flagged = true
		m.ID = library.FindIdentifier(m.Name)
	}

	if m.ID == "" {
		j.Warnf("Please include [imdbid-ttXXXXXXX] in the folder name")
		j.LogSkip(m.Path, library.ErrNoIdentifier)
		return nil
	}

	entries, err := m.opts.FS.ScanDirectory(m.Path)
	if err != nil {
		return fmt.Errorf("scan %s: %w", m.Path, err)
	}
	for _, e := range entries {
		if !e.IsFile || !m.opts.Tables.IsVideo(e.Name) {
			continue
		}
		m.Media[e.Name] = m.parseMedium(ctx, e.Name)
	}
	return nil
}

func (m *Movie) parseMedium(ctx context.Context, name string) *Medium {
	if g := library.Submatches(m.grammar.file, name); g != nil {
		format := strings.ToUpper(g["format"])
		return &Medium{
			Title:      g["title"],
			Year:       g["year"],
			Resolution: g["resolution"],
			Extension:  g["ext"],
			Part:       library.Number(g["part"]),
			Is3D:       format != "",
			Format3D:   format,
		}
	}

	m.flagged = true
	format := library.Find3DFormat(name)
	med := &Medium{
		Extension: library.Extension(name),
		Part:      library.FindPart(name),
		Is3D:      format != "",
		Format3D:  format,
	}
	if g := library.Submatches(m.grammar.resolution, name); g != nil {
		med.Resolution = strings.ToLower(g["resolution"])
		return med
	}

	med.Resolution, med.ResolutionErr = m.probeResolution(ctx, name)
	if med.ResolutionErr != nil {
		m.opts.Journal.Warnf("cannot determine resolution of <%s>: %v", name, med.ResolutionErr)
	}
	return med
}

func (m *Movie) probeResolution(ctx context.Context, name string) (string, error) {
	if m.opts.Prober == nil {
		return "", fmt.Errorf("%w: no prober configured", library.ErrResolutionUnknown)
	}
	height, err := m.opts.Prober.Height(ctx, filepath.Join(m.Path, name))
	if err != nil {
		return "", err
	}
	return m.opts.Tables.Snap(height)
}
