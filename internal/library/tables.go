package library

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// DefaultExtensions is the video container allow-list used when none is configured.
func DefaultExtensions() []string {
	return []string{"mkv", "mp4", "avi", "ts", "wmv"}
}

// DefaultResolutions is the resolution ladder used when none is configured.
func DefaultResolutions() []int {
	return []int{360, 480, 720, 1080, 2160}
}

// Tables holds the fixed grammar tables both pipelines are parameterized by.
// A Tables value is immutable; accessors hand out copies.
type Tables struct {
	extensions []string
	ladder     []int
}

// NewTables normalizes the allow-list to lower case and the ladder to
// ascending unique positive values. Empty inputs fall back to the defaults.
func NewTables(extensions []string, ladder []int) Tables {
	var t Tables
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" && !slices.Contains(t.extensions, ext) {
			t.extensions = append(t.extensions, ext)
		}
	}
	for _, h := range ladder {
		if h > 0 && !slices.Contains(t.ladder, h) {
			t.ladder = append(t.ladder, h)
		}
	}
	if len(t.extensions) == 0 {
		t.extensions = DefaultExtensions()
	}
	if len(t.ladder) == 0 {
		t.ladder = DefaultResolutions()
	}
	slices.Sort(t.ladder)
	return t
}

// DefaultTables returns the tables built from the defaults.
func DefaultTables() Tables {
	return NewTables(nil, nil)
}

// IsZero reports whether t was never initialized.
func (t Tables) IsZero() bool {
	return len(t.extensions) == 0 && len(t.ladder) == 0
}

func (t Tables) Extensions() []string { return slices.Clone(t.extensions) }

func (t Tables) Ladder() []int { return slices.Clone(t.ladder) }

// IsVideo reports whether name carries an allowed extension, ignoring case.
func (t Tables) IsVideo(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && slices.Contains(t.extensions, ext)
}

// ExtensionPattern is the allow-list as a regexp alternation.
func (t Tables) ExtensionPattern() string {
	quoted := make([]string, len(t.extensions))
	for i, ext := range t.extensions {
		quoted[i] = regexp.QuoteMeta(ext)
	}
	return strings.Join(quoted, "|")
}

// LadderPattern is the ladder as a regexp alternation, largest first.
func (t Tables) LadderPattern() string {
	parts := make([]string, len(t.ladder))
	for i, h := range t.ladder {
		parts[len(t.ladder)-1-i] = strconv.Itoa(h)
	}
	return strings.Join(parts, "|")
}

// Snap maps a probed pixel height onto the smallest ladder entry that is
// not below it. Heights above the ladder yield ErrAboveLadder; the error
// text carries the raw "{height}p" value for the operator.
func (t Tables) Snap(height int) (string, error) {
	if height <= 0 {
		return "", fmt.Errorf("%w: invalid height %d", ErrResolutionUnknown, height)
	}
	for _, h := range t.ladder {
		if h >= height {
			return strconv.Itoa(h) + "p", nil
		}
	}
	return "", fmt.Errorf("%w: %dp", ErrAboveLadder, height)
}
