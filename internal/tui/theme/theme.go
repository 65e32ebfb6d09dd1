package theme

import (
	"maps"
	"os"
	"runtime"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/charmbracelet/lipgloss"
)

// IconSet maps semantic names to the glyph printed for them.
type IconSet map[string]string

// Colors holds the palette shared by the progress view and the summary.
type Colors struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
}

// Theme bundles the palette, panel padding and icons.
type Theme struct {
	colors       Colors
	panelPadding int
	icons        IconSet
	fallback     IconSet
}

// Option configures a Theme during construction.
type Option func(*Theme)

// WithColors overrides the palette.
func WithColors(colors Colors) Option {
	return func(t *Theme) {
		t.colors = colors
	}
}

// WithIconSet overrides the icons. A nil set restores the terminal default.
func WithIconSet(set IconSet) Option {
	return func(t *Theme) {
		t.icons = maps.Clone(set)
	}
}

// New constructs a Theme with optional overrides applied.
func New(opts ...Option) Theme {
	t := Theme{
		colors: Colors{
			Primary:    lipgloss.Color("#3a6b4a"),
			Secondary:  lipgloss.Color("#5a8c6a"),
			Accent:     lipgloss.Color("#8fc279"),
			Background: lipgloss.Color("#f8f8f8"),
			Muted:      lipgloss.Color("#9ba8c0"),
			Success:    lipgloss.Color("#5dc796"),
			Error:      lipgloss.Color("#f04c56"),
		},
		panelPadding: 1,
		icons:        defaultIconSet(),
		fallback:     maps.Clone(asciiIcons),
	}
	for _, opt := range opts {
		opt(&t)
	}
	if t.icons == nil {
		t.icons = defaultIconSet()
	}
	return t
}

// Default returns the default Theme.
func Default() Theme {
	return New()
}

func (t Theme) Colors() Colors {
	return t.colors
}

// Icon returns the themed icon for name, falling back to ASCII.
func (t Theme) Icon(name string) string {
	if icon, ok := t.icons[name]; ok {
		return icon
	}
	return t.fallback[name]
}

// OutcomeIcon returns the icon printed next to an item with outcome o.
func (t Theme) OutcomeIcon(o library.Outcome, failed bool) string {
	if failed {
		return t.Icon("failed")
	}
	switch o {
	case library.OutcomeFixed:
		return t.Icon("fixed")
	case library.OutcomePlanned:
		return t.Icon("planned")
	case library.OutcomeCompliant:
		return t.Icon("compliant")
	case library.OutcomeSkipped:
		return t.Icon("skipped")
	}
	return t.Icon("unknown")
}

// HeaderStyle is the full-width title bar.
func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Background(t.colors.Primary).
		Foreground(t.colors.Background).
		Align(lipgloss.Center)
}

// StatusBarStyle is the footer bar.
func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.colors.Secondary).
		Foreground(t.colors.Background).
		Padding(0, 1)
}

// PanelStyle is the bordered container for counters.
func (t Theme) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.colors.Accent).
		Padding(t.panelPadding)
}

// FailureStyle colors failed item names.
func (t Theme) FailureStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.colors.Error).Bold(true)
}

// ProgressGradient returns the gradient endpoints for progress bars.
func (t Theme) ProgressGradient() []string {
	return []string{string(t.colors.Primary), string(t.colors.Accent)}
}

// defaultIconSet picks emoji unless the terminal is likely to mangle them.
func defaultIconSet() IconSet {
	if isLimitedTerminal() {
		return maps.Clone(asciiIcons)
	}
	return maps.Clone(emojiIcons)
}

func isLimitedTerminal() bool {
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "" {
		return true
	}
	return runtime.GOOS == "windows"
}

var emojiIcons = IconSet{
	"movies":    "🎬",
	"series":    "📺",
	"fixed":     "✅",
	"planned":   "📝",
	"compliant": "=",
	"skipped":   "⏭",
	"failed":    "❌",
	"unknown":   "❓",
	"stats":     "📊",
	"folder":    "📁",
	"newfolder": "📂",
	"file":      "🎞",
}

var asciiIcons = IconSet{
	"movies":    "[M]",
	"series":    "[TV]",
	"fixed":     "[+]",
	"planned":   "[~]",
	"compliant": "[=]",
	"skipped":   "[-]",
	"failed":    "[!]",
	"unknown":   "[?]",
	"stats":     "[*]",
	"folder":    "[D]",
	"newfolder": "[N]",
	"file":      "[F]",
}
