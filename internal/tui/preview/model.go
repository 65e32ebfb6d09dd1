package preview

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/log"
	"github.com/Digital-Shane/library-tidy/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func kindIs(k Kind) func(*treeview.Node[Entry]) bool {
	return func(n *treeview.Node[Entry]) bool { return n.Data().Kind == k }
}

func failed(n *treeview.Node[Entry]) bool { return n.Data().Err != "" }

func created(n *treeview.Node[Entry]) bool { return n.Data().New }

// icon picks the glyph for an entry the way the provider rules do.
func icon(th theme.Theme, e Entry) string {
	switch {
	case e.Err != "":
		return th.Icon("failed")
	case e.New:
		return th.Icon("newfolder")
	case e.Kind == KindFile:
		return th.Icon("file")
	}
	return th.Icon("folder")
}

// NewProvider builds the node provider: icons and colors by entry kind and
// the Label formatter.
func NewProvider(th theme.Theme) *treeview.DefaultNodeProvider[Entry] {
	colors := th.Colors()

	failedStyle := treeview.WithStyleRule(failed,
		lipgloss.NewStyle().Foreground(colors.Error),
		lipgloss.NewStyle().Foreground(colors.Error).Background(colors.Background))
	itemStyle := treeview.WithStyleRule(kindIs(KindItem),
		lipgloss.NewStyle().Foreground(colors.Primary).Bold(true),
		lipgloss.NewStyle().Foreground(colors.Background).Bold(true).Background(colors.Secondary).PaddingRight(1))
	folderStyle := treeview.WithStyleRule(kindIs(KindFolder),
		lipgloss.NewStyle().Foreground(colors.Secondary).Bold(true),
		lipgloss.NewStyle().Foreground(colors.Background).Bold(true).Background(colors.Primary))
	fileStyle := treeview.WithStyleRule(kindIs(KindFile),
		lipgloss.NewStyle().Foreground(colors.Muted),
		lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Primary))

	return treeview.NewDefaultNodeProvider(
		treeview.WithIconRule(failed, th.Icon("failed")),
		treeview.WithIconRule(created, th.Icon("newfolder")),
		treeview.WithIconRule(kindIs(KindFile), th.Icon("file")),
		treeview.WithDefaultIcon[Entry](th.Icon("folder")),
		failedStyle, itemStyle, folderStyle, fileStyle,
		treeview.WithFormatter(func(n *treeview.Node[Entry]) (string, bool) {
			return Label(*n.Data()), true
		}),
	)
}

// NewTree wraps nodes in a fully expanded tree.
func NewTree(nodes []*treeview.Node[Entry], th theme.Theme) *treeview.Tree[Entry] {
	return treeview.NewTree(nodes,
		treeview.WithExpandAll[Entry](),
		treeview.WithProvider(NewProvider(th)),
	)
}

// Print writes the tree as indented lines, for output that is not a
// terminal.
func Print(out *log.Output, nodes []*treeview.Node[Entry], th theme.Theme) {
	var walk func(n *treeview.Node[Entry], depth int)
	walk = func(n *treeview.Node[Entry], depth int) {
		e := *n.Data()
		out.Printf("%s%s %s", strings.Repeat("  ", depth), icon(th, e), Label(e))
		for _, child := range n.Children() {
			walk(child, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}
}

// Model is the interactive plan view shown after a dry run.
type Model struct {
	*treeview.TuiTreeModel[Entry]
	title  string
	counts Counts
	width  int
	height int
	theme  theme.Theme
}

// NewModel creates the view for nodes. title is shown in the header bar.
func NewModel(title string, nodes []*treeview.Node[Entry], counts Counts, th theme.Theme) *Model {
	m := &Model{title: title, counts: counts, width: 80, height: 24, theme: th}

	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{}
	keyMap.Reset = []string{}

	m.TuiTreeModel = treeview.NewTuiTreeModel(NewTree(nodes, th),
		treeview.WithTuiWidth[Entry](m.width),
		treeview.WithTuiHeight[Entry](m.height-2),
		treeview.WithTuiAllowResize[Entry](true),
		treeview.WithTuiDisableNavBar[Entry](true),
		treeview.WithTuiKeyMap[Entry](keyMap),
	)
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		treeModel, cmd := m.TuiTreeModel.Update(tea.WindowSizeMsg{Width: m.width, Height: max(m.height-2, 1)})
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[Entry])
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	treeModel, cmd := m.TuiTreeModel.Update(msg)
	m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[Entry])
	return m, cmd
}

func (m *Model) View() string {
	c := m.counts
	status := fmt.Sprintf("%d items  %d renames  %d new folders  %d failed  │  ↑/↓: Navigate  q: Quit",
		c.Items, c.Renames, c.NewFolders, c.Failed)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.HeaderStyle().Width(m.width).Render(m.title),
		m.TuiTreeModel.View(),
		m.theme.StatusBarStyle().Width(m.width).Render(status),
	)
}

// Counts returns the totals shown in the status bar.
func (m *Model) Counts() Counts { return m.counts }
