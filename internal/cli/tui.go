package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/upkeep/pkg/depgraph"
)

var (
	treeCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeMarkerStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// headerLines and footerLines frame the viewport.
const (
	headerLines = 2
	footerLines = 2
)

// =============================================================================
// Key Bindings
// =============================================================================

type treeKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Expand      key.Binding
	Collapse    key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultTreeKeys() treeKeyMap {
	return treeKeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("⏎", "toggle")),
		Expand:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		Collapse:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		ExpandAll:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k treeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Help, k.Quit}
}

func (k treeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Toggle, k.Expand, k.Collapse},
		{k.ExpandAll, k.CollapseAll},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// treeModel - Interactive tree browser
// =============================================================================

// treeRow is one visible line. parent indexes rows, -1 for the root.
type treeRow struct {
	node   *depgraph.TreeNode
	depth  int
	parent int
}

// treeModel is the bubbletea model behind tree --interactive.
type treeModel struct {
	root         *depgraph.TreeNode
	stats        depgraph.TreeStats
	showFeatures bool

	expanded map[*depgraph.TreeNode]bool
	rows     []treeRow
	cursor   int

	keys     treeKeyMap
	help     help.Model
	viewport viewport.Model
	ready    bool
}

// newTreeModel starts with the root and its direct dependencies visible.
func newTreeModel(out depgraph.TreeOutput, showFeatures bool) treeModel {
	m := treeModel{
		root:         out.Root,
		stats:        out.Stats,
		showFeatures: showFeatures,
		expanded:     map[*depgraph.TreeNode]bool{out.Root: true},
		keys:         defaultTreeKeys(),
		help:         help.New(),
	}
	m.flatten()
	return m
}

func (m treeModel) Init() tea.Cmd {
	return nil
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(1, msg.Height-headerLines-footerLines)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			n := m.rows[m.cursor].node
			m.setExpanded(n, !m.expanded[n])
		case key.Matches(msg, m.keys.Expand):
			m.setExpanded(m.rows[m.cursor].node, true)
		case key.Matches(msg, m.keys.Collapse):
			row := m.rows[m.cursor]
			if m.expanded[row.node] && len(row.node.Dependencies) > 0 {
				m.setExpanded(row.node, false)
			} else if row.parent >= 0 {
				m.cursor = row.parent
			}
		case key.Matches(msg, m.keys.ExpandAll):
			m.expandAll(m.root)
			m.flatten()
		case key.Matches(msg, m.keys.CollapseAll):
			m.expanded = map[*depgraph.TreeNode]bool{m.root: true}
			m.flatten()
			m.cursor = 0
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	m.syncViewport()
	return m, nil
}

func (m treeModel) View() string {
	if !m.ready {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("upkeep tree"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(depgraph.FormatStats(m.stats)))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// =============================================================================
// State Helpers
// =============================================================================

func (m *treeModel) setExpanded(n *depgraph.TreeNode, open bool) {
	if len(n.Dependencies) == 0 {
		return
	}
	current := m.rows[m.cursor].node
	m.expanded[n] = open
	m.flatten()
	for i, r := range m.rows {
		if r.node == current {
			m.cursor = i
			break
		}
	}
}

func (m *treeModel) expandAll(n *depgraph.TreeNode) {
	if len(n.Dependencies) == 0 {
		return
	}
	m.expanded[n] = true
	for _, c := range n.Dependencies {
		m.expandAll(c)
	}
}

// flatten rebuilds the visible rows from the expansion state.
func (m *treeModel) flatten() {
	m.rows = m.rows[:0]
	var walk func(n *depgraph.TreeNode, depth, parent int)
	walk = func(n *depgraph.TreeNode, depth, parent int) {
		idx := len(m.rows)
		m.rows = append(m.rows, treeRow{node: n, depth: depth, parent: parent})
		if !m.expanded[n] {
			return
		}
		for _, c := range n.Dependencies {
			walk(c, depth+1, idx)
		}
	}
	walk(m.root, 0, -1)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}

// syncViewport redraws the rows and scrolls the cursor into view.
func (m *treeModel) syncViewport() {
	if !m.ready {
		return
	}
	lines := make([]string, len(m.rows))
	for i, r := range m.rows {
		lines[i] = m.renderRow(r, i == m.cursor)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m *treeModel) renderRow(r treeRow, selected bool) string {
	marker := "  "
	if len(r.node.Dependencies) > 0 {
		marker = "▸ "
		if m.expanded[r.node] {
			marker = "▾ "
		}
	}
	label := depgraph.FormatLabel(r.node, m.showFeatures)
	if selected {
		label = treeCursorStyle.Render(label)
	} else {
		label = decorateLabel(r.node, label)
	}
	return fmt.Sprintf("%s%s%s", strings.Repeat("  ", r.depth), treeMarkerStyle.Render(marker), label)
}
