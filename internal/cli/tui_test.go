package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/upkeep/pkg/depgraph"
)

func sampleTree() depgraph.TreeOutput {
	leaf := func(name string) *depgraph.TreeNode {
		return &depgraph.TreeNode{Name: name, Version: "1.0.0", ID: name}
	}
	log := leaf("log")
	log.Dependencies = []*depgraph.TreeNode{leaf("cfg-if")}
	serde := leaf("serde")
	serde.Dependencies = []*depgraph.TreeNode{leaf("serde_derive")}
	root := leaf("app")
	root.Dependencies = []*depgraph.TreeNode{log, serde}
	return depgraph.TreeOutput{Root: root, Stats: depgraph.ComputeStats(root)}
}

func press(t *testing.T, m treeModel, keys ...string) treeModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(treeModel)
	}
	return m
}

func visible(m treeModel) []string {
	names := make([]string, len(m.rows))
	for i, r := range m.rows {
		names[i] = r.node.Name
	}
	return names
}

func TestTreeModelStartsWithDirectDeps(t *testing.T) {
	m := newTreeModel(sampleTree(), false)
	if got := strings.Join(visible(m), ","); got != "app,log,serde" {
		t.Errorf("visible = %s", got)
	}
}

func TestTreeModelNavigation(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		visible string
		cursor  string
	}{
		{"down", []string{"down"}, "app,log,serde", "log"},
		{"up at top", []string{"up"}, "app,log,serde", "app"},
		{"down past end", []string{"j", "j", "j", "j"}, "app,log,serde", "serde"},
		{"toggle open", []string{"down", "enter"}, "app,log,cfg-if,serde", "log"},
		{"toggle closed", []string{"down", "enter", "enter"}, "app,log,serde", "log"},
		{"expand", []string{"j", "j", "l"}, "app,log,serde,serde_derive", "serde"},
		{"collapse root", []string{"h"}, "app", "app"},
		{"left to parent", []string{"down", "l", "down", "left"}, "app,log,cfg-if,serde", "log"},
		{"expand all", []string{"e"}, "app,log,cfg-if,serde,serde_derive", "app"},
		{"collapse all", []string{"e", "down", "down", "c"}, "app,log,serde", "app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, newTreeModel(sampleTree(), false), tt.keys...)
			if got := strings.Join(visible(m), ","); got != tt.visible {
				t.Errorf("visible = %s, want %s", got, tt.visible)
			}
			if got := m.rows[m.cursor].node.Name; got != tt.cursor {
				t.Errorf("cursor on %s, want %s", got, tt.cursor)
			}
		})
	}
}

func TestTreeModelQuit(t *testing.T) {
	m := newTreeModel(sampleTree(), false)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestTreeModelView(t *testing.T) {
	m := newTreeModel(sampleTree(), false)
	if m.View() != "Loading...\n" {
		t.Errorf("View before sizing = %q", m.View())
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = next.(treeModel)
	view := m.View()
	for _, want := range []string{"upkeep tree", "Crates: 5", "app v1.0.0", "▸ log v1.0.0"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTreeModelScrollsToCursor(t *testing.T) {
	m := newTreeModel(sampleTree(), false)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: headerLines + footerLines + 2})
	m = press(t, next.(treeModel), "e", "down", "down", "down", "down")

	if m.cursor != 4 {
		t.Fatalf("cursor = %d", m.cursor)
	}
	if m.viewport.YOffset != 3 {
		t.Errorf("YOffset = %d, want 3", m.viewport.YOffset)
	}
}
