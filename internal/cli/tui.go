package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cratemap/pkg/graph"
)

// List styles
var (
	listNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// treeEntry is one visible row of the explorer. The key identifies this
// occurrence of the package by its path from the root, so the same
// package can be expanded in one branch and collapsed in another.
type treeEntry struct {
	name  string
	depth int
	key   string
	deps  int
	cycle bool
}

// TreeModel is the bubbletea model for interactive graph exploration.
type TreeModel struct {
	Graph    *graph.Graph
	Cursor   int
	Height   int
	Offset   int
	expanded map[string]bool
	rows     []treeEntry
}

// NewTreeModel creates a tree explorer with the root node expanded.
func NewTreeModel(g *graph.Graph) TreeModel {
	expanded := map[string]bool{"/" + g.Root(): true}
	return TreeModel{
		Graph:    g,
		Height:   15,
		expanded: expanded,
		rows:     buildRows(g, expanded),
	}
}

// buildRows flattens the expanded portion of the graph into visible
// rows. Nodes already on the path from the root are marked as cycles
// and never descend, so expansion always terminates.
func buildRows(g *graph.Graph, expanded map[string]bool) []treeEntry {
	var rows []treeEntry

	var walk func(pkg string, depth int, parentKey string, path []string)
	walk = func(pkg string, depth int, parentKey string, path []string) {
		key := parentKey + "/" + pkg
		deps := g.Dependencies(pkg)
		onPath := slices.Contains(path, pkg)
		rows = append(rows, treeEntry{
			name:  pkg,
			depth: depth,
			key:   key,
			deps:  len(deps),
			cycle: onPath,
		})
		if onPath || !expanded[key] {
			return
		}

		next := make([]string, len(path)+1)
		copy(next, path)
		next[len(path)] = pkg

		for _, dep := range deps {
			walk(dep, depth+1, key, next)
		}
	}

	walk(g.Root(), 0, "", nil)
	return rows
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			row := m.rows[m.Cursor]
			if row.cycle || row.deps == 0 {
				return m, nil
			}
			m.expanded[row.key] = !m.expanded[row.key]
			m.rows = buildRows(m.Graph, m.expanded)
			if m.Cursor >= len(m.rows) {
				m.Cursor = len(m.rows) - 1
			}
			if m.Offset > m.Cursor {
				m.Offset = m.Cursor
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Dependencies of %s", m.Graph.Root())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand/collapse  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		marker := " "
		switch {
		case r.cycle || r.deps == 0:
		case m.expanded[r.key]:
			marker = "▾"
		default:
			marker = "▸"
		}

		name := strings.Repeat("  ", r.depth) + marker + " " + r.name

		note := ""
		if r.cycle {
			note = "cycle"
		}

		rows = append(rows, []string{cursor, name, fmt.Sprintf("%d", r.deps), note})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "Deps", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			r := m.rows[actualIdx]
			isCurrent := actualIdx == m.Cursor

			if col == 3 && r.cycle {
				return StyleWarning
			}
			if isCurrent {
				return StyleSuccess.Bold(true)
			}
			if r.cycle {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))

	return b.String()
}

// exploreGraph runs the interactive tree explorer until the user quits.
func exploreGraph(g *graph.Graph) error {
	p := tea.NewProgram(NewTreeModel(g))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}
	return nil
}
