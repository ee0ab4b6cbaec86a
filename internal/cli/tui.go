package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// MaterialListModel - Interactive material selection
// =============================================================================

// MaterialItem is one material offered by the picker.
type MaterialItem struct {
	Name     string
	Renderer string
	Nodes    int
	Err      error
}

// MaterialListModel is the bubbletea model for interactive material
// selection. Materials whose network could not be read are listed but
// cannot be selected.
type MaterialListModel struct {
	Items    []MaterialItem
	Cursor   int
	Selected *MaterialItem
	Height   int
	Offset   int
}

// NewMaterialListModel creates a picker over items.
func NewMaterialListModel(items []MaterialItem) MaterialListModel {
	return MaterialListModel{Items: items, Height: 15}
}

func (m MaterialListModel) Init() tea.Cmd {
	return nil
}

func (m MaterialListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Items) == 0 {
				return m, nil
			}
			item := m.Items[m.Cursor]
			if item.Err != nil {
				return m, nil
			}
			m.Selected = &item
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m MaterialListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Material"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		nodes := strconv.Itoa(it.Nodes)
		renderer := it.Renderer
		if it.Err != nil {
			nodes, renderer = "—", "unreadable"
		}
		rows = append(rows, []string{cursor, it.Name, renderer, nodes})
	}

	t := newTable("", "Material", "Renderer", "Nodes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorGray)
			}
			switch {
			case m.Items[idx].Err != nil:
				return base.Foreground(colorDim)
			case idx == m.Cursor:
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))

	return b.String()
}
