package resultsview

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/scopefind/internal/format"
	"github.com/altinukshini/scopefind/internal/model"
	"github.com/altinukshini/scopefind/internal/ui"
)

// Fixed column widths; Path and Preview share what is left.
const (
	colIndex    = 5
	colLine     = 6
	colSize     = 10
	colModified = 16
)

type Model struct {
	table        table.Model
	items        []model.Match
	root         string
	previewWidth int
	width        int
	height       int
}

func New(root string, previewWidth int) Model {
	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(false),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = ui.StyleSelected
	t.SetStyles(s)

	if previewWidth <= 0 {
		previewWidth = format.DefaultPreviewWidth
	}
	return Model{table: t, root: root, previewWidth: previewWidth}
}

func columns(width int) []table.Column {
	// Each column carries one cell of padding on both sides.
	rest := width - colIndex - colLine - colSize - colModified - 12
	if rest < 20 {
		rest = 20
	}
	path := rest * 35 / 100
	return []table.Column{
		{Title: "#", Width: colIndex},
		{Title: "Path", Width: path},
		{Title: "Line", Width: colLine},
		{Title: "Preview", Width: rest - path},
		{Title: "Size", Width: colSize},
		{Title: "Modified", Width: colModified},
	}
}

// SetMatches replaces the rows, keeping the cursor where it was when it is
// still in range.
func (m *Model) SetMatches(items []model.Match) {
	m.items = items
	rows := make([]table.Row, 0, len(items))
	for i, it := range items {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			format.RelPath(m.root, it.Path),
			strconv.Itoa(it.Line),
			format.Preview(it.Text, m.previewWidth),
			format.Size(it.Size),
			format.Modified(it.ModTime),
		})
	}
	cursor := m.table.Cursor()
	m.table.SetRows(rows)
	switch {
	case len(rows) == 0:
		m.table.SetCursor(0)
	case cursor >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	case cursor < 0:
		m.table.SetCursor(0)
	}
}

// Selected returns the match under the cursor.
func (m Model) Selected() (model.Match, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return model.Match{}, false
	}
	return m.items[i], true
}

func (m Model) Cursor() int { return m.table.Cursor() }

func (m Model) Len() int { return len(m.items) }

func (m *Model) Focus() { m.table.Focus() }

func (m *Model) Blur() { m.table.Blur() }

func (m Model) Focused() bool { return m.table.Focused() }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(msg.Width))
		m.table.SetWidth(msg.Width)
		// Header and its border take two lines.
		h := msg.Height - 2
		if h < 1 {
			h = 1
		}
		m.table.SetHeight(h)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.items) == 0 {
		return ui.StyleMuted.Render("\n  No results")
	}
	return m.table.View()
}
