package preview

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/scopefind/internal/ui"
)

// MaxBytes caps how much of a file the preview loads.
const MaxBytes = 1 << 20

// contextLines is how many lines stay visible above the target line.
const contextLines = 3

type Model struct {
	viewport viewport.Model
	content  string
	path     string
	title    string
	width    int
	height   int
	ready    bool
	loading  bool
	cut      bool

	// In-file search
	searchInput textinput.Model
	searching   bool
	searchQuery string
	matchLines  []int // 0-based line indices of matches
	matchIndex  int

	// 0-based line of the selected match, -1 = none
	jumpLine int
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search in file..."
	ti.CharLimit = 256
	return Model{searchInput: ti, jumpLine: -1}
}

// Load reads path in the background and reports ui.PreviewLoadedMsg.
func Load(path string, line int) tea.Cmd {
	return func() tea.Msg {
		content, cut, err := readCapped(path, MaxBytes)
		return ui.PreviewLoadedMsg{Path: path, Line: line, Content: content, Truncated: cut, Err: err}
	}
}

func readCapped(path string, limit int64) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", false, err
	}
	cut := int64(len(data)) > limit
	if cut {
		data = data[:limit]
	}
	s := strings.ToValidUTF8(string(data), "�")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\t", "    ")
	s = strings.ReplaceAll(s, "\x00", "�")
	return s, cut, nil
}

// SetLoading shows a placeholder until SetContent is called.
func (m *Model) SetLoading(title string) {
	m.loading = true
	m.title = title
	m.content = ""
}

// SetContent shows content with line (1-based) highlighted near the top.
func (m *Model) SetContent(path, title, content string, line int, cut bool) {
	m.path = path
	m.title = title
	m.content = strings.TrimSuffix(content, "\n")
	m.cut = cut
	m.loading = false
	m.searchQuery = ""
	m.matchLines = nil
	m.matchIndex = 0
	m.jumpLine = -1
	if m.ready {
		m.viewport.SetContent(m.content)
		m.viewport.GotoTop()
	}
	m.GotoLine(line)
}

// GotoLine highlights the 1-based line and scrolls it into view.
func (m *Model) GotoLine(line int) {
	if line <= 0 {
		return
	}
	m.jumpLine = line - 1
	if m.ready {
		m.viewport.SetContent(m.applyHighlights())
		m.viewport.SetYOffset(max(0, m.jumpLine-contextLines))
	}
}

func (m Model) Path() string { return m.path }

func (m Model) IsSearching() bool { return m.searching }

// MatchCount returns the number of lines matching the in-file search.
func (m Model) MatchCount() int { return len(m.matchLines) }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter":
				if q := m.searchInput.Value(); q != "" {
					m.searchQuery = q
					m.findMatches()
					m.viewport.SetContent(m.applyHighlights())
					if len(m.matchLines) > 0 {
						m.matchIndex = m.firstMatchFrom(m.jumpLine)
						m.viewport.SetYOffset(m.matchLines[m.matchIndex])
					}
				}
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			case "esc":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.searching = true
			m.searchInput.SetValue("")
			m.searchInput.Focus()
			return m, textinput.Blink
		case "n":
			if len(m.matchLines) > 0 {
				m.matchIndex = (m.matchIndex + 1) % len(m.matchLines)
				m.viewport.SetContent(m.applyHighlights())
				m.viewport.SetYOffset(m.matchLines[m.matchIndex])
			}
			return m, nil
		case "N":
			if len(m.matchLines) > 0 {
				m.matchIndex = (m.matchIndex - 1 + len(m.matchLines)) % len(m.matchLines)
				m.viewport.SetContent(m.applyHighlights())
				m.viewport.SetYOffset(m.matchLines[m.matchIndex])
			}
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - 2
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
			if m.content != "" {
				m.viewport.SetContent(m.applyHighlights())
				if m.jumpLine >= 0 {
					m.viewport.SetYOffset(max(0, m.jumpLine-contextLines))
				}
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// firstMatchFrom returns the index of the first match at or after line.
func (m Model) firstMatchFrom(line int) int {
	for i, l := range m.matchLines {
		if l >= line {
			return i
		}
	}
	return 0
}

func (m *Model) findMatches() {
	m.matchLines = nil
	if m.searchQuery == "" || m.content == "" {
		return
	}
	for i, line := range strings.Split(m.content, "\n") {
		if strings.Contains(line, m.searchQuery) {
			m.matchLines = append(m.matchLines, i)
		}
	}
}

func (m Model) applyHighlights() string {
	hasSearch := len(m.matchLines) > 0
	if !hasSearch && m.jumpLine < 0 {
		return m.content
	}

	matchSet := make(map[int]bool, len(m.matchLines))
	for _, idx := range m.matchLines {
		matchSet[idx] = true
	}
	currentMatchLine := -1
	if hasSearch && m.matchIndex < len(m.matchLines) {
		currentMatchLine = m.matchLines[m.matchIndex]
	}

	highlight := lipgloss.NewStyle().Background(ui.ColorBorder)
	current := ui.StyleMatch

	lines := strings.Split(m.content, "\n")
	for i, line := range lines {
		switch {
		case i == currentMatchLine, i == m.jumpLine:
			lines[i] = current.Render(line)
		case matchSet[i]:
			lines[i] = highlight.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if m.loading {
		return "\n  Loading " + m.title + "..."
	}
	if m.path == "" {
		return "\n  Select a result to preview the file"
	}

	header := fmt.Sprintf(" %s  %3.f%%", m.title, m.viewport.ScrollPercent()*100)
	if m.cut {
		header += "  [first 1 MiB]"
	}
	if m.searchQuery != "" && len(m.matchLines) > 0 {
		header += fmt.Sprintf("  [%d/%d matches]", m.matchIndex+1, len(m.matchLines))
	} else if m.searchQuery != "" {
		header += "  [no matches]"
	}
	hints := ui.StyleMuted.Render("  /:search  n/N:match  j/k:line  PgUp/PgDn:page  g/G:top/bot  esc:back")
	top := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB")).Render(header) + hints

	if m.searching {
		return top + "\n  /" + m.searchInput.View() + "\n" + m.viewport.View()
	}
	return top + "\n" + m.viewport.View()
}
