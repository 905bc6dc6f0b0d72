package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/scopefind/internal/config"
	"github.com/altinukshini/scopefind/internal/debounce"
	"github.com/altinukshini/scopefind/internal/format"
	"github.com/altinukshini/scopefind/internal/logger"
	"github.com/altinukshini/scopefind/internal/model"
	"github.com/altinukshini/scopefind/internal/search"
	"github.com/altinukshini/scopefind/internal/tui/preview"
	"github.com/altinukshini/scopefind/internal/tui/resultsview"
	"github.com/altinukshini/scopefind/internal/ui"
	"github.com/altinukshini/scopefind/internal/watch"
)

type Focus int

const (
	FocusInput Focus = iota
	FocusResults
)

type App struct {
	cfg     config.Config
	session *search.Session
	gate    *debounce.Gate
	watcher *watch.Watcher
	copy    func(string) error

	// Views
	input   textinput.Model
	results resultsview.Model
	preview preview.Model

	// Filter toggles
	sourceOnly    bool
	includeBinary bool

	// State
	focus       Focus
	width       int
	height      int
	status      string
	polling     bool
	showHelp    bool
	previewOpen bool
	previewPath string
}

// NewApp wires the UI to a session. watcher may be nil.
func NewApp(cfg config.Config, session *search.Session, watcher *watch.Watcher) App {
	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "literal text, case-sensitive"
	ti.CharLimit = 1024
	ti.Focus()

	session.SetSort(cfg.SortKey())

	return App{
		cfg:           cfg,
		session:       session,
		gate:          debounce.New(cfg.DebounceDelay),
		watcher:       watcher,
		copy:          clipboard.WriteAll,
		input:         ti,
		results:       resultsview.New(cfg.Root, cfg.PreviewWidth),
		preview:       preview.New(),
		sourceOnly:    cfg.SourceOnly,
		includeBinary: cfg.IncludeBinary,
		focus:         FocusInput,
		status:        "Ready",
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.watcher.Start())
}

// --- Commands ---

func (a App) schedulePoll() tea.Cmd {
	return tea.Tick(a.cfg.PollInterval, func(t time.Time) tea.Msg {
		return ui.PollTickMsg{At: t}
	})
}

// startSearch supersedes the current generation. An empty pattern only
// clears the results.
func (a *App) startSearch(pattern string) tea.Cmd {
	gen := a.session.Request(pattern, a.cfg.Filter(a.sourceOnly, a.includeBinary))
	a.refreshResults()
	if gen == 0 || a.polling {
		return nil
	}
	logger.Debug("search requested", "generation", gen, "pattern", pattern,
		"source_only", a.sourceOnly, "include_binary", a.includeBinary)
	a.polling = true
	return a.schedulePoll()
}

// rerun repeats the current pattern under the current toggles.
func (a *App) rerun() tea.Cmd {
	a.gate.Cancel()
	if a.input.Value() == "" && a.session.State() == search.Idle {
		return nil
	}
	return a.startSearch(a.input.Value())
}

func (a *App) openPreview() tea.Cmd {
	m, ok := a.results.Selected()
	if !ok {
		return nil
	}
	a.previewOpen = true
	a.previewPath = m.Path
	a.preview.SetLoading(a.matchTitle(m))
	return preview.Load(m.Path, m.Line)
}

func (a App) copySelected() tea.Cmd {
	m, ok := a.results.Selected()
	if !ok {
		return nil
	}
	text := m.Location()
	write := a.copy
	return func() tea.Msg {
		return ui.ClipboardMsg{Text: text, Err: write(text)}
	}
}

func (a *App) quit() tea.Cmd {
	a.session.Close()
	if err := a.watcher.Close(); err != nil {
		logger.Warn("closing file watcher", "err", err)
	}
	return tea.Quit
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSize()
		return &a, nil

	case ui.PollTickMsg:
		a.polling = false
		if a.session.Poll() {
			a.refreshResults()
		}
		if a.session.State() == search.Scanning {
			a.polling = true
			return &a, a.schedulePoll()
		}
		return &a, nil

	case ui.DebounceMsg:
		if pattern, ok := a.gate.Fire(debounce.Ticket(msg.Ticket)); ok {
			return &a, a.startSearch(pattern)
		}
		return &a, nil

	case ui.TreeChangedMsg:
		if msg.Err != nil {
			a.status = "File watcher stopped: " + msg.Err.Error()
			return &a, nil
		}
		a.session.Invalidate()
		logger.Debug("tree changed, candidate cache dropped", "path", msg.Path)
		return &a, a.watcher.Start()

	case ui.PreviewLoadedMsg:
		if !a.previewOpen || msg.Path != a.previewPath {
			return &a, nil
		}
		if msg.Err != nil {
			a.previewOpen = false
			a.status = fmt.Sprintf("Cannot open %s: %v", format.RelPath(a.cfg.Root, msg.Path), msg.Err)
			return &a, nil
		}
		title := fmt.Sprintf("%s:%d", format.RelPath(a.cfg.Root, msg.Path), msg.Line)
		a.preview.SetContent(msg.Path, title, msg.Content, msg.Line, msg.Truncated)
		return &a, nil

	case ui.ClipboardMsg:
		if msg.Err != nil {
			a.status = "Clipboard unavailable: " + msg.Err.Error()
		} else {
			a.status = "Copied " + msg.Text
		}
		return &a, nil

	case ui.StatusMsg:
		a.status = msg.Text
		return &a, nil

	case tea.KeyMsg:
		cmd := a.handleKey(msg)
		return &a, cmd
	}

	// Cursor blink and other widget messages
	var cmd tea.Cmd
	if a.previewOpen {
		a.preview, cmd = a.preview.Update(msg)
	} else {
		a.input, cmd = a.input.Update(msg)
	}
	return &a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}
	if a.showHelp {
		a.showHelp = false
		return nil
	}
	if a.previewOpen {
		return a.handlePreviewKey(msg)
	}

	switch {
	case key.Matches(msg, ui.Keys.SortName):
		a.setSort(model.SortByName)
		return nil
	case key.Matches(msg, ui.Keys.SortDate):
		a.setSort(model.SortByDate)
		return nil
	case key.Matches(msg, ui.Keys.SortSize):
		a.setSort(model.SortBySize)
		return nil
	case key.Matches(msg, ui.Keys.ToggleSource):
		a.sourceOnly = !a.sourceOnly
		return a.rerun()
	case key.Matches(msg, ui.Keys.ToggleBinary):
		a.includeBinary = !a.includeBinary
		return a.rerun()
	case key.Matches(msg, ui.Keys.Tab):
		if a.focus == FocusInput {
			a.setFocus(FocusResults)
			return nil
		}
		a.setFocus(FocusInput)
		return textinput.Blink
	}

	if a.focus == FocusInput {
		return a.handleInputKey(msg)
	}
	return a.handleResultsKey(msg)
}

func (a *App) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		// Run now: the pending timer must not fire a second request.
		a.gate.Now()
		return a.startSearch(a.input.Value())
	case "esc", "down":
		a.setFocus(FocusResults)
		return nil
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if v := a.input.Value(); v != before {
		t := a.gate.Edit(v)
		return tea.Batch(cmd, a.gate.Cmd(t))
	}
	return cmd
}

func (a *App) handleResultsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, ui.Keys.Quit):
		return a.quit()
	case key.Matches(msg, ui.Keys.Help):
		a.showHelp = true
	case key.Matches(msg, ui.Keys.Search):
		a.setFocus(FocusInput)
		return textinput.Blink
	case key.Matches(msg, ui.Keys.Enter):
		return a.openPreview()
	case key.Matches(msg, ui.Keys.Copy):
		return a.copySelected()
	case key.Matches(msg, ui.Keys.Refresh):
		a.session.Invalidate()
		return a.rerun()
	default:
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return cmd
	}
	return nil
}

func (a *App) handlePreviewKey(msg tea.KeyMsg) tea.Cmd {
	if !a.preview.IsSearching() {
		switch {
		case key.Matches(msg, ui.Keys.Back), msg.String() == "backspace":
			a.previewOpen = false
			a.previewPath = ""
			return nil
		case key.Matches(msg, ui.Keys.Quit):
			return a.quit()
		case key.Matches(msg, ui.Keys.Copy):
			return a.copySelected()
		}
	}
	var cmd tea.Cmd
	a.preview, cmd = a.preview.Update(msg)
	return cmd
}

func (a *App) setSort(k model.SortKey) {
	a.session.SetSort(k)
	a.refreshResults()
	a.status = "Sorted by " + k.String()
}

func (a *App) setFocus(f Focus) {
	a.focus = f
	if f == FocusInput {
		a.input.Focus()
		a.results.Blur()
		return
	}
	a.input.Blur()
	a.results.Focus()
}

func (a *App) refreshResults() {
	a.results.SetMatches(a.session.Results().Items())
}

func (a *App) propagateSize() {
	// header, input, toolbar, status line and status bar are one line
	// each; the pane border takes two more.
	contentH := a.height - 7
	if contentH < 1 {
		contentH = 1
	}
	a.input.Width = a.width - lipgloss.Width(a.input.Prompt) - 4
	a.results, _ = a.results.Update(
		tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
	a.preview, _ = a.preview.Update(
		tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
}

func (a App) matchTitle(m model.Match) string {
	return fmt.Sprintf("%s:%d", format.RelPath(a.cfg.Root, m.Path), m.Line)
}

// stateName classifies the session for styling.
func (a App) stateName() string {
	switch a.session.State() {
	case search.Scanning:
		return "scanning"
	case search.Completed:
		sum := a.session.Summary()
		switch {
		case sum.Incomplete:
			return "incomplete"
		case sum.Truncated:
			return "truncated"
		}
		return "completed"
	}
	return "idle"
}

// --- View ---

func (a App) View() string {
	scanning := a.session.State() == search.Scanning
	header := RenderHeader(a.cfg.Root, scanning, a.session.Progress().Percent(), a.width)
	input := "  " + a.input.View()
	toolbar := RenderToolbar(a.session.Results().Key().Label(), a.sourceOnly, a.includeBinary, a.width)
	statusLine := RenderStatusLine(a.stateName(), a.session.Status(), a.width)

	contentH := a.height - 7
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case a.showHelp:
		content = a.renderHelp()
	case a.previewOpen:
		content = ui.StylePaneFocused.Width(a.width - 2).Height(contentH).Render(a.preview.View())
	default:
		style := ui.StylePane
		if a.focus == FocusResults {
			style = ui.StylePaneFocused
		}
		content = style.Width(a.width - 2).Height(contentH).Render(a.results.View())
	}

	statusBar := RenderStatusBar(a.status, a.contextHints(), a.width)

	// Hard clamp: ensure content never overflows the terminal.
	maxContentLines := a.height - 5
	if maxContentLines > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > maxContentLines {
			content = strings.Join(lines[:maxContentLines], "\n")
		}
	}

	return strings.Join([]string{header, input, toolbar, statusLine, content, statusBar}, "\n")
}

func (a App) contextHints() string {
	if a.showHelp {
		return "any key:close"
	}
	if a.previewOpen {
		if a.preview.IsSearching() {
			return "enter:confirm  esc:cancel"
		}
		return "/:search  n/N:match  y:copy  esc:back"
	}
	if a.focus == FocusInput {
		return "enter:search now  tab:results  F2-F4:sort  F5/F6:filters"
	}
	return "enter:preview  y:copy  /:search  r:rescan  tab:input  ?:help  q:quit"
}

func (a App) renderHelp() string {
	contentH := a.height - 7
	if contentH < 1 {
		contentH = 1
	}

	bold := lipgloss.NewStyle().Bold(true)
	key := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Width(14)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))

	row := func(k, d string) string {
		return "  " + key.Render(k) + desc.Render(d) + "\n"
	}

	var b strings.Builder
	b.WriteString("\n" + bold.Render("  Search") + "\n\n")
	b.WriteString(row("type", "Search as you type (after a short pause)"))
	b.WriteString(row("enter", "Search now"))
	b.WriteString(row("/", "Focus the search field"))
	b.WriteString(row("tab", "Switch between search field and results"))
	b.WriteString(row("F5", "Toggle source files only"))
	b.WriteString(row("F6", "Toggle binary and other files"))
	b.WriteString(row("r", "Rescan the tree"))

	b.WriteString("\n" + bold.Render("  Results") + "\n\n")
	b.WriteString(row("F2 / F3 / F4", "Sort by name / date / size"))
	b.WriteString(row("j / k", "Move down / up"))
	b.WriteString(row("PgUp/PgDn", "Page up / page down"))
	b.WriteString(row("enter", "Preview file at the match"))
	b.WriteString(row("y", "Copy path:line"))
	b.WriteString(row("q", "Quit"))

	b.WriteString("\n" + bold.Render("  Preview") + "\n\n")
	b.WriteString(row("/", "Search in file"))
	b.WriteString(row("n / N", "Next / previous match"))
	b.WriteString(row("g / G", "Go to top / bottom"))
	b.WriteString(row("esc", "Back to results"))

	b.WriteString("\n" + lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("  Press any key to close") + "\n")

	style := ui.StylePaneFocused.Width(a.width - 2).Height(contentH)
	return style.Render(b.String())
}
