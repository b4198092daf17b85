package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gamehub/internal/router"
	"gamehub/internal/session"
	"gamehub/pkg/models"
)

// Dispatcher is the session side of the UI.
type Dispatcher interface {
	Dispatch(session.Event) bool
}

// frameMsg carries a session frame into the bubbletea loop.
type frameMsg session.Frame

// Model draws frames and turns keys into session events. It owns no
// catalog state of its own.
type Model struct {
	dispatch Dispatcher
	history  *router.MemoryHistory

	search    textinput.Model
	searching bool
	spinner   spinner.Model

	loading   bool
	route     string
	games     []models.Game
	exhausted bool
	total     int
	query     *session.SearchState
	detail    *models.GameDetail
	partial   bool
	notice    string
	cursor    int

	width  int
	height int
}

func NewModel(d Dispatcher, history *router.MemoryHistory) Model {
	ti := textinput.New()
	ti.Placeholder = "title, genre, platform or tag"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		dispatch: d,
		history:  history,
		search:   ti,
		spinner:  sp,
		loading:  true,
		route:    "home",
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case frameMsg:
		m.apply(session.Frame(msg))
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) apply(f session.Frame) {
	switch f.Type {
	case session.FrameLoading:
		m.loading = true
		m.route = f.Route
		m.detail = nil
	case session.FrameGrid:
		m.loading = false
		m.route = "home"
		m.detail = nil
		m.games = append([]models.Game(nil), f.Games...)
		m.exhausted = f.Exhausted
		m.total = f.Total
		m.query = f.Search
		m.notice = f.Message
		m.cursor = clamp(m.cursor, len(m.games))
	case session.FrameAppend:
		m.games = append(m.games, f.Games...)
		m.exhausted = f.Exhausted
		m.total = f.Total
	case session.FrameDetail:
		m.loading = false
		m.route = "detail"
		m.detail = f.Detail
		m.partial = f.Partial
		m.notice = f.Message
	case session.FrameNotice:
		m.notice = f.Message
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.send(session.SearchSubmit{Term: m.search.Value()})
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.send(session.SearchInput{Term: m.search.Value()})
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "down", "j":
		m.cursor = clamp(m.cursor+1, len(m.games))
	case "up", "k":
		m.cursor = clamp(m.cursor-1, len(m.games))
	case "enter", "o":
		if m.route == "home" && m.cursor < len(m.games) {
			m.send(session.ReadMore{Slug: m.games[m.cursor].Slug})
		}
	case "m":
		if m.route == "home" {
			m.send(session.LoadMore{})
		}
	case "g":
		m.send(session.GoHome{})
	case "b", "esc", "backspace":
		if state, ok := m.history.Back(); ok {
			m.send(session.Pop{State: state})
		}
	case "f":
		if state, ok := m.history.Forward(); ok {
			m.send(session.Pop{State: state})
		}
	}
	return m, nil
}

func (m Model) send(ev session.Event) {
	if m.dispatch != nil {
		m.dispatch.Dispatch(ev)
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("GameHub"))
	b.WriteString("  ")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading…")
	case m.route == "detail" && m.detail != nil:
		b.WriteString(m.detailView())
	default:
		b.WriteString(m.gridView())
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) gridView() string {
	if len(m.games) == 0 {
		return mutedStyle.Render("No games to show.")
	}

	start, end := 0, len(m.games)
	if m.height > 0 {
		// cards are four lines tall with their border
		fit := max((m.height-8)/4, 1)
		start = max(m.cursor-fit+1, 0)
		end = min(start+fit, len(m.games))
	}

	var rows []string
	for i := start; i < end; i++ {
		g := m.games[i]
		style := cardStyle
		marker := "  "
		if i == m.cursor {
			style = selectedCardStyle
			marker = "▸ "
		}
		rows = append(rows, style.Render(marker+card(g)))
	}

	status := fmt.Sprintf("%d of %d", len(m.games), m.total)
	if m.query != nil {
		status = fmt.Sprintf("%d matches for %q", m.query.Count, m.query.Term)
	} else if !m.exhausted {
		status += " · m: load more"
	}
	rows = append(rows, mutedStyle.Render(status))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func card(g models.Game) string {
	line := titleStyle.Render(g.Title)
	if year, _, ok := strings.Cut(g.ReleaseDate, "-"); ok && year != "" {
		line += mutedStyle.Render(" (" + year + ")")
	}
	if g.Rating > 0 {
		line += " " + ratingStyle.Render(fmt.Sprintf("★ %.1f", g.Rating))
	}
	meta := strings.Join(g.Genres, ", ")
	if len(g.Platforms) > 0 {
		meta += " · " + strings.Join(g.Platforms, ", ")
	}
	return line + "\n" + mutedStyle.Render(meta)
}

func (m Model) detailView() string {
	d := m.detail
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title))
	if d.ReleaseDate != "" {
		b.WriteString(mutedStyle.Render("  " + d.ReleaseDate))
	}
	if d.Rating > 0 {
		b.WriteString("  " + ratingStyle.Render(fmt.Sprintf("★ %.1f", d.Rating)))
	}
	b.WriteString("\n")

	for _, row := range [][2]string{
		{"Platforms", strings.Join(d.Platforms, ", ")},
		{"Genres", strings.Join(d.Genres, ", ")},
		{"Developers", strings.Join(d.Developers, ", ")},
		{"Publishers", strings.Join(d.Publishers, ", ")},
		{"Website", d.Website},
	} {
		if row[1] != "" {
			b.WriteString(mutedStyle.Render(row[0]+": ") + row[1] + "\n")
		}
	}
	if d.Metacritic > 0 {
		b.WriteString(mutedStyle.Render("Metacritic: ") + fmt.Sprint(d.Metacritic) + "\n")
	}

	text := d.Description
	if text == "" {
		text = d.Summary
	}
	b.WriteString("\n")
	width := 80
	if m.width > 8 {
		width = min(m.width-6, 100)
	}
	b.WriteString(lipgloss.NewStyle().Width(width).Render(text))
	if m.partial {
		b.WriteString("\n" + m.spinner.View() + mutedStyle.Render(" fetching details…"))
	}
	return detailStyle.Render(b.String())
}

func (m Model) helpLine() string {
	if m.searching {
		return "enter: search now · esc: close"
	}
	if m.route == "detail" {
		return "b: back · f: forward · g: home · /: search · q: quit"
	}
	return "↑/↓: move · enter: open · m: more · /: search · b/f: back/forward · q: quit"
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
