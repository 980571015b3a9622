package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/melodycompare/mcx/internal/chat"
	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/session"
)

// inputMode says what the shared text input is currently collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputChat
	inputAnalyzePath
)

// Model represents the TUI application state. The session controller owns
// every transition; the model renders its snapshot and translates key
// presses into controller operations.
type Model struct {
	ctx       context.Context
	ctrl      *session.Controller
	assistant *chat.Session

	width  int
	height int

	libraryList list.Model
	catalogList list.Model
	listsReady  bool

	input      textinput.Model
	mode       inputMode
	chatOpen   bool
	chatEvents <-chan chat.Event

	report string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies. The
// controller should already be bootstrapped.
func NewModel(ctx context.Context, ctrl *session.Controller, assistant *chat.Session) *Model {
	input := textinput.New()
	input.CharLimit = 2000

	return &Model{
		ctx:       ctx,
		ctrl:      ctrl,
		assistant: assistant,
		input:     input,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init sets up the list views from the restored session.
func (m *Model) Init() tea.Cmd {
	m.rebuildLists()
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case sessionChangedMsg:
		m.rebuildLists()
		return m, nil

	case reportReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.report = msg.report
		return m, nil

	case chatEventMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.chatEvents = nil
			return m, nil
		}
		if msg.Done {
			m.chatEvents = nil
			return m, nil
		}
		return m, waitForChatEvent(m.chatEvents)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.updateLists(msg)
}

// View renders the UI based on the controller's current view state.
func (m *Model) View() string {
	snap := m.ctrl.Snapshot()

	var body string
	switch snap.View {
	case session.StateAnalyzing:
		body = m.renderAnalyzing(snap)
	case session.StateAnalysis:
		body = m.renderAnalysis(snap)
	case session.StateLibrary:
		body = m.renderLibrary()
	case session.StateCatalog:
		body = m.renderCatalog()
	case session.StateDashboard:
		body = m.renderDashboard(snap)
	default:
		body = m.renderHome(snap)
	}

	sections := []string{}
	if banner := m.renderNotifications(); banner != "" {
		sections = append(sections, banner)
	}
	if m.err != nil {
		sections = append(sections, styles.err.Render("Error: "+m.err.Error()))
	}
	sections = append(sections, body)
	if m.chatOpen {
		sections = append(sections, m.renderChat())
	}
	if m.mode == inputAnalyzePath {
		sections = append(sections, styles.title.Render("Audio file to analyze:")+"\n"+m.input.View())
	}
	return strings.Join(sections, "\n\n")
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != inputNone {
		return m.handleInputKeys(msg)
	}

	snap := m.ctrl.Snapshot()

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.chat):
		m.chatOpen = true
		m.mode = inputChat
		m.input.Placeholder = "Ask Melody anything..."
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.library):
		return m, m.navigateCmd(session.StateLibrary)
	case key.Matches(msg, m.keys.catalog):
		return m, m.navigateCmd(session.StateCatalog)
	case key.Matches(msg, m.keys.back):
		if snap.View != session.StateHome {
			return m, m.navigateCmd(session.StateHome)
		}
		return m, nil
	}

	switch snap.View {
	case session.StateHome:
		return m.handleHomeKeys(msg)
	case session.StateLibrary:
		return m.handleLibraryKeys(msg)
	case session.StateCatalog:
		return m.updateLists(msg)
	case session.StateAnalysis:
		return m.handleAnalysisKeys(msg)
	}
	return m, nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.mode = inputNone
		m.chatOpen = false
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		if value == "" {
			return m, nil
		}
		switch m.mode {
		case inputChat:
			return m, m.sendChatCmd(value)
		case inputAnalyzePath:
			m.mode = inputNone
			m.input.Blur()
			return m, m.analyzeCmd(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "a" {
		m.mode = inputAnalyzePath
		m.input.Placeholder = "~/songs/track.mp3"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.libraryList.SelectedItem().(libraryItem); ok {
			m.report = ""
			if err := m.ctrl.ViewLibraryItem(selected.item.ID); err != nil {
				m.err = err
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.delete):
		if selected, ok := m.libraryList.SelectedItem().(libraryItem); ok {
			if err := m.ctrl.DeleteLibraryItem(selected.item.ID); err != nil {
				m.err = err
			}
			m.rebuildLists()
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleAnalysisKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.report) && m.report == "" {
		return m, m.generateReportCmd()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.listsReady {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.ctrl.Snapshot().View {
	case session.StateLibrary:
		m.libraryList, cmd = m.libraryList.Update(msg)
	case session.StateCatalog:
		m.catalogList, cmd = m.catalogList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildLists() {
	snap := m.ctrl.Snapshot()

	libItems := make([]list.Item, len(snap.Library))
	for i, item := range snap.Library {
		libItems[i] = libraryItem{item: item}
	}
	m.libraryList = list.New(libItems, list.NewDefaultDelegate(), 0, 0)
	m.libraryList.Title = "My Library"

	catItems := make([]list.Item, len(snap.Catalog))
	for i, item := range snap.Catalog {
		catItems[i] = catalogItem{item: item}
	}
	m.catalogList = list.New(catItems, list.NewDefaultDelegate(), 0, 0)
	m.catalogList.Title = "Cleared Catalog"

	m.listsReady = true
	m.resizeLists()
}

func (m *Model) resizeLists() {
	if !m.listsReady || m.width == 0 {
		return
	}
	m.libraryList.SetSize(m.width-4, m.height-8)
	m.catalogList.SetSize(m.width-4, m.height-8)
}

func (m *Model) navigateCmd(target session.ViewState) tea.Cmd {
	m.err = nil
	return func() tea.Msg {
		return sessionChangedMsg{err: m.ctrl.Navigate(m.ctx, target)}
	}
}

func (m *Model) analyzeCmd(path string) tea.Cmd {
	m.err = nil
	return func() tea.Msg {
		return sessionChangedMsg{err: m.ctrl.StartAnalysis(m.ctx, path)}
	}
}

func (m *Model) generateReportCmd() tea.Cmd {
	m.err = nil
	return func() tea.Msg {
		report, err := m.ctrl.GenerateReport(m.ctx)
		return reportReadyMsg{report: report, err: err}
	}
}

func (m *Model) sendChatCmd(message string) tea.Cmd {
	m.err = nil
	snap := m.ctrl.Snapshot()
	chatCtx := models.ChatContext{AppState: string(snap.View)}
	if snap.SelectedAnalysis != nil {
		chatCtx.AnalysisData = snap.SelectedAnalysis
		chatCtx.ReportText = snap.InitialReport
	}

	events, err := m.assistant.Send(m.ctx, message, chatCtx)
	if err != nil {
		m.err = err
		return nil
	}
	m.chatEvents = events
	return waitForChatEvent(events)
}

func (m *Model) renderNotifications() string {
	notes := m.ctrl.Notifications()
	if len(notes) == 0 {
		return ""
	}

	lines := make([]string, len(notes))
	for i, n := range notes {
		switch n.Severity {
		case models.SeverityError:
			lines[i] = styles.err.Render(n.Message)
		case models.SeveritySuccess:
			lines[i] = styles.ok.Render(n.Message)
		default:
			lines[i] = styles.warn.Render(n.Message)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHome(snap session.Session) string {
	title := styles.title.Render("MelodyCompare")
	intro := "Analyze AI-generated music for copyright risk before you release it."

	menu := []string{
		"a  analyze an audio file",
		"l  my library",
		"g  cleared catalog",
		"c  chat with Melody",
	}
	if snap.LoggedIn() {
		intro = fmt.Sprintf("Signed in as %s.\n\n%s", snap.User.Name, intro)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, intro, strings.Join(menu, "\n"), helpView)
}

func (m *Model) renderAnalyzing(snap session.Session) string {
	title := styles.title.Render("Analyzing")
	loader := snap.LoaderText
	if loader == "" {
		loader = "Working..."
	}
	return fmt.Sprintf("%s\n%s", title, loader)
}

func (m *Model) renderAnalysis(snap session.Session) string {
	data := snap.SelectedAnalysis
	if data == nil {
		return styles.err.Render("No analysis selected\n\nPress esc to go home")
	}

	title := styles.title.Render(data.SongTitle)
	risk := styles.risk(data.RiskLevel).Render(fmt.Sprintf("%s risk • %.0f/100", data.RiskLevel, data.RiskScore))
	stats := fmt.Sprintf("Similarity: %.1f%%   AI probability: %.1f%%", data.OverallSimilarity, data.AIProbability)

	var stems string
	if len(data.StemAnalysis) > 0 {
		parts := make([]string, 0, len(data.StemAnalysis))
		for stem, score := range data.StemAnalysis {
			parts = append(parts, fmt.Sprintf("%s %.0f%%", stem, score))
		}
		stems = "Stems: " + strings.Join(parts, " • ")
	}

	report := m.report
	if report == "" {
		report = snap.InitialReport
	}
	if report == "" {
		report = styles.help.Render("Press r to generate the full report")
	}

	var badge string
	if snap.SharedView {
		badge = styles.warn.Render("(shared analysis, read-only)") + "\n"
	}

	helpKeys := []key.Binding{m.keys.report, m.keys.chat, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	sections := []string{title, badge + risk, stats}
	if stems != "" {
		sections = append(sections, stems)
	}
	sections = append(sections, report, helpView)
	return strings.Join(sections, "\n\n")
}

func (m *Model) renderLibrary() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.delete, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.libraryList.View(), helpView)
}

func (m *Model) renderCatalog() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.catalogList.View(), helpView)
}

func (m *Model) renderDashboard(snap session.Session) string {
	title := styles.title.Render("Dashboard")
	name := "there"
	if snap.User != nil {
		name = snap.User.Name
	}
	info := fmt.Sprintf("Welcome back, %s.\nSaved analyses: %d", name, len(snap.Library))

	helpKeys := []key.Binding{m.keys.library, m.keys.catalog, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderChat() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Melody"))
	b.WriteString("\n")

	msgs := m.assistant.Messages()
	start := 0
	if len(msgs) > 8 {
		start = len(msgs) - 8
	}
	for _, msg := range msgs[start:] {
		label := styles.bot.Render("melody")
		if msg.Role == models.RoleUser {
			label = styles.user.Render("you")
		}
		content := msg.Content
		if msg.Streaming && content == "" {
			content = styles.help.Render("...")
		}
		b.WriteString(fmt.Sprintf("%s  %s\n", label, content))
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}
