package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/team-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/team-usage-dashboard/internal/ui/styles"
	"github.com/j-veylop/team-usage-dashboard/internal/version"
)

// Screen is the view the console currently shows.
type Screen int

const (
	// ScreenMenu is the numbered main menu.
	ScreenMenu Screen = iota
	// ScreenPrompt collects text inputs for the selected action.
	ScreenPrompt
	// ScreenOutput shows the result of the last action.
	ScreenOutput
)

// menuSplit is the number of entries in the left menu column.
const menuSplit = 6

// chromeHeight is the number of lines around the output viewport.
const chromeHeight = 7

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Next      key.Binding
	Prev      key.Binding
	Erase     key.Binding
	History   key.Binding
	Scroll    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Next:      key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Erase:     key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "erase")),
		History:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "call log")),
		Scroll:    key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("↑/↓/pgup/pgdn", "scroll")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k KeyMap) menuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.History, k.Quit}
}

func (k KeyMap) promptHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Enter, k.Back}
}

func (k KeyMap) outputHelp() []key.Binding {
	return []key.Binding{k.Scroll, k.Back, k.History, k.Quit}
}

// Styles defines the application styles.
type Styles struct {
	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Header  lipgloss.Style
	Content lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title  lipgloss.Style
	Subtle lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Header = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)

	return s
}

// Model is the main application model.
type Model struct {
	ctx    context.Context
	svc    Service
	state  *State
	keymap KeyMap
	styles Styles

	help     help.Model
	spinner  components.LoadingSpinner
	viewport viewport.Model
	inputs   []textinput.Model

	active      MenuItem
	choice      string
	outputTitle string

	screen Screen
	cursor int
	focus  int
	width  int
	height int
	ready  bool
}

// NewModel initializes a new application model. Requests made by actions
// are bound to ctx.
func NewModel(ctx context.Context, svc Service) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Model{
		ctx:      ctx,
		svc:      svc,
		state:    NewState(),
		keymap:   DefaultKeyMap(),
		styles:   DefaultStyles(),
		help:     help.New(),
		spinner:  components.NewSpinner("Loading..."),
		viewport: viewport.New(0, 0),
		screen:   ScreenMenu,
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// Screen returns the current screen.
func (m *Model) Screen() Screen {
	return m.screen
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(defaultTickCmd(), textinput.Blink)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		if loading, _ := m.state.IsLoading(); loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())

	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}

	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)

	case ResultMsg:
		cmds = append(cmds, m.handleResult(msg))

	default:
		if m.screen == ScreenOutput {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.help.Width = msg.Width
	m.viewport.Width = max(msg.Width-4, 1)
	m.viewport.Height = max(msg.Height-chromeHeight, 1)
	for i := range m.inputs {
		m.inputs[i].Width = max(msg.Width-10, 10)
	}
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return tea.Quit
	}

	// One request at a time: keys wait for the running action.
	if loading, _ := m.state.IsLoading(); loading {
		return nil
	}

	switch m.screen {
	case ScreenPrompt:
		return m.handlePromptKey(msg)
	case ScreenOutput:
		return m.handleOutputKey(msg)
	default:
		return m.handleMenuKey(msg)
	}
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	items := MenuItems()

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.History):
		return m.startAction(callLogItem)

	case key.Matches(msg, m.keymap.Up):
		m.cursor = (m.cursor - 1 + len(items)) % len(items)
		m.choice = ""

	case key.Matches(msg, m.keymap.Down):
		m.cursor = (m.cursor + 1) % len(items)
		m.choice = ""

	case key.Matches(msg, m.keymap.Erase):
		if m.choice != "" {
			m.choice = m.choice[:len(m.choice)-1]
		}

	case key.Matches(msg, m.keymap.Enter):
		return m.selectChoice()

	case msg.Type == tea.KeyRunes && isDigits(msg.Runes):
		if len(m.choice)+len(msg.Runes) <= 2 {
			m.choice += string(msg.Runes)
		}
	}

	return nil
}

// selectChoice runs the typed menu number, or the highlighted entry when
// nothing was typed.
func (m *Model) selectChoice() tea.Cmd {
	items := MenuItems()
	item := items[m.cursor]

	if m.choice != "" {
		choice := m.choice
		m.choice = ""

		found, ok := ItemByChoice(choice)
		if !ok {
			return notifyWarningCmd(fmt.Sprintf("Invalid choice %q, pick 0-%d", choice, len(items)-1))
		}
		item = found
		for i := range items {
			if items[i].ID == item.ID {
				m.cursor = i
			}
		}
	}

	return m.startAction(item)
}

func (m *Model) startAction(item MenuItem) tea.Cmd {
	if item.ID == ActionQuit {
		return tea.Quit
	}
	if len(item.Fields) > 0 {
		m.openPrompt(item)
		return textinput.Blink
	}
	return m.run(item, nil)
}

func (m *Model) openPrompt(item MenuItem) {
	m.active = item
	m.screen = ScreenPrompt
	m.focus = 0
	m.inputs = make([]textinput.Model, len(item.Fields))

	for i, f := range item.Fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.Prompt = "> "
		ti.CharLimit = 128
		ti.Width = max(m.width-10, 10)
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()
}

func (m *Model) focusInput(i int) {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Back):
		m.screen = ScreenMenu
		m.inputs = nil
		return nil

	case key.Matches(msg, m.keymap.Next):
		m.focusInput(m.focus + 1)
		return nil

	case key.Matches(msg, m.keymap.Prev):
		m.focusInput(m.focus - 1)
		return nil

	case key.Matches(msg, m.keymap.Enter):
		if m.focus < len(m.inputs)-1 {
			m.focusInput(m.focus + 1)
			return nil
		}
		return m.submitPrompt()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) submitPrompt() tea.Cmd {
	values := make(map[string]string, len(m.inputs))
	for i, f := range m.active.Fields {
		v := strings.TrimSpace(m.inputs[i].Value())
		if f.Required && v == "" {
			m.focusInput(i)
			return notifyWarningCmd(f.Label + " is required")
		}
		values[f.Key] = v
	}
	return m.run(m.active, values)
}

func (m *Model) handleOutputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Back):
		m.screen = ScreenMenu
		return nil
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keymap.History):
		return m.startAction(callLogItem)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) run(item MenuItem, values map[string]string) tea.Cmd {
	if m.svc == nil {
		return notifyErrorCmd("no backend configured")
	}

	m.active = item
	m.state.StartLoading(item.Label)
	m.state.SetLoadingNotification(item.Label + "...")
	tick := m.spinner.Start(item.Label+"...", m.now())

	return tea.Batch(tick, runActionCmd(m.ctx, m.svc, item, values))
}

// now reads the service clock so elapsed times match the data's.
func (m *Model) now() time.Time {
	if m.svc == nil {
		return time.Now()
	}
	return m.svc.Now()
}

func (m *Model) handleResult(msg ResultMsg) tea.Cmd {
	m.state.StopLoading()
	m.state.ClearLoadingNotification()

	m.screen = ScreenOutput
	m.inputs = nil
	m.outputTitle = msg.Title
	m.viewport.SetContent(msg.Body)
	m.viewport.GotoTop()

	if msg.Err != nil {
		return notifyErrorCmd(msg.Title + " failed")
	}
	if msg.Notice != "" {
		return notifySuccessCmd(msg.Notice)
	}
	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	if !m.ready {
		return m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View()))
	}

	var body string
	if loading, _ := m.state.IsLoading(); loading {
		body = components.RenderSpinnerCentered(&m.spinner, m.width, max(m.height-3, 1), m.now())
	} else {
		switch m.screen {
		case ScreenPrompt:
			body = m.renderPrompt()
		case ScreenOutput:
			body = m.renderOutput()
		default:
			body = m.renderMenu()
		}
	}

	view := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body)

	if toasts := m.renderNotifications(); len(toasts) > 0 {
		return m.overlayToasts(view, toasts)
	}
	return view
}

func (m *Model) renderHeader() string {
	title := m.styles.Title.Render("Team Usage Dashboard") + " " +
		m.styles.Subtle.Render(version.GetVersion())
	return m.styles.Header.Width(m.width).Render(title)
}

func (m *Model) renderMenu() string {
	var left, right []string
	for i, item := range MenuItems() {
		line := m.renderMenuItem(i, item)
		if i < menuSplit {
			left = append(left, line)
		} else {
			right = append(right, line)
		}
	}

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(36).Render(strings.Join(left, "\n")),
		strings.Join(right, "\n"),
	)

	prompt := styles.PromptLabelStyle.Render(fmt.Sprintf("Select (0-%d): ", len(MenuItems())-1)) + m.choice + "_"

	return m.styles.Content.Render(strings.Join([]string{
		columns,
		"",
		prompt,
		"",
		m.help.ShortHelpView(m.keymap.menuHelp()),
	}, "\n"))
}

func (m *Model) renderMenuItem(index int, item MenuItem) string {
	number := styles.MenuNumberStyle.Render(fmt.Sprintf("%2d", item.ID))
	if index == m.cursor {
		return "> " + number + " " + styles.SelectedMenuItemStyle.Render(item.Label)
	}
	return "  " + number + " " + styles.MenuItemStyle.Render(item.Label)
}

func (m *Model) renderPrompt() string {
	lines := []string{m.styles.Title.Render(m.active.Label), ""}
	for i, f := range m.active.Fields {
		label := f.Label
		if f.Required {
			label += " *"
		}
		lines = append(lines, styles.PromptLabelStyle.Render(label), m.inputs[i].View(), "")
	}
	lines = append(lines, m.help.ShortHelpView(m.keymap.promptHelp()))
	return m.styles.Content.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderOutput() string {
	title := m.styles.Title.Render(m.outputTitle)
	scroll := m.styles.Subtle.Render(fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))

	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join([]string{
		title + "  " + scroll,
		m.viewport.View(),
		m.help.ShortHelpView(m.keymap.outputHelp()),
	}, "\n"))
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func isDigits(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
