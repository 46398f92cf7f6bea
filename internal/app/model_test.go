package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newReadyModel(svc Service) *Model {
	m := NewModel(context.Background(), svc)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

// drain runs cmd and feeds every ResultMsg it produces back into m.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if res, ok := c().(ResultMsg); ok {
				m.Update(res)
			}
		}
	case ResultMsg:
		m.Update(msg)
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewModel(t *testing.T) {
	m := NewModel(nil, nil)
	if m.state == nil {
		t.Error("State should be initialized")
	}
	if m.ctx == nil {
		t.Error("ctx should default to background")
	}
	if m.Screen() != ScreenMenu {
		t.Error("Default screen should be the menu")
	}
	if m.Init() == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m := NewModel(context.Background(), nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if m.viewport.Height != 50-chromeHeight {
		t.Errorf("viewport height = %d", m.viewport.Height)
	}
}

func TestModel_Update_Tick(t *testing.T) {
	m := NewModel(context.Background(), nil)
	_, cmd := m.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(context.Background(), nil)

	if view := m.View(); !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{"Team Usage Dashboard", "All team members", "Export members + spend workbook (XLSX)", "Quit", "Select (0-11)"} {
		if !strings.Contains(view, want) {
			t.Errorf("menu view missing %q", want)
		}
	}
}

func TestModel_MenuNavigation(t *testing.T) {
	m := newReadyModel(newFakeService())

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != len(MenuItems())-1 {
		t.Errorf("cursor should wrap to the last item, got %d", m.cursor)
	}
	m.Update(runes("j"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestModel_TypedChoice(t *testing.T) {
	svc := newFakeService()
	m := newReadyModel(svc)

	m.Update(runes("1"))
	m.Update(runes("1"))
	m.Update(runes("1"))
	if m.choice != "11" {
		t.Fatalf("choice = %q, want 11", m.choice)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if loading, action := m.state.IsLoading(); !loading || !strings.Contains(action, "XLSX") {
		t.Fatalf("expected workbook export to run, got %v %q", loading, action)
	}
	drain(t, m, cmd)

	if m.Screen() != ScreenOutput {
		t.Fatalf("screen = %v, want output", m.Screen())
	}
	if len(svc.calls) != 1 || svc.calls[0] != "xlsx" {
		t.Errorf("calls = %v", svc.calls)
	}
	if loading, _ := m.state.IsLoading(); loading {
		t.Error("loading should stop after the result")
	}
}

func TestModel_InvalidChoice(t *testing.T) {
	svc := newFakeService()
	m := newReadyModel(svc)

	m.Update(runes("9"))
	m.Update(runes("9"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg, ok := cmd().(AddNotificationMsg)
	if !ok || msg.Type != NotificationWarning {
		t.Fatalf("expected a warning notification, got %#v", msg)
	}
	if len(svc.calls) != 0 || m.Screen() != ScreenMenu {
		t.Error("invalid choice should stay on the menu")
	}
}

func TestModel_Erase(t *testing.T) {
	m := newReadyModel(newFakeService())
	m.Update(runes("1"))
	m.Update(runes("0"))
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.choice != "1" {
		t.Errorf("choice = %q, want 1", m.choice)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
	}{
		{"q", []tea.KeyMsg{runes("q")}},
		{"CtrlC", []tea.KeyMsg{{Type: tea.KeyCtrlC}}},
		{"Zero", []tea.KeyMsg{runes("0"), {Type: tea.KeyEnter}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newReadyModel(newFakeService())
			var cmd tea.Cmd
			for _, k := range tt.keys {
				_, cmd = m.Update(k)
			}
			if !isQuit(cmd) {
				t.Error("expected quit command")
			}
		})
	}
}

func TestModel_PromptFlow(t *testing.T) {
	svc := newFakeService()
	m := newReadyModel(svc)

	m.Update(runes("7"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Screen() != ScreenPrompt {
		t.Fatalf("screen = %v, want prompt", m.Screen())
	}
	if !strings.Contains(m.View(), "Search term") {
		t.Error("prompt view should show the field label")
	}

	// q and h are text inside a prompt.
	for _, r := range "qh" {
		m.Update(runes(string(r)))
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, m, cmd)

	if svc.lastSearch != "qh" {
		t.Errorf("search = %q, want qh", svc.lastSearch)
	}
	if m.Screen() != ScreenOutput {
		t.Errorf("screen = %v, want output", m.Screen())
	}
}

func TestModel_PromptFieldNavigation(t *testing.T) {
	svc := newFakeService()
	m := newReadyModel(svc)

	m.Update(runes("10"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(m.inputs))
	}

	// Enter advances until the last field.
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != 2 {
		t.Fatalf("focus = %d, want 2", m.focus)
	}
	for _, r := range "lin@example.com" {
		m.Update(runes(string(r)))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != 1 {
		t.Errorf("focus = %d, want 1", m.focus)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, m, cmd)

	if svc.lastEmail != "lin@example.com" {
		t.Errorf("email = %q", svc.lastEmail)
	}
}

func TestModel_PromptRequired(t *testing.T) {
	svc := newFakeService()
	m := newReadyModel(svc)

	m.Update(runes("4"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg, ok := cmd().(AddNotificationMsg)
	if !ok || msg.Type != NotificationWarning || !strings.Contains(msg.Message, "Role") {
		t.Fatalf("expected a required-field warning, got %#v", msg)
	}
	if m.Screen() != ScreenPrompt || len(svc.calls) != 0 {
		t.Error("prompt should stay open without calling the API")
	}
}

func TestModel_PromptEscape(t *testing.T) {
	m := newReadyModel(newFakeService())
	m.Update(runes("8"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.Screen() != ScreenMenu || m.inputs != nil {
		t.Error("esc should return to the menu")
	}
}

func TestModel_OutputKeys(t *testing.T) {
	svc := newFakeService()
	m := newReadyModel(svc)

	m.Update(runes("1"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, m, cmd)

	view := m.View()
	if !strings.Contains(view, "ada@example.com") {
		t.Error("output view should show the result")
	}

	_, cmd = m.Update(runes("h"))
	drain(t, m, cmd)
	if svc.calls[len(svc.calls)-1] != "calllog" {
		t.Errorf("h should open the call log, calls = %v", svc.calls)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Screen() != ScreenMenu {
		t.Error("esc should return to the menu")
	}
}

func TestModel_HistoryFromMenu(t *testing.T) {
	svc := newFakeService()
	m := newReadyModel(svc)

	_, cmd := m.Update(runes("h"))
	drain(t, m, cmd)

	if m.outputTitle != callLogItem.Label {
		t.Errorf("title = %q", m.outputTitle)
	}
}

func TestModel_KeysIgnoredWhileLoading(t *testing.T) {
	svc := newFakeService()
	m := newReadyModel(svc)
	m.run(item(t, ActionSpend), nil)
	if len(svc.calls) != 0 {
		t.Fatal("run should defer the request to its command")
	}

	if cmd := m.handleKeyMsg(runes("q")); cmd != nil {
		t.Error("keys other than ctrl+c should wait for the running action")
	}
	if !isQuit(m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlC})) {
		t.Error("ctrl+c should always quit")
	}
	view := m.View()
	if !strings.Contains(view, "Spend report") {
		t.Error("view should show the running action")
	}
	if !strings.Contains(view, "ctrl+c to quit") {
		t.Error("view should say ctrl+c still quits")
	}
}

func TestModel_ResultNotifications(t *testing.T) {
	m := newReadyModel(nil)

	_, cmd := m.Update(ResultMsg{Title: "Spend report", Body: "x", Err: errors.New("boom")})
	msg, ok := cmd().(AddNotificationMsg)
	if !ok || msg.Type != NotificationError {
		t.Errorf("expected error notification, got %#v", msg)
	}

	_, cmd = m.Update(ResultMsg{Title: "Save JSON report", Body: "x", Notice: "Saved"})
	msg, ok = cmd().(AddNotificationMsg)
	if !ok || msg.Type != NotificationSuccess {
		t.Errorf("expected success notification, got %#v", msg)
	}

	if _, cmd = m.Update(ResultMsg{Title: "Owners", Body: "x"}); cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(AddNotificationMsg); ok {
			t.Error("plain results should not notify")
		}
	}
}

func TestModel_Notifications(t *testing.T) {
	m := newReadyModel(nil)

	_, cmd := m.Update(AddNotificationMsg{Type: NotificationSuccess, Message: "saved", Duration: time.Minute})
	if cmd == nil {
		t.Error("expiring notification should schedule its removal")
	}
	if !strings.Contains(m.View(), "[OK] saved") {
		t.Error("view should render the toast")
	}

	id := m.state.GetNotifications()[0].ID
	m.Update(RemoveNotificationMsg{ID: id})
	if len(m.state.GetNotifications()) != 0 {
		t.Error("notification should be removed")
	}
}

func TestModel_NoService(t *testing.T) {
	m := newReadyModel(nil)
	m.Update(runes("1"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg, ok := cmd().(AddNotificationMsg)
	if !ok || msg.Type != NotificationError {
		t.Errorf("expected error notification, got %#v", msg)
	}
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"7", true},
		{"10", true},
		{"", false},
		{"1a", false},
	}
	for _, tt := range tests {
		if got := isDigits([]rune(tt.in)); got != tt.want {
			t.Errorf("isDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
