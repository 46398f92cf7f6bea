package app

import (
	"strconv"
	"strings"
)

// ActionID identifies a console operation.
type ActionID int

// Menu actions. The numeric value is the number typed at the menu prompt.
const (
	ActionQuit ActionID = iota
	ActionAllMembers
	ActionOwners
	ActionMembers
	ActionFilterRole
	ActionStatistics
	ActionSaveJSON
	ActionSpend
	ActionDailyUsage
	ActionUsageAnalysis
	ActionExportCSV
	ActionExportXLSX

	// ActionCallLog is bound to a key rather than a number.
	ActionCallLog ActionID = -1
)

// Prompt field keys.
const (
	FieldStart  = "start"
	FieldEnd    = "end"
	FieldSearch = "search"
	FieldRole   = "role"
	FieldEmail  = "email"
)

// Field is one text input collected before an action runs.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Required    bool
}

// MenuItem is an entry of the main menu.
type MenuItem struct {
	Label  string
	Fields []Field
	ID     ActionID
}

var periodFields = []Field{
	{Key: FieldStart, Label: "Start date", Placeholder: "YYYY-MM-DD (empty: first of month)"},
	{Key: FieldEnd, Label: "End date", Placeholder: "YYYY-MM-DD (empty: now)"},
}

var menuItems = []MenuItem{
	{ID: ActionAllMembers, Label: "All team members"},
	{ID: ActionOwners, Label: "Owners"},
	{ID: ActionMembers, Label: "Members"},
	{ID: ActionFilterRole, Label: "Filter by role", Fields: []Field{
		{Key: FieldRole, Label: "Role", Placeholder: "owner, member, free-owner", Required: true},
	}},
	{ID: ActionStatistics, Label: "Team statistics"},
	{ID: ActionSaveJSON, Label: "Save JSON report"},
	{ID: ActionSpend, Label: "Spend report", Fields: []Field{
		{Key: FieldSearch, Label: "Search term", Placeholder: "name or email (empty: all)"},
	}},
	{ID: ActionDailyUsage, Label: "Daily usage", Fields: periodFields},
	{ID: ActionUsageAnalysis, Label: "Usage events analysis", Fields: periodFields},
	{ID: ActionExportCSV, Label: "Export usage events to CSV", Fields: append(append([]Field{}, periodFields...),
		Field{Key: FieldEmail, Label: "User email", Placeholder: "exact email (empty: all users)"},
	)},
	{ID: ActionExportXLSX, Label: "Export members + spend workbook (XLSX)"},
	{ID: ActionQuit, Label: "Quit"},
}

var callLogItem = MenuItem{ID: ActionCallLog, Label: "API call log"}

// MenuItems returns the menu in display order.
func MenuItems() []MenuItem {
	return menuItems
}

// ItemByChoice resolves a typed menu number.
func ItemByChoice(choice string) (MenuItem, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil {
		return MenuItem{}, false
	}
	for _, item := range menuItems {
		if int(item.ID) == n {
			return item, true
		}
	}
	return MenuItem{}, false
}
