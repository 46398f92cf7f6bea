// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the dashboard theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark  = lipgloss.Color("235")
	BgLight = lipgloss.Color("237")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// MenuNumberStyle styles the number in front of a menu entry.
var MenuNumberStyle = lipgloss.NewStyle().
	Foreground(Subtle).
	Width(4).
	Align(lipgloss.Right).
	MarginRight(1)

// MenuItemStyle styles menu entries.
var MenuItemStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// SelectedMenuItemStyle styles the highlighted menu entry.
var SelectedMenuItemStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// PromptLabelStyle styles text input labels.
var PromptLabelStyle = lipgloss.NewStyle().
	Foreground(Secondary).
	Bold(true)

// FocusedStyle is used for focused input elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// BlurredStyle is used for unfocused input elements.
var BlurredStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// NotificationBaseStyle is the base for all notification types.
var NotificationBaseStyle = lipgloss.NewStyle().
	Padding(0, 2).
	MarginBottom(1).
	Border(lipgloss.RoundedBorder())

// NotificationSuccessStyle for success notifications.
var NotificationSuccessStyle = NotificationBaseStyle.
	BorderForeground(Success).
	Foreground(Success)

// NotificationErrorStyle for error notifications.
var NotificationErrorStyle = NotificationBaseStyle.
	BorderForeground(Error).
	Foreground(Error)

// NotificationWarningStyle for warning notifications.
var NotificationWarningStyle = NotificationBaseStyle.
	BorderForeground(Warning).
	Foreground(Warning)

// NotificationInfoStyle for info notifications.
var NotificationInfoStyle = NotificationBaseStyle.
	BorderForeground(Info).
	Foreground(Info)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HelpSeparatorStyle styles separators in help text.
var HelpSeparatorStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Padding(0, 1)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// Spend levels relative to a member's hard limit.
var (
	SpendLowStyle     = lipgloss.NewStyle().Foreground(Success)
	SpendMediumStyle  = lipgloss.NewStyle().Foreground(Warning)
	SpendHighStyle    = lipgloss.NewStyle().Foreground(Error).Bold(true)
	SpendNoLimitStyle = lipgloss.NewStyle().Foreground(Subtle)
)

// GetSpendStyle returns the style for spend as a percentage of the hard
// limit. A negative percent means no limit is set.
func GetSpendStyle(percent float64) lipgloss.Style {
	switch {
	case percent < 0:
		return SpendNoLimitStyle
	case percent >= 80:
		return SpendHighStyle
	case percent >= 50:
		return SpendMediumStyle
	default:
		return SpendLowStyle
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
