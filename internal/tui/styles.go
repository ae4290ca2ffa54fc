package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the dashboard UI
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	OnColor      = lipgloss.Color("#43BF6D") // Green - relays that are on
	OffColor     = lipgloss.Color("#626262") // Gray - relays that are off
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, failed commands
	WarningColor = lipgloss.Color("#FFA500") // Orange - transient notices
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 120 // Maximum content width before capping
	SplitThreshold   = 100 // Minimum width for side-by-side dashboard and chat
)

// Shared styles for the dashboard UI
var (
	// TitleStyle is for the application header
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(1)

	// RoomHeaderStyle is for room group headings
	RoomHeaderStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginTop(1)

	// CardTitleStyle is for device names on cards
	CardTitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// CardAddressStyle is for the device address line
	CardAddressStyle = lipgloss.NewStyle().
				Foreground(MutedColor)

	// RelayOnStyle is for relay cells whose state is on
	RelayOnStyle = lipgloss.NewStyle().
			Foreground(OnColor)

	// RelayOffStyle is for relay cells whose state is off
	RelayOffStyle = lipgloss.NewStyle().
			Foreground(OffColor)

	// SelectedCellStyle highlights the relay cell under the cursor
	SelectedCellStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(PrimaryColor).
				Bold(true)

	// ChatUserStyle is for messages the user sent
	ChatUserStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// ChatAssistantStyle is for messages from the assistant
	ChatAssistantStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor)

	// StatusLineStyle is for the assistant status indicator
	StatusLineStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Italic(true)

	// NoticeStyle is for transient failure notices
	NoticeStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// FormLabelStyle is for form field labels
	FormLabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// FormErrorStyle is for inline validation errors on forms
	FormErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// EmptyStyle is for the placeholder shown with no devices
	EmptyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Padding(1, 2)

	// HelpStyle is for the key help footer
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// Relay state markers
const (
	MarkerOn  = "●"
	MarkerOff = "○"
)

// CardBoxStyle returns the border style for device cards
func CardBoxStyle(selected bool) lipgloss.Style {
	border := MutedColor
	if selected {
		border = PrimaryColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

// ModalBoxStyle returns the border style for confirmation modals
func ModalBoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Padding(1, 2)
}

// FormBoxStyle returns the border style for the add-device form
func FormBoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 2)
}

// ChatBoxStyle returns the border style for the chat pane
func ChatBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width-2).
		Padding(0, 1)
}

// GetTerminalSize returns the current terminal width and height
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}
	return width, height
}
