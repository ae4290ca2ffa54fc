package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/relaydeck/internal/render"
	"github.com/muurk/relaydeck/internal/state"
)

// How many chat messages the pane keeps on screen
const chatHistoryLines = 8

// View implements tea.Model
func (m Model) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Loading devices...\n", m.spinner.View())
	}

	var b strings.Builder

	header := TitleStyle.Render("relaydeck")
	if m.connected {
		header += StatusLineStyle.Render("  live")
	}
	b.WriteString(header)
	b.WriteString("\n")

	if m.loadErr != "" {
		b.WriteString(NoticeStyle.Render("  " + m.loadErr))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(NoticeStyle.Render("  " + m.notice))
		b.WriteString("\n")
	}

	grid := m.renderGrid()
	chat := m.renderChat()

	if m.width >= SplitThreshold {
		gridWidth := m.width * 3 / 5
		grid = lipgloss.NewStyle().Width(gridWidth).Render(grid)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, chat))
	} else {
		b.WriteString(grid)
		b.WriteString("\n")
		b.WriteString(chat)
	}
	b.WriteString("\n")

	switch m.focus {
	case focusAddForm:
		b.WriteString(m.renderAddForm())
		b.WriteString("\n")
	case focusRemoveModal:
		b.WriteString(m.renderRemoveModal())
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

// renderGrid paints the retained render tree, room by room
func (m Model) renderGrid() string {
	if m.view.Empty {
		return EmptyStyle.Render("No devices yet. Press 'a' to add one.")
	}

	var b strings.Builder
	cellIndex := 0

	for _, room := range m.view.Rooms {
		b.WriteString(RoomHeaderStyle.Render(room.Name))
		b.WriteString("\n")

		for _, card := range room.Cards {
			selected := false
			var lines []string
			lines = append(lines,
				CardTitleStyle.Render(card.Title)+" "+CardAddressStyle.Render(card.Address))

			for i, cell := range card.Cells {
				underCursor := m.focus != focusChat && cellIndex == m.cursor
				if underCursor {
					selected = true
				}
				lines = append(lines, m.renderCell(card.DeviceID, i, cell, underCursor))
				cellIndex++
			}

			b.WriteString(CardBoxStyle(selected).Render(strings.Join(lines, "\n")))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderCell paints one relay row, swapping in the inline editor while a
// rename is in progress on that relay
func (m Model) renderCell(deviceID string, index int, cell render.Cell, underCursor bool) string {
	if m.focus == focusRenameEdit && m.renameKey.DeviceID == deviceID && m.renameKey.Relay == index {
		return "  " + m.renameInput.View()
	}

	marker := MarkerOff
	style := RelayOffStyle
	if cell.On {
		marker = MarkerOn
		style = RelayOnStyle
	}
	line := fmt.Sprintf("%s %s", marker, cell.Label)
	if underCursor {
		return "▸ " + SelectedCellStyle.Render(line)
	}
	return "  " + style.Render(line)
}

// renderChat paints the conversation log, assistant status line and input
func (m Model) renderChat() string {
	var lines []string

	msgs := m.store.Chat.Messages()
	if len(msgs) > chatHistoryLines {
		msgs = msgs[len(msgs)-chatHistoryLines:]
	}
	for _, msg := range msgs {
		if msg.Sender == state.SenderUser {
			lines = append(lines, ChatUserStyle.Render("you: "+msg.Text))
		} else {
			lines = append(lines, ChatAssistantStyle.Render("assistant: "+msg.Text))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, MutedStyle().Render("No messages yet."))
	}

	if label := statusLabel(m.store.Assistant.Get()); label != "" {
		lines = append(lines, StatusLineStyle.Render(label))
	}

	lines = append(lines, m.chatInput.View())

	width := m.width / 3
	if m.width < SplitThreshold {
		width = m.width
	}
	return ChatBoxStyle(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderAddForm() string {
	labels := [addFieldCount]string{"Name", "Address", "Room"}

	var lines []string
	lines = append(lines, CardTitleStyle.Render("Add device"))
	for i, input := range m.addInputs {
		lines = append(lines, FormLabelStyle.Render(labels[i]+": ")+input.View())
	}
	if m.scanBusy {
		lines = append(lines, StatusLineStyle.Render(m.spinner.View()+" scanning..."))
	} else if m.scanNote != "" {
		lines = append(lines, StatusLineStyle.Render(m.scanNote))
	}
	if m.addErr != "" {
		lines = append(lines, FormErrorStyle.Render(m.addErr))
	}
	if m.addBusy {
		lines = append(lines, StatusLineStyle.Render(m.spinner.View()+" adding..."))
	}
	lines = append(lines, HelpStyle.Render("enter save · ctrl+f scan · esc cancel"))

	return FormBoxStyle().Render(strings.Join(lines, "\n"))
}

func (m Model) renderRemoveModal() string {
	var lines []string
	lines = append(lines, CardTitleStyle.Render("Remove device"))
	lines = append(lines, fmt.Sprintf("Remove %q and all of its relays?", m.removeName))
	if m.removeBusy {
		lines = append(lines, StatusLineStyle.Render(m.spinner.View()+" removing..."))
	} else {
		lines = append(lines, HelpStyle.Render("y confirm · n cancel"))
	}
	return ModalBoxStyle().Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	switch m.focus {
	case focusChat:
		return HelpStyle.Render(m.help.ShortHelpView(m.chatKeys.ShortHelp()))
	case focusGrid:
		return HelpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return ""
}

// MutedStyle returns a style for secondary text
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MutedColor)
}

// statusLabel maps assistant statuses to the line shown under the chat log.
// Idle renders as nothing; unknown statuses are shown verbatim.
func statusLabel(status state.AssistantStatus, message string) string {
	switch status {
	case state.StatusIdle:
		return ""
	case state.StatusListening:
		return "listening for wake word..."
	case state.StatusRecording:
		return "recording command..."
	case state.StatusProcessing:
		if message != "" {
			return message
		}
		return "thinking..."
	}
	if message != "" {
		return fmt.Sprintf("%s: %s", status, message)
	}
	return string(status)
}

func pluralBoards(n int) string {
	if n == 1 {
		return "found 1 board"
	}
	return fmt.Sprintf("found %d boards", n)
}
