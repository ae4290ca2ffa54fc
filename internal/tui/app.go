package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/relaydeck/internal/api"
	"github.com/muurk/relaydeck/internal/config"
	"github.com/muurk/relaydeck/internal/discovery"
	"github.com/muurk/relaydeck/internal/logging"
	"github.com/muurk/relaydeck/internal/push"
	"github.com/muurk/relaydeck/internal/render"
	"github.com/muurk/relaydeck/internal/state"
)

// focusArea tracks which part of the screen receives key events
type focusArea int

const (
	focusGrid focusArea = iota
	focusChat
	focusAddForm
	focusRemoveModal
	focusRenameEdit
)

// Add-device form field indexes
const (
	fieldName = iota
	fieldAddress
	fieldRoom
	addFieldCount
)

// Messages for async operations
type initLoadedMsg struct {
	err error
}

type pollTickMsg time.Time

type snapshotMsg struct {
	snap api.Snapshot
	err  error
}

type toggleDoneMsg struct {
	key        state.Key
	rolledBack bool
	err        error
}

// toggleFailedMsg is delivered by the dispatcher's notifier when an
// optimistic toggle had to be rolled back
type toggleFailedMsg struct {
	key state.Key
	err error
}

type addDoneMsg struct {
	err error
}

type removeDoneMsg struct {
	id  string
	err error
}

type chatDoneMsg struct{}

type renameDoneMsg struct {
	key state.Key
	err error
}

type pushEventMsg struct {
	event push.Event
	ok    bool
}

type scanDoneMsg struct {
	boards []*discovery.Board
	err    error
}

type clearNoticeMsg struct {
	seq int
}

// How long transient failure notices stay on screen
const noticeDuration = 4 * time.Second

// Model is the top-level Bubble Tea model for the dashboard
type Model struct {
	cfg        *config.Config
	client     *api.Client
	store      *state.Store
	dispatcher *state.Dispatcher
	reconciler *state.Reconciler
	listener   *push.Listener
	view       *render.View

	keys     gridKeyMap
	chatKeys chatKeyMap
	help     help.Model

	width  int
	height int

	loading bool
	loadErr string
	spinner spinner.Model

	focus  focusArea
	cells  []state.Key
	cursor int

	chatInput textinput.Model

	// Add-device form state
	addInputs []textinput.Model
	addField  int
	addErr    string
	addBusy   bool
	scanBusy  bool
	scanNote  string

	// Remove confirmation state
	removeTarget string
	removeName   string
	removeBusy   bool

	// Inline rename state
	renameInput textinput.Model
	renameKey   state.Key

	notice    string
	noticeSeq int
	connected bool
}

// NewModel creates the dashboard model. The listener may be nil when the
// push channel is disabled.
func NewModel(cfg *config.Config, client *api.Client, store *state.Store, dispatcher *state.Dispatcher, listener *push.Listener) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	chat := textinput.New()
	chat.Placeholder = "Message the assistant..."
	chat.CharLimit = 500
	chat.Width = 40

	inputs := make([]textinput.Model, addFieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 100
		inputs[i].Width = 32
	}
	inputs[fieldName].Placeholder = "Living Room Plug"
	inputs[fieldAddress].Placeholder = "192.168.1.40"
	inputs[fieldRoom].Placeholder = "Living Room"

	rename := textinput.New()
	rename.CharLimit = 60
	rename.Width = 24

	width, height := GetTerminalSize()

	return Model{
		cfg:         cfg,
		client:      client,
		store:       store,
		dispatcher:  dispatcher,
		reconciler:  state.NewReconciler(store),
		listener:    listener,
		view:        render.NewView(),
		keys:        defaultGridKeyMap(),
		chatKeys:    defaultChatKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		loading:     true,
		spinner:     sp,
		chatInput:   chat,
		addInputs:   inputs,
		renameInput: rename,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadCmd(), m.scheduleTick()}
	if m.listener != nil {
		cmds = append(cmds, m.waitForPush())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > MaxContentWidth {
			m.width = MaxContentWidth
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.addBusy && !m.removeBusy && !m.scanBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case initLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = api.UserMessage(msg.err)
			logging.Error("initial load failed", zap.Error(msg.err))
			return m, nil
		}
		m.loadErr = ""
		m.rebuildView()
		return m, nil

	case pollTickMsg:
		cmds := []tea.Cmd{m.scheduleTick()}
		if !m.loading {
			cmds = append(cmds, m.fetchStatesCmd())
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		if msg.err != nil {
			logging.Error("state poll failed", zap.Error(msg.err))
			return m, nil
		}
		changed := m.reconciler.ApplySnapshot(msg.snap)
		m.view.RenderChanged(m.store.VM, changed)
		return m, nil

	case toggleDoneMsg:
		m.view.RenderChanged(m.store.VM, []state.Key{msg.key})
		return m, nil

	case toggleFailedMsg:
		m.view.RenderChanged(m.store.VM, []state.Key{msg.key})
		return m.setNotice(api.UserMessage(msg.err))

	case addDoneMsg:
		m.addBusy = false
		if msg.err != nil {
			m.addErr = api.UserMessage(msg.err)
			return m, nil
		}
		m.closeAddForm()
		m.rebuildView()
		return m, nil

	case removeDoneMsg:
		m.removeBusy = false
		m.focus = focusGrid
		m.removeTarget = ""
		if msg.err != nil {
			logging.Error("remove device failed", zap.String("device", msg.id), zap.Error(msg.err))
			return m.setNotice(api.UserMessage(msg.err))
		}
		m.rebuildView()
		return m, nil

	case chatDoneMsg:
		return m, nil

	case renameDoneMsg:
		if msg.err != nil {
			logging.Warn("relay rename not persisted", zap.String("relay", msg.key.String()), zap.Error(msg.err))
		}
		return m, nil

	case scanDoneMsg:
		m.scanBusy = false
		if msg.err != nil {
			m.scanNote = "scan failed"
			logging.Error("mDNS scan failed", zap.Error(msg.err))
			return m, nil
		}
		if len(msg.boards) == 0 {
			m.scanNote = "no boards found"
			return m, nil
		}
		board := msg.boards[0]
		m.addInputs[fieldAddress].SetValue(board.IP)
		if m.addInputs[fieldName].Value() == "" && board.Hostname != "" {
			m.addInputs[fieldName].SetValue(strings.TrimSuffix(board.Hostname, ".local"))
		}
		m.scanNote = pluralBoards(len(msg.boards))
		return m, nil

	case pushEventMsg:
		if !msg.ok {
			m.connected = false
			return m, nil
		}
		return m.handlePushEvent(msg.event)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handlePushEvent routes one decoded push notification
func (m Model) handlePushEvent(ev push.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitForPush()}

	switch ev.Type {
	case push.EventConnect:
		m.connected = true
		cmds = append(cmds, m.fetchStatesCmd())
	case push.EventStatusUpdate:
		if ev.Status != nil {
			m.store.Assistant.Set(state.AssistantStatus(ev.Status.Status), ev.Status.Message)
		}
	case push.EventNewMessage:
		if ev.Message != nil {
			sender := state.SenderAssistant
			if ev.Message.Sender == string(state.SenderUser) {
				sender = state.SenderUser
			}
			m.store.Chat.Append(sender, ev.Message.Text)
		}
	case push.EventRefreshStates:
		cmds = append(cmds, m.fetchStatesCmd())
	}

	return m, tea.Batch(cmds...)
}

// handleKey routes key events to the focused area
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusChat:
		return m.handleChatKey(msg)
	case focusAddForm:
		return m.handleAddFormKey(msg)
	case focusRemoveModal:
		return m.handleRemoveModalKey(msg)
	case focusRenameEdit:
		return m.handleRenameKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.cells)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		return m.startToggle()

	case key.Matches(msg, m.keys.Rename):
		return m.startRename()

	case key.Matches(msg, m.keys.Add):
		m.focus = focusAddForm
		m.addField = fieldName
		m.addErr = ""
		m.scanNote = ""
		for i := range m.addInputs {
			m.addInputs[i].SetValue("")
			m.addInputs[i].Blur()
		}
		m.addInputs[fieldName].Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Remove):
		sel, ok := m.selectedKey()
		if !ok {
			return m, nil
		}
		dev, ok := m.store.VM.Device(sel.DeviceID)
		if !ok {
			return m, nil
		}
		m.focus = focusRemoveModal
		m.removeTarget = dev.ID()
		m.removeName = dev.Name
		return m, nil

	case key.Matches(msg, m.keys.Chat):
		m.focus = focusChat
		m.chatInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.chatKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.chatKeys.Back):
		m.chatInput.Blur()
		m.focus = focusGrid
		return m, nil

	case key.Matches(msg, m.chatKeys.Send):
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" {
			return m, nil
		}
		m.chatInput.SetValue("")
		return m, m.sendChatCmd(text)
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m Model) handleAddFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.addBusy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.closeAddForm()
		return m, nil

	case "tab", "down":
		m.setAddFocus((m.addField + 1) % addFieldCount)
		return m, textinput.Blink

	case "shift+tab", "up":
		m.setAddFocus((m.addField + addFieldCount - 1) % addFieldCount)
		return m, textinput.Blink

	case "ctrl+f":
		if m.scanBusy {
			return m, nil
		}
		m.scanBusy = true
		m.scanNote = "scanning..."
		return m, tea.Batch(m.spinner.Tick, m.scanCmd())

	case "enter":
		name := strings.TrimSpace(m.addInputs[fieldName].Value())
		ip := strings.TrimSpace(m.addInputs[fieldAddress].Value())
		room := strings.TrimSpace(m.addInputs[fieldRoom].Value())
		if name == "" || ip == "" || room == "" {
			m.addErr = "Name, address and room are all required"
			return m, nil
		}
		m.addErr = ""
		m.addBusy = true
		return m, tea.Batch(m.spinner.Tick, m.addCmd(name, ip, room))
	}

	var cmd tea.Cmd
	m.addInputs[m.addField], cmd = m.addInputs[m.addField].Update(msg)
	return m, cmd
}

func (m Model) handleRemoveModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.removeBusy {
		return m, nil
	}
	switch msg.String() {
	case "y", "Y", "enter":
		m.removeBusy = true
		return m, tea.Batch(m.spinner.Tick, m.removeCmd(m.removeTarget))
	case "n", "N", "esc":
		m.focus = focusGrid
		m.removeTarget = ""
		return m, nil
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.dispatcher.CancelRename(m.renameKey.DeviceID, m.renameKey.Relay)
		m.focus = focusGrid
		m.renameInput.Blur()
		return m, nil

	case "enter", "tab":
		target := m.renameKey
		name := strings.TrimSpace(m.renameInput.Value())
		m.focus = focusGrid
		m.renameInput.Blur()
		if !m.dispatcher.CommitRename(target.DeviceID, target.Relay, name) {
			return m, nil
		}
		m.view.RenderChanged(m.store.VM, []state.Key{target})
		return m, m.renameCmd(target, name)
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

// startToggle kicks off the optimistic toggle for the selected cell
func (m Model) startToggle() (tea.Model, tea.Cmd) {
	sel, ok := m.selectedKey()
	if !ok {
		return m, nil
	}
	current, _ := m.store.VM.RelayState(sel.DeviceID, sel.Relay)
	target := !current
	if !m.dispatcher.BeginToggle(sel.DeviceID, sel.Relay, target) {
		return m, nil
	}
	m.view.RenderChanged(m.store.VM, []state.Key{sel})
	return m, m.toggleCmd(sel, target)
}

// startRename opens the inline editor for the selected cell
func (m Model) startRename() (tea.Model, tea.Cmd) {
	sel, ok := m.selectedKey()
	if !ok {
		return m, nil
	}
	current, ok := m.dispatcher.BeginRename(sel.DeviceID, sel.Relay)
	if !ok {
		return m, nil
	}
	m.focus = focusRenameEdit
	m.renameKey = sel
	m.renameInput.SetValue(current)
	m.renameInput.CursorEnd()
	m.renameInput.Focus()
	return m, textinput.Blink
}

func (m *Model) setAddFocus(field int) {
	m.addInputs[m.addField].Blur()
	m.addField = field
	m.addInputs[m.addField].Focus()
}

func (m *Model) closeAddForm() {
	m.focus = focusGrid
	m.addErr = ""
	m.scanNote = ""
	for i := range m.addInputs {
		m.addInputs[i].Blur()
	}
}

// setNotice shows a transient failure notice and schedules its removal
func (m Model) setNotice(text string) (tea.Model, tea.Cmd) {
	m.notice = text
	m.noticeSeq++
	seq := m.noticeSeq
	return m, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// rebuildView regenerates the full render tree and the navigation order
func (m *Model) rebuildView() {
	m.view.RenderAll(m.store.VM)

	m.cells = m.cells[:0]
	for _, room := range m.view.Rooms {
		for _, card := range room.Cards {
			for i := range card.Cells {
				m.cells = append(m.cells, state.Key{DeviceID: card.DeviceID, Relay: i})
			}
		}
	}
	if m.cursor >= len(m.cells) {
		m.cursor = len(m.cells) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selectedKey returns the relay under the cursor
func (m Model) selectedKey() (state.Key, bool) {
	if len(m.cells) == 0 || m.cursor < 0 || m.cursor >= len(m.cells) {
		return state.Key{}, false
	}
	return m.cells[m.cursor], true
}

// Commands

func (m Model) loadCmd() tea.Cmd {
	d := m.dispatcher
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return initLoadedMsg{err: d.Reload(ctx)}
	}
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.cfg.PollInterval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func (m Model) fetchStatesCmd() tea.Cmd {
	client := m.client
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := client.FetchAllStates(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) toggleCmd(key state.Key, on bool) tea.Cmd {
	d := m.dispatcher
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rolledBack, err := d.CompleteToggle(ctx, key.DeviceID, key.Relay, on)
		return toggleDoneMsg{key: key, rolledBack: rolledBack, err: err}
	}
}

func (m Model) addCmd(name, ip, room string) tea.Cmd {
	d := m.dispatcher
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return addDoneMsg{err: d.AddDevice(ctx, name, ip, room)}
	}
}

func (m Model) removeCmd(id string) tea.Cmd {
	d := m.dispatcher
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return removeDoneMsg{id: id, err: d.RemoveDevice(ctx, id)}
	}
}

func (m Model) renameCmd(key state.Key, name string) tea.Cmd {
	d := m.dispatcher
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := d.PerformRename(ctx, key.DeviceID, key.Relay, name)
		return renameDoneMsg{key: key, err: err}
	}
}

func (m Model) sendChatCmd(text string) tea.Cmd {
	d := m.dispatcher
	timeout := m.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		d.SendChat(ctx, text)
		return chatDoneMsg{}
	}
}

func (m Model) scanCmd() tea.Cmd {
	timeout := m.cfg.DiscoverTimeout
	return func() tea.Msg {
		boards, err := discovery.ScanForBoards(context.Background(), timeout)
		return scanDoneMsg{boards: boards, err: err}
	}
}

func (m Model) waitForPush() tea.Cmd {
	events := m.listener.Events()
	return func() tea.Msg {
		ev, ok := <-events
		return pushEventMsg{event: ev, ok: ok}
	}
}
