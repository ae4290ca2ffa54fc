package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/relaydeck/internal/api"
	"github.com/muurk/relaydeck/internal/config"
	"github.com/muurk/relaydeck/internal/push"
	"github.com/muurk/relaydeck/internal/state"
)

// teaNotifier forwards rollback notifications from the dispatcher into the
// Bubble Tea event loop. The program pointer is set after tea.NewProgram,
// before any command can run.
type teaNotifier struct {
	program *tea.Program
}

// ToggleFailed implements state.Notifier
func (n *teaNotifier) ToggleFailed(key state.Key, err error) {
	if n.program == nil {
		return
	}
	n.program.Send(toggleFailedMsg{key: key, err: err})
}

// Run builds the full client stack from the configuration and runs the
// dashboard until the user quits. The push listener reconnects on its own
// for the whole session; its goroutine stops when Run returns.
func Run(cfg *config.Config) error {
	client := api.NewClient(cfg.ServerURL)
	client.SetTimeout(cfg.RequestTimeout)

	store := state.NewStore()
	dispatcher := state.NewDispatcher(client, store)

	listener, err := push.NewListener(cfg.ServerURL, cfg.PushPath)
	if err != nil {
		return fmt.Errorf("push channel setup: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	notifier := &teaNotifier{}
	dispatcher.SetNotifier(notifier)

	model := NewModel(cfg, client, store, dispatcher, listener)
	program := tea.NewProgram(model, tea.WithAltScreen())
	notifier.program = program

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard terminated: %w", err)
	}
	return nil
}
