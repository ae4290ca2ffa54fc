package state

import "sync"

// Sender identifies who authored a chat message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is a single entry in the conversation log
type ChatMessage struct {
	Sender Sender
	Text   string
}

// ChatLog is the append-only conversation with the assistant. It grows for
// the session's lifetime; nothing here trims it.
type ChatLog struct {
	mu       sync.RWMutex
	messages []ChatMessage
}

// Append adds a message to the end of the log
func (l *ChatLog) Append(sender Sender, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, ChatMessage{Sender: sender, Text: text})
}

// Messages returns a copy of the log in order
func (l *ChatLog) Messages() []ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages
func (l *ChatLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// AssistantStatus is the voice assistant's state as reported by the hub.
// Only push notifications mutate it; the UI reads it.
type AssistantStatus string

const (
	StatusIdle       AssistantStatus = "idle"
	StatusListening  AssistantStatus = "listening_for_wakeword"
	StatusRecording  AssistantStatus = "recording_command"
	StatusProcessing AssistantStatus = "processing"
)

// StatusTracker holds the assistant status and its human-readable message.
// Unknown status strings from the hub (it also emits "initializing" and
// "cooldown") are carried verbatim rather than rejected.
type StatusTracker struct {
	mu      sync.RWMutex
	status  AssistantStatus
	message string
}

// Set updates the status and message
func (t *StatusTracker) Set(status AssistantStatus, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.message = message
}

// Get returns the current status and message
func (t *StatusTracker) Get() (AssistantStatus, string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status, t.message
}

// Store is the explicit session context owning all process-wide mutable
// state: the view model, the chat log, and the assistant status. It is
// created once at startup and passed to the dispatcher, reconciler, and UI;
// there are no package-level singletons. Page-lifetime scoped, no teardown.
type Store struct {
	VM        *ViewModel
	Chat      *ChatLog
	Assistant *StatusTracker
}

// NewStore creates an empty Store with the assistant idle
func NewStore() *Store {
	s := &Store{
		VM:        NewViewModel(),
		Chat:      &ChatLog{},
		Assistant: &StatusTracker{},
	}
	s.Assistant.Set(StatusIdle, "")
	return s
}
