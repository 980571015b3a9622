package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/melodycompare/mcx/internal/chat"
)

// sessionChangedMsg signals that a controller operation finished. Any error
// was already surfaced as a notification, so the UI just re-renders.
type sessionChangedMsg struct {
	err error
}

// chatEventMsg carries one streamed chunk of an assistant reply.
type chatEventMsg chat.Event

// reportReadyMsg delivers a generated narrative report.
type reportReadyMsg struct {
	report string
	err    error
}

// waitForChatEvent blocks on the stream channel and delivers the next chunk.
// The Update loop re-issues it until a terminal event arrives, giving
// one-chunk-per-message rendering.
func waitForChatEvent(events <-chan chat.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return chatEventMsg(chat.Event{Done: true})
		}
		return chatEventMsg(ev)
	}
}
