// package chat implements the streaming assistant conversation.
//
// A Session owns an ordered message transcript. Sending a turn appends the
// user message plus a streaming assistant placeholder, then fills the
// placeholder chunk by chunk as the backend reply arrives. Consumers receive
// the same chunks over a channel so a UI can render tokens as they land.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/melodycompare/mcx/internal/models"
	"github.com/melodycompare/mcx/internal/repositories"
	"github.com/melodycompare/mcx/internal/services"
	"github.com/melodycompare/mcx/internal/shared"
)

// Mode selects which backend conversation a Session drives.
type Mode int

const (
	// ModeAssistant is the site-wide helper with a persisted transcript.
	ModeAssistant Mode = iota
	// ModeReport answers follow-up questions about one generated report and
	// is never persisted.
	ModeReport
)

// Event is one step of a streaming reply. Exactly one terminal event is
// delivered per Send: Done on success, Err on failure or cancellation.
type Event struct {
	Delta string
	Done  bool
	Err   error
}

// Session is a single conversation. All methods are safe for concurrent use;
// at most one reply streams at a time.
type Session struct {
	mu       sync.Mutex
	api      services.Backend
	store    *repositories.StateStore
	logger   *log.Logger
	mode     Mode
	greeting string
	messages []models.ChatMessage
	busy     bool
	cancel   context.CancelFunc
}

// NewAssistant creates the persistent assistant conversation. A previously
// saved transcript is restored; otherwise the session opens with greeting.
func NewAssistant(api services.Backend, store *repositories.StateStore, greeting string, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Session{
		api:      api,
		store:    store,
		logger:   logger,
		mode:     ModeAssistant,
		greeting: greeting,
	}

	var saved []models.ChatMessage
	found, err := store.Load(repositories.KeyChatHistory, &saved)
	if err != nil {
		return nil, fmt.Errorf("failed to restore chat history: %w", err)
	}
	if found && len(saved) > 0 {
		// A reply interrupted mid-stream in a previous run stays truncated
		// but must not render as still streaming.
		for i := range saved {
			saved[i].Streaming = false
		}
		s.messages = saved
	} else {
		s.messages = []models.ChatMessage{greetingMessage(greeting)}
	}
	return s, nil
}

// NewReportChat creates an ephemeral conversation about one report. The
// report text is seeded as the opening assistant message.
func NewReportChat(api services.Backend, reportText string, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Session{api: api, logger: logger, mode: ModeReport}
	if reportText != "" {
		s.messages = []models.ChatMessage{{
			Role:    models.RoleAssistant,
			Kind:    models.KindReport,
			Content: reportText,
		}}
	}
	return s
}

func greetingMessage(text string) models.ChatMessage {
	return models.ChatMessage{
		Role:    models.RoleAssistant,
		Kind:    models.KindGreeting,
		Content: text,
	}
}

// Messages returns a copy of the transcript in display order.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

// Busy reports whether a reply is currently streaming.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Send submits one user turn. It appends the user message and a streaming
// placeholder synchronously, then consumes the backend stream on a
// goroutine, emitting each text chunk as an Event. On failure the
// placeholder is removed while the user message stays, so a retry resends
// naturally. Returns ErrBusyResponding while a previous reply streams and
// ErrEmptyMessage for blank input.
func (s *Session) Send(ctx context.Context, message string, chatCtx models.ChatContext) (<-chan Event, error) {
	if strings.TrimSpace(message) == "" {
		return nil, shared.ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, shared.ErrBusyResponding
	}

	history := s.historyLocked()
	s.messages = append(s.messages,
		models.ChatMessage{Role: models.RoleUser, Kind: models.KindChat, Content: message},
		models.ChatMessage{Role: models.RoleAssistant, Kind: s.replyKind(), Streaming: true},
	)
	s.busy = true

	streamCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	events := make(chan Event, 16)
	go s.consume(streamCtx, cancel, history, message, chatCtx, events)
	return events, nil
}

// historyLocked builds the transcript sent to the backend: everything before
// the current turn except the greeting, which is a client-side fixture.
func (s *Session) historyLocked() []models.ChatMessage {
	history := make([]models.ChatMessage, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Kind == models.KindGreeting {
			continue
		}
		history = append(history, m)
	}
	return history
}

func (s *Session) replyKind() models.MessageKind {
	if s.mode == ModeReport {
		return models.KindReport
	}
	return models.KindChat
}

func (s *Session) open(ctx context.Context, history []models.ChatMessage, message string, chatCtx models.ChatContext) (*services.Stream, error) {
	if s.mode == ModeReport {
		return s.api.ReportChatStream(ctx, history, message)
	}
	return s.api.AssistantChatStream(ctx, history, message, chatCtx)
}

func (s *Session) consume(ctx context.Context, cancel context.CancelFunc, history []models.ChatMessage, message string, chatCtx models.ChatContext, events chan<- Event) {
	defer close(events)
	defer cancel()

	stream, err := s.open(ctx, history, message, chatCtx)
	if err != nil {
		s.fail(err, events)
		return
	}
	defer stream.Close()

	for {
		chunk, err := stream.Next()
		if chunk != "" {
			s.appendChunk(chunk)
			events <- Event{Delta: chunk}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.finish(events)
				return
			}
			s.fail(err, events)
			return
		}
	}
}

// appendChunk grows the streaming placeholder in place.
func (s *Session) appendChunk(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := len(s.messages) - 1
	if last >= 0 && s.messages[last].Streaming {
		s.messages[last].Content += chunk
	}
}

// finish closes out a successful reply and persists the transcript.
func (s *Session) finish(events chan<- Event) {
	s.mu.Lock()
	last := len(s.messages) - 1
	if last >= 0 && s.messages[last].Streaming {
		s.messages[last].Streaming = false
	}
	s.busy = false
	s.cancel = nil
	s.persistLocked()
	s.mu.Unlock()

	events <- Event{Done: true}
}

// fail rolls back the placeholder. The user message is kept so the failed
// turn can be retried.
func (s *Session) fail(err error, events chan<- Event) {
	s.logger.Error("chat stream failed", "error", err)

	s.mu.Lock()
	last := len(s.messages) - 1
	if last >= 0 && s.messages[last].Streaming {
		s.messages = s.messages[:last]
	}
	s.busy = false
	s.cancel = nil
	s.persistLocked()
	s.mu.Unlock()

	events <- Event{Err: err}
}

// Cancel aborts the in-flight reply, if any. The rollback runs on the
// consuming goroutine, so callers observe it through the Err event.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Reset clears the conversation back to its opening state and persists the
// cleared transcript.
func (s *Session) Reset() {
	s.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeAssistant {
		s.messages = []models.ChatMessage{greetingMessage(s.greeting)}
	} else {
		s.messages = nil
	}
	s.persistLocked()
}

func (s *Session) persistLocked() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(repositories.KeyChatHistory, s.messages); err != nil {
		s.logger.Error("failed to persist chat history", "error", err)
	}
}
