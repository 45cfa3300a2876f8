// Package session keeps one user's conversation transcript consistent
// with durable history across two uncoordinated remote systems: the AI
// gateway that generates replies and the row store that remembers them.
//
// Information Hiding:
// - Transcript ownership and locking discipline
// - The three-way degradation contract for unreadable history
// - Best-effort persistence of exchanged turns
//
// The manager is the explicit owner of session state: construct one per
// authenticated user, Init it, exchange turns through it, and Close it
// when done. The in-memory transcript is authoritative for the life of
// the manager; the durable store is a best-effort mirror.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/atelierhq/atelier/gateway"
	"github.com/atelierhq/atelier/internal/logging"
	"github.com/atelierhq/atelier/storage"
)

// Manager owns one user's transcript and its single live Conversation.
type Manager struct {
	provider gateway.ChatProvider
	store    storage.HistoryStore
	userID   string
	logger   *log.Logger

	mu         sync.Mutex
	transcript []Turn
	conv       *Conversation
	state      State
	degraded   Degradation
	busy       bool

	persists sync.WaitGroup
}

// NewManager creates a manager for one user. The provider and store are
// injected; the manager does not construct remote clients itself.
func NewManager(provider gateway.ChatProvider, store storage.HistoryStore, userID string) *Manager {
	return &Manager{
		provider: provider,
		store:    store,
		userID:   userID,
		logger:   logging.New("session"),
		state:    StateUninitialized,
	}
}

// Init loads the user's durable history and opens the Conversation,
// seeded with that history and an optional system instruction
// (knowledge-base text). Init never fails: an unreadable store degrades
// the transcript to a single explanatory notice instead.
//
// The three-way branch is a contract, not a convenience:
//   - store unprovisioned: the setup-incomplete notice, because a
//     missing schema is an operator problem the user can fix;
//   - any other read error: the generic load-failed notice;
//   - zero rows: the plain greeting.
func (m *Manager) Init(ctx context.Context, knowledge string) *Conversation {
	m.mu.Lock()
	m.state = StateLoading
	m.mu.Unlock()

	rows, err := m.store.ListTurns(ctx, m.userID)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case err != nil && storage.IsUnprovisioned(err):
		m.logger.Warn("history store unprovisioned, starting degraded", "user", m.userID, "err", err)
		m.transcript = []Turn{{Sender: SenderBot, Text: SetupIncompleteNotice, Delivery: DeliveryConfirmed}}
		m.degraded = DegradedUnprovisioned
		m.conv = newConversation(m.provider, knowledge, nil)

	case err != nil:
		m.logger.Error("history load failed, starting degraded", "user", m.userID, "err", err)
		m.transcript = []Turn{{Sender: SenderBot, Text: LoadFailedNotice, Delivery: DeliveryConfirmed}}
		m.degraded = DegradedReadError
		m.conv = newConversation(m.provider, knowledge, nil)

	case len(rows) == 0:
		m.transcript = []Turn{{Sender: SenderBot, Text: GreetingNotice, Delivery: DeliveryConfirmed}}
		m.degraded = DegradedNone
		m.conv = newConversation(m.provider, knowledge, nil)

	default:
		m.transcript = transcriptFromRows(rows)
		m.degraded = DegradedNone
		m.conv = newConversation(m.provider, knowledge, seedFromRows(rows))
	}

	m.state = StateReady
	return m.conv
}

// SendTurn exchanges one user message with the gateway and returns the
// bot's turn. The user turn is appended optimistically (Pending) before
// the remote call; the outcome then confirms or fails it.
//
// A gateway failure is recovered, not returned: the user turn is marked
// Failed, the fixed fallback turn is appended and returned, and nothing
// is persisted. Only ErrEmptyInput, ErrBusy, and ErrNotInitialized come
// back as errors, and none of them mutate the transcript.
func (m *Manager) SendTurn(ctx context.Context, text string) (Turn, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Turn{}, ErrEmptyInput
	}

	m.mu.Lock()
	if m.conv == nil {
		m.mu.Unlock()
		return Turn{}, ErrNotInitialized
	}
	if m.busy {
		m.mu.Unlock()
		return Turn{}, ErrBusy
	}
	m.busy = true
	m.state = StateSending
	m.transcript = append(m.transcript, Turn{Sender: SenderUser, Text: trimmed, Delivery: DeliveryPending})
	userIndex := len(m.transcript) - 1
	conv := m.conv
	m.mu.Unlock()

	replyText, err := conv.Exchange(ctx, trimmed)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = false
	m.state = StateReady

	if err != nil {
		m.logger.Error("model call failed, using fallback reply", "user", m.userID, "err", err)
		m.transcript[userIndex].Delivery = DeliveryFailed
		botTurn := Turn{Sender: SenderBot, Text: FallbackReply, Delivery: DeliveryConfirmed}
		m.transcript = append(m.transcript, botTurn)
		return botTurn, nil
	}

	m.transcript[userIndex].Delivery = DeliveryConfirmed
	botTurn := Turn{Sender: SenderBot, Text: replyText, Delivery: DeliveryConfirmed}
	m.transcript = append(m.transcript, botTurn)

	m.persistExchange(trimmed, replyText)
	return botTurn, nil
}

// persistExchange writes the user and bot rows as one batch in the
// background. A failure is logged and never surfaced: durable history
// is best-effort, not a dependency of usability. Called with m.mu held.
func (m *Manager) persistExchange(userText, botText string) {
	now := time.Now().UTC()
	rows := []storage.ChatTurnRow{
		{
			ID:        uuid.NewString(),
			UserID:    m.userID,
			Sender:    storage.SenderUser,
			Text:      userText,
			CreatedAt: now,
		},
		{
			ID:        uuid.NewString(),
			UserID:    m.userID,
			Sender:    storage.SenderBot,
			Text:      botText,
			CreatedAt: now.Add(time.Millisecond),
		},
	}

	m.persists.Add(1)
	go func() {
		defer m.persists.Done()
		// Detached from the caller's context: the write outlives the
		// call that produced it and its failure is invisible to it.
		if err := m.store.AppendTurns(context.Background(), rows); err != nil {
			m.logger.Warn("best-effort history write failed", "user", m.userID, "err", err)
		}
	}()
}

// Reset deletes the user's durable history and starts the transcript
// over. The durable delete runs FIRST: if it fails, the error is
// returned and the transcript and Conversation stay exactly as they
// were, so the screen never claims a clear that durable storage did not
// perform. On success the transcript becomes the single cleared notice
// and a fresh Conversation with no seed history is returned.
func (m *Manager) Reset(ctx context.Context, knowledge string) (*Conversation, error) {
	m.mu.Lock()
	if m.conv == nil {
		m.mu.Unlock()
		return nil, ErrNotInitialized
	}
	if m.busy {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	m.busy = true
	m.mu.Unlock()

	err := m.store.DeleteTurns(ctx, m.userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = false

	if err != nil {
		return nil, fmt.Errorf("failed to clear history: %w", err)
	}

	m.transcript = []Turn{{Sender: SenderBot, Text: ClearedNotice, Delivery: DeliveryConfirmed}}
	m.conv = newConversation(m.provider, knowledge, nil)
	m.degraded = DegradedNone
	m.state = StateReady
	return m.conv, nil
}

// Turns returns a copy of the transcript in display order.
func (m *Manager) Turns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]Turn, len(m.transcript))
	copy(copied, m.transcript)
	return copied
}

// Status reports the manager's lifecycle state and whether the initial
// load degraded.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{State: m.state, Degraded: m.degraded}
}

// Close waits for in-flight best-effort writes to finish. Writes that
// complete after the caller stopped caring are harmless; Close just
// keeps tests and short-lived processes from dropping them.
func (m *Manager) Close() {
	m.persists.Wait()
}

// transcriptFromRows converts durable rows (already ordered ascending)
// into confirmed transcript turns.
func transcriptFromRows(rows []storage.ChatTurnRow) []Turn {
	turns := make([]Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, Turn{
			Sender:   senderFromRow(row.Sender),
			Text:     row.Text,
			Delivery: DeliveryConfirmed,
		})
	}
	return turns
}

// seedFromRows converts durable rows into the role-tagged shape the
// gateway expects: "user" maps to the user role, anything else to the
// model side.
func seedFromRows(rows []storage.ChatTurnRow) []gateway.ChatMessage {
	messages := make([]gateway.ChatMessage, 0, len(rows))
	for _, row := range rows {
		if row.Sender == storage.SenderUser {
			messages = append(messages, gateway.UserMessage(row.Text))
		} else {
			messages = append(messages, gateway.AssistantMessage(row.Text))
		}
	}
	return messages
}

func senderFromRow(sender string) Sender {
	if sender == storage.SenderUser {
		return SenderUser
	}
	return SenderBot
}
