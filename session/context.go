package session

import (
	"context"

	"github.com/atelierhq/atelier/gateway"
)

// Conversation is the live exchange context bound to one chat provider:
// an optional system instruction plus the ordered role-tagged history
// the model sees. Exactly one Conversation is live per manager; it is
// never shared across users and is not safe for concurrent use, which
// is why the manager serializes exchanges.
type Conversation struct {
	provider gateway.ChatProvider
	system   string
	history  []gateway.ChatMessage
}

func newConversation(provider gateway.ChatProvider, system string, seed []gateway.ChatMessage) *Conversation {
	history := make([]gateway.ChatMessage, len(seed))
	copy(history, seed)
	return &Conversation{
		provider: provider,
		system:   system,
		history:  history,
	}
}

// Exchange sends one user message against the accumulated history and
// returns the model's reply. On success both sides of the exchange are
// added to the history; on failure the history is left untouched so a
// failed attempt never pollutes the model's context.
func (c *Conversation) Exchange(ctx context.Context, text string) (string, error) {
	messages := make([]gateway.ChatMessage, 0, len(c.history)+2)
	if c.system != "" {
		messages = append(messages, gateway.SystemMessage(c.system))
	}
	messages = append(messages, c.history...)
	messages = append(messages, gateway.UserMessage(text))

	reply, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", err
	}

	c.history = append(c.history,
		gateway.UserMessage(text),
		gateway.AssistantMessage(reply.Text),
	)
	return reply.Text, nil
}

// Len reports how many role-tagged messages the model currently sees,
// excluding the system instruction.
func (c *Conversation) Len() int {
	return len(c.history)
}
