// Package conversation keeps the ordered message list shown by the assistant
// and derives the history sent upstream.
package conversation

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/farmease/farmease-ai/internal/model/chat"
)

const (
	// WelcomeText greets the user when a conversation is opened.
	WelcomeText = "🌾 Namaste! I'm FarmEase AI, your personal farming assistant.\n\n" +
		"Ask me about:\n" +
		"• Crop guidance 🌱\n" +
		"• Disease diagnosis 🔬\n" +
		"• Fertilizer advice 🧪\n" +
		"• Government schemes 📋\n\n" +
		"I speak English, Hindi, Kannada, Tamil & Telugu!\n\n" +
		"🎤 Tap the mic to speak!"

	// ClearedText replaces the conversation after Clear.
	ClearedText = "🌾 Chat cleared! How can I help you?"

	welcomePrefix   = "welcome"
	userPrefix      = "user"
	assistantPrefix = "bot"
)

// Conversation is an append-only message list, safe for concurrent use.
type Conversation struct {
	mu       sync.RWMutex
	messages []chat.Message
	seq      uint64
	now      func() time.Time
	welcome  string
	cleared  string
}

// Option customizes a Conversation.
type Option func(*Conversation)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) {
		c.now = now
	}
}

// WithWelcome overrides the greeting and the text shown after a clear.
func WithWelcome(welcome, cleared string) Option {
	return func(c *Conversation) {
		if welcome != "" {
			c.welcome = welcome
		}
		if cleared != "" {
			c.cleared = cleared
		}
	}
}

// New returns a conversation seeded with a single welcome message.
func New(opts ...Option) *Conversation {
	c := &Conversation{
		now:     time.Now,
		welcome: WelcomeText,
		cleared: ClearedText,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.messages = []chat.Message{c.newMessageLocked(welcomePrefix, chat.RoleAssistant, c.welcome)}
	return c
}

// IsWelcome reports whether id belongs to a synthetic welcome message.
func IsWelcome(id string) bool {
	return strings.HasPrefix(id, welcomePrefix+"_")
}

// Append adds msg to the end of the conversation.
func (c *Conversation) Append(msg chat.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

// AppendUser records text typed or spoken by the user.
func (c *Conversation) AppendUser(text string) chat.Message {
	return c.appendNew(userPrefix, chat.RoleUser, text)
}

// AppendAssistant records a reply from the assistant.
func (c *Conversation) AppendAssistant(text string) chat.Message {
	return c.appendNew(assistantPrefix, chat.RoleAssistant, text)
}

func (c *Conversation) appendNew(prefix string, role chat.Role, text string) chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := c.newMessageLocked(prefix, role, text)
	c.messages = append(c.messages, msg)
	return msg
}

// Clear drops every message and leaves a single fresh welcome message.
func (c *Conversation) Clear() chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := c.newMessageLocked(welcomePrefix, chat.RoleAssistant, c.cleared)
	c.messages = []chat.Message{msg}
	return msg
}

// Messages returns a copy of all messages, oldest first.
func (c *Conversation) Messages() []chat.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	copied := make([]chat.Message, len(c.messages))
	copy(copied, c.messages)
	return copied
}

// Latest returns the most recent message.
func (c *Conversation) Latest() (chat.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return chat.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Find looks a message up by id.
func (c *Conversation) Find(id string) (chat.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, msg := range c.messages {
		if msg.ID == id {
			return msg, true
		}
	}
	return chat.Message{}, false
}

// Len returns the number of messages including welcome messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// HistoryForTransport returns the most recent non-welcome turns, oldest
// first, bounded by chat.HistoryWindow.
func (c *Conversation) HistoryForTransport() []chat.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	turns := make([]chat.Turn, 0, len(c.messages))
	for _, msg := range c.messages {
		if IsWelcome(msg.ID) {
			continue
		}
		turns = append(turns, msg.Turn())
	}
	return chat.LastTurns(turns, chat.HistoryWindow)
}

func (c *Conversation) newMessageLocked(prefix string, role chat.Role, text string) chat.Message {
	c.seq++
	ts := c.now()
	return chat.Message{
		ID:        fmt.Sprintf("%s_%d_%d", prefix, ts.UnixMilli(), c.seq),
		Role:      role,
		Content:   text,
		Timestamp: ts,
	}
}
