package chat

import (
	"slices"
	"sync"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// ConversationLog is the ordered message list of the active session.
// It only grows while a session is live and is swapped wholesale on history load.
type ConversationLog struct {
	mu       sync.RWMutex
	messages []domain.Message
}

// NewConversationLog creates an empty log
func NewConversationLog() *ConversationLog {
	return &ConversationLog{}
}

func (l *ConversationLog) Append(msg domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Replace swaps the whole log for msgs
func (l *ConversationLog) Replace(msgs []domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = slices.Clone(msgs)
}

func (l *ConversationLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
}

// Messages returns a snapshot of the log
func (l *ConversationLog) Messages() []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.messages)
}

func (l *ConversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// LastTable returns the most recent assistant message carrying a table
func (l *ConversationLog) LastTable() (domain.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].HasTable() {
			return l.messages[i], true
		}
	}
	return domain.Message{}, false
}
