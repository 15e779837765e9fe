package memory

import (
	"errors"
	"sync"

	"github.com/PabloGalante/productibot/internal/domain"
)

// MessageStore is the in-memory conversation log of one session.
// Order of insertion is the conversation order.
type MessageStore struct {
	mu       sync.RWMutex
	messages []*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

func (s *MessageStore) Append(msg *domain.Message) error {
	if msg == nil {
		return errors.New("message is nil")
	}
	if msg.Role == "" {
		return errors.New("message role is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	return nil
}

func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
}

// RecentWindow returns the last n messages in original order.
// n <= 0 returns nothing.
func (s *MessageStore) RecentWindow(n int) []*domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return []*domain.Message{}
	}

	start := 0
	if len(s.messages) > n {
		start = len(s.messages) - n
	}
	return cloneMessages(s.messages[start:])
}

func (s *MessageStore) All() []*domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneMessages(s.messages)
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.messages)
}

// cloneMessages copies the slice header so callers cannot reorder the log.
func cloneMessages(msgs []*domain.Message) []*domain.Message {
	out := make([]*domain.Message, len(msgs))
	copy(out, msgs)
	return out
}
