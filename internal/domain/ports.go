package domain

import "context"

// Generator defines how the core application asks the provider for text.
// Implementations must return a *ProviderError on failure and never an
// empty string with a nil error.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// ConversationStore holds the ordered message log of one session.
type ConversationStore interface {
	Append(msg *Message) error
	Clear()
	RecentWindow(n int) []*Message
	All() []*Message
	Len() int
}

// TaskStore holds the tasks detected during one session.
type TaskStore interface {
	// Add assigns the next sequential id and stores the task.
	Add(task *Task) error
	// Complete marks the task at position index as completed.
	Complete(index int) (*Task, error)
	List() []*Task
	Len() int
}
