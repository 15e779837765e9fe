package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label is the capitalized role used when rendering history lines.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// ClockLayout is the display format of Message.Timestamp.
const ClockLayout = "15:04"

// Message is one entry of the conversation (user or assistant).
// Messages are never edited after creation.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`

	// At is the full creation instant. Timestamp only keeps the clock.
	At time.Time `json:"-"`
}

// NewMessage stamps a message with both the display clock and the full instant.
func NewMessage(role Role, content string, at time.Time) *Message {
	return &Message{
		Role:      role,
		Content:   content,
		Timestamp: at.Format(ClockLayout),
		At:        at,
	}
}

// Task is a free-text item detected in a user utterance.
type Task struct {
	ID          int        `json:"id"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	Status      TaskStatus `json:"status"`
}

func (t *Task) Completed() bool {
	return t.Status == TaskCompleted
}

// GenerationConfig is passed verbatim to the provider.
type GenerationConfig struct {
	Temperature     float32 `json:"temperature" toml:"temperature"`
	MaxOutputTokens int32   `json:"max_output_tokens" toml:"max_output_tokens"`
	TopP            float32 `json:"top_p" toml:"top_p"`
}

// DefaultGenerationConfig mirrors the initial slider positions of the chat UI.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		MaxOutputTokens: 1024,
		TopP:            0.95,
	}
}

// Stats summarizes a session. Only ConversationCount is stored; the rest
// are derived from the stores.
type Stats struct {
	ConversationCount int `json:"conversation_count"`
	TotalMessages     int `json:"total_messages"`
	TotalTasks        int `json:"total_tasks"`
	CompletedTasks    int `json:"completed_tasks"`
}
