package conversation

import "github.com/PabloGalante/productibot/internal/domain"

// Session owns everything that lives for one interactive run: the
// conversation log, the task list and the turn counter.
type Session struct {
	Messages domain.ConversationStore
	Tasks    domain.TaskStore

	conversationCount int
}

// NewSession creates a session over the given stores.
func NewSession(messages domain.ConversationStore, tasks domain.TaskStore) *Session {
	return &Session{
		Messages: messages,
		Tasks:    tasks,
	}
}

func (s *Session) ConversationCount() int {
	return s.conversationCount
}

func (s *Session) stats() domain.Stats {
	tasks := s.Tasks.List()
	completed := 0
	for _, t := range tasks {
		if t.Completed() {
			completed++
		}
	}
	return domain.Stats{
		ConversationCount: s.conversationCount,
		TotalMessages:     s.Messages.Len(),
		TotalTasks:        len(tasks),
		CompletedTasks:    completed,
	}
}
