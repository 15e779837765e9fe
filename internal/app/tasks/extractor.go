// Package tasks detects to-do items in user utterances.
package tasks

import (
	"strings"
	"time"

	"github.com/PabloGalante/productibot/internal/domain"
)

// Keywords is the fixed trigger list. Matching is a case-insensitive
// substring search; "taskbar" matches "task".
var Keywords = []string{"task", "todo", "remind", "need to", "have to", "must", "deadline"}

// Matches reports whether text contains at least one keyword.
func Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Extract returns a pending task whose description is the whole utterance,
// or nil when no keyword matches. The id is assigned by the TaskStore.
func Extract(text string, now time.Time) *domain.Task {
	if !Matches(text) {
		return nil
	}
	return &domain.Task{
		Description: text,
		CreatedAt:   now,
		Status:      domain.TaskPending,
	}
}
