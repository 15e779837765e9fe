// Package export writes session snapshots as JSON files.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PabloGalante/productibot/internal/domain"
)

// FilenameLayout follows productibot_chat_<YYYYMMDD_HHMMSS>.json.
const FilenameLayout = "20060102_150405"

var ErrNothingToExport = errors.New("no chat to export")

type Stats struct {
	ConversationCount int `json:"conversation_count"`
	TotalMessages     int `json:"total_messages"`
}

// Snapshot is the export document. Field order matches the file layout.
type Snapshot struct {
	ExportDate time.Time         `json:"export_date"`
	Messages   []*domain.Message `json:"messages"`
	Tasks      []*domain.Task    `json:"tasks"`
	Stats      Stats             `json:"stats"`
}

// NewSnapshot copies nothing; callers pass slices they own.
func NewSnapshot(now time.Time, msgs []*domain.Message, tasks []*domain.Task, conversationCount int) *Snapshot {
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return &Snapshot{
		ExportDate: now,
		Messages:   msgs,
		Tasks:      tasks,
		Stats: Stats{
			ConversationCount: conversationCount,
			TotalMessages:     len(msgs),
		},
	}
}

func Filename(now time.Time) string {
	return "productibot_chat_" + now.Format(FilenameLayout) + ".json"
}

// Marshal renders the snapshot with two-space indentation.
func Marshal(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// WriteFile writes the snapshot into dir, creating it if needed, and
// returns the file path.
func WriteFile(dir string, s *Snapshot) (string, error) {
	if len(s.Messages) == 0 {
		return "", ErrNothingToExport
	}

	data, err := Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding export: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	path := filepath.Join(dir, Filename(s.ExportDate))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
