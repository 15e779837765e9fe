package conversation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/productibot/internal/app/conversation"
	"github.com/PabloGalante/productibot/internal/domain"
)

func TestBuildPrompt_Layout(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	history := []*domain.Message{
		domain.NewMessage(domain.RoleUser, "Help me plan my week", now),
		domain.NewMessage(domain.RoleAssistant, "Sure, what's on it?", now),
		domain.NewMessage(domain.RoleUser, "Three reports", now),
	}

	prompt := conversation.BuildPrompt(history, now)

	assert.True(t, strings.HasPrefix(prompt, "You are ProductiBot"))
	assert.Contains(t, prompt, "Current date and time: Friday, March 14, 2025 at 10:30")
	assert.NotContains(t, prompt, "{datetime}")
	assert.Contains(t, prompt, "\n\nConversation History:\n"+
		"User: Help me plan my week\n"+
		"Assistant: Sure, what's on it?\n"+
		"User: Three reports\n\n"+
		"Respond naturally to the user's latest message.")
	assert.True(t, strings.HasSuffix(prompt, "Respond naturally to the user's latest message."))
}

func TestRenderHistory_Empty(t *testing.T) {
	assert.Equal(t, "", conversation.RenderHistory(nil))
}
