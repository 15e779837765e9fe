package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/PabloGalante/productibot/internal/domain"
	"github.com/PabloGalante/productibot/internal/ui/styles"
)

// maxTaskPreview is how many characters of a task description the list shows.
const maxTaskPreview = 150

const taskCreatedLayout = "2006-01-02 15:04"

func truncateDescription(s string) string {
	r := []rune(s)
	if len(r) <= maxTaskPreview {
		return s
	}
	return string(r[:maxTaskPreview]) + "..."
}

// markdown renders assistant replies. Falls back to plain text when the
// renderer is unavailable or fails.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdown(width int) *markdown {
	md := &markdown{width: width}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		md.renderer = r
	}
	return md
}

func (m *markdown) render(s string) string {
	if m == nil || m.renderer == nil {
		return s
	}
	out, err := m.renderer.Render(s)
	if err != nil {
		return s
	}
	return strings.TrimRight(out, "\n")
}

func renderConversation(st *styles.Styles, md *markdown, msgs []*domain.Message) string {
	if len(msgs) == 0 {
		return st.SubHeader.Render(welcomeText)
	}

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch m.Role {
		case domain.RoleUser:
			b.WriteString(st.UserLabel.Render("You") + " " + st.Timestamp.Render(m.Timestamp) + "\n")
			b.WriteString(st.UserBody.Render(m.Content))
		default:
			b.WriteString(st.BotLabel.Render("ProductiBot") + " " + st.Timestamp.Render(m.Timestamp) + "\n")
			b.WriteString(md.render(m.Content))
		}
	}
	return b.String()
}

func renderTasks(st *styles.Styles, tasks []*domain.Task) string {
	var b strings.Builder
	b.WriteString(st.Header.Render("Your Tasks") + "\n")

	if len(tasks) == 0 {
		b.WriteString(st.Hint.Render("No tasks yet! Mention tasks in your conversation and I'll track them for you."))
		return b.String()
	}

	for _, t := range tasks {
		desc := truncateDescription(t.Description)
		mark := "[ ]"
		body := st.TaskPending.Render(desc)
		if t.Completed() {
			mark = "[x]"
			body = st.TaskCompleted.Render(desc)
		}
		fmt.Fprintf(&b, "%s %s %s\n    %s\n",
			st.TaskID.Render(fmt.Sprintf("#%d", t.ID)),
			mark,
			body,
			st.TaskMeta.Render("Created: "+t.CreatedAt.Format(taskCreatedLayout)),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderStats(st *styles.Styles, s domain.Stats, cfg domain.GenerationConfig) string {
	return st.Stats.Render(fmt.Sprintf(
		"Conversations: %d · Tasks Created: %d (%d done) · Messages: %d\ntemp %.1f · max tokens %d · top-p %.2f",
		s.ConversationCount, s.TotalTasks, s.CompletedTasks, s.TotalMessages,
		cfg.Temperature, cfg.MaxOutputTokens, cfg.TopP,
	))
}

const welcomeText = `Hi! I'm ProductiBot.
Ask me anything about productivity, tasks, time management, or goals!

  - "Help me organize my tasks for this week"
  - "How can I stop procrastinating?"
  - "What's the Pomodoro technique?"
  - "Create a SMART goal for learning Python"
  - "I have 5 deadlines, help me prioritize"`

const onboardingText = `Please configure your Gemini API key to start chatting!

  1. Get a free API key from Google AI Studio (https://aistudio.google.com/app/apikey)
  2. Either paste it below, OR
     create a .env file with GEMINI_API_KEY=your_key_here
  3. Start chatting!`

const errorHint = "Try rephrasing your question or check your API key."
