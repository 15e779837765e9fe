package conversation

import (
	"strings"
	"time"

	"github.com/PabloGalante/productibot/internal/domain"
)

// HistoryWindow is how many trailing messages are sent as context.
const HistoryWindow = 10

// DateTimeLayout renders e.g. "Friday, March 14, 2025 at 10:30".
const DateTimeLayout = "Monday, January 02, 2006 at 15:04"

const systemPrompt = `You are ProductiBot, an enthusiastic and helpful AI productivity assistant. Your personality:

- Friendly, motivational, and encouraging
- Use emojis occasionally to make conversations engaging (but not excessively)
- Provide actionable, practical advice
- Be concise but comprehensive
- Remember context from previous messages in the conversation

Your core capabilities:
1. Task Management: Help users organize, prioritize, and track tasks
2. Time Management: Provide tips on time blocking, Pomodoro technique, deep work, etc.
3. Goal Setting: Use SMART goals framework (Specific, Measurable, Achievable, Relevant, Time-bound)
4. Productivity Tips: Share best practices, techniques, and productivity hacks
5. Motivation: Encourage users, celebrate their progress, and help overcome procrastination

Guidelines for responses:
- Ask clarifying questions when needed to understand the user's situation better
- Provide structured responses for complex topics (but use prose, not bullet points unless asked)
- Suggest specific, actionable steps the user can take immediately
- Be empathetic and understanding of challenges
- Reference established productivity frameworks when relevant (GTD, Eisenhower Matrix, etc.)
- Adapt your tone based on the user's needs (more serious for work, lighter for personal tasks)

Current date and time: {datetime}
`

const closingInstruction = "Respond naturally to the user's latest message."

// BuildSystemPrompt substitutes the current date-time into the persona prompt.
func BuildSystemPrompt(now time.Time) string {
	return strings.Replace(systemPrompt, "{datetime}", now.Format(DateTimeLayout), 1)
}

// RenderHistory renders messages as "<Role>: <content>" lines in the given order.
func RenderHistory(history []*domain.Message) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, m.Role.Label()+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt assembles the single prompt string sent to the provider:
// persona, conversation history (already windowed by the caller) and the
// closing instruction.
func BuildPrompt(history []*domain.Message, now time.Time) string {
	var b strings.Builder
	b.WriteString(BuildSystemPrompt(now))
	b.WriteString("\n\nConversation History:\n")
	b.WriteString(RenderHistory(history))
	b.WriteString("\n\n")
	b.WriteString(closingInstruction)
	return b.String()
}
