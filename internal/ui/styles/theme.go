package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color scheme for the chat UI
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color

	UserAccent lipgloss.Color
	BotAccent  lipgloss.Color
	TaskAccent lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border lipgloss.Color
}

// Ocean is a teal/blue palette.
var Ocean = Theme{
	Name: "Ocean",

	Foreground:    lipgloss.Color("#D5D8DC"),
	ForegroundDim: lipgloss.Color("#7F8C8D"),

	Primary:   lipgloss.Color("#3498DB"),
	Secondary: lipgloss.Color("#1F618D"),

	UserAccent: lipgloss.Color("#1ABC9C"),
	BotAccent:  lipgloss.Color("#3498DB"),
	TaskAccent: lipgloss.Color("#F39C12"),

	Success: lipgloss.Color("#27AE60"),
	Warning: lipgloss.Color("#E0AF68"),
	Error:   lipgloss.Color("#E74C3C"),

	Border: lipgloss.Color("#3B4261"),
}

// Current holds the active theme
var Current = Ocean

// MaxWidth is the maximum content width (classic terminal width + margin)
const MaxWidth = 100

// ContentWidth returns min(terminal width, MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	Header    lipgloss.Style
	SubHeader lipgloss.Style

	UserLabel lipgloss.Style
	BotLabel  lipgloss.Style
	Timestamp lipgloss.Style
	UserBody  lipgloss.Style

	TaskID        lipgloss.Style
	TaskPending   lipgloss.Style
	TaskCompleted lipgloss.Style
	TaskMeta      lipgloss.Style

	Stats lipgloss.Style

	Banner lipgloss.Style
	Error  lipgloss.Style
	Hint   lipgloss.Style
	Status lipgloss.Style

	Input lipgloss.Style
	Help  lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		SubHeader: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		UserLabel: lipgloss.NewStyle().
			Foreground(t.UserAccent).
			Bold(true),

		BotLabel: lipgloss.NewStyle().
			Foreground(t.BotAccent).
			Bold(true),

		Timestamp: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		UserBody: lipgloss.NewStyle().
			Foreground(t.Foreground).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(t.UserAccent).
			PaddingLeft(1),

		TaskID: lipgloss.NewStyle().
			Foreground(t.TaskAccent).
			Bold(true),

		TaskPending: lipgloss.NewStyle().
			Foreground(t.Foreground),

		TaskCompleted: lipgloss.NewStyle().
			Foreground(t.Success).
			Strikethrough(true).
			Faint(true),

		TaskMeta: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Stats: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Secondary).
			Padding(0, 1),

		Banner: lipgloss.NewStyle().
			Foreground(t.Warning).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Warning).
			Padding(0, 1),

		Error: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Hint: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Italic(true),

		Status: lipgloss.NewStyle().
			Foreground(t.Success),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),
	}
}
