// Package ui is the terminal front-end of the chat session.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PabloGalante/productibot/internal/app/conversation"
	"github.com/PabloGalante/productibot/internal/config"
	"github.com/PabloGalante/productibot/internal/domain"
	"github.com/PabloGalante/productibot/internal/export"
	"github.com/PabloGalante/productibot/internal/observability"
	"github.com/PabloGalante/productibot/internal/ui/styles"
)

// ConfigureFunc builds a generator from an API key typed by the user.
type ConfigureFunc func(ctx context.Context, apiKey string) (domain.Generator, error)

type Options struct {
	ExportDir string
	Configure ConfigureFunc
}

type keyMap struct {
	Send   key.Binding
	Cancel key.Binding
	Tasks  key.Binding
	Export key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Send:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel reply")),
		Tasks:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "tasks")),
		Export: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// Messages produced by background commands.
type (
	turnDoneMsg struct {
		result *conversation.TurnResult
		err    error
	}
	configuredMsg struct {
		gen domain.Generator
		err error
	}
	exportDoneMsg struct {
		path string
		err  error
	}
)

type App struct {
	svc    *conversation.Service
	opts   Options
	styles *styles.Styles
	keys   keyMap
	md     *markdown

	input    textinput.Model
	keyInput textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int

	// busy is true while a turn is awaiting generation; input is disabled.
	busy   bool
	cancel context.CancelFunc

	showTasks bool
	showStats bool
	showHelp  bool

	errMsg    string
	configErr error
	status    string
}

// NewApp creates the chat application for svc.
func NewApp(svc *conversation.Service, opts Options) *App {
	if opts.ExportDir == "" {
		opts.ExportDir = "exports"
	}

	in := textinput.New()
	in.Placeholder = "Type your message here... (/help for commands)"
	in.CharLimit = 4000
	in.Prompt = "> "
	in.Focus()

	keyIn := textinput.New()
	keyIn.Placeholder = "Gemini API key"
	keyIn.EchoMode = textinput.EchoPassword
	keyIn.EchoCharacter = '•'
	keyIn.Prompt = "key: "
	keyIn.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := &App{
		svc:       svc,
		opts:      opts,
		styles:    styles.NewStyles(),
		keys:      defaultKeys(),
		md:        newMarkdown(76),
		input:     in,
		keyInput:  keyIn,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		width:     80,
		height:    30,
		showStats: true,
	}
	if !svc.Configured() {
		a.configErr = domain.ErrNotConfigured
	}
	a.layout()
	return a
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	a.layout()
	return a, cmd
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.md = newMarkdown(styles.ContentWidth(msg.Width) - 4)
		return nil

	case turnDoneMsg:
		a.busy = false
		a.cancel = nil
		if msg.err != nil {
			a.errMsg = friendlyError(msg.err)
		} else if msg.result != nil && msg.result.Task != nil {
			a.status = fmt.Sprintf("Task #%d added", msg.result.Task.ID)
		}
		a.viewport.GotoBottom()
		return nil

	case configuredMsg:
		if msg.err != nil {
			a.configErr = msg.err
			return nil
		}
		a.svc.Configure(msg.gen)
		a.configErr = nil
		a.status = "API key configured!"
		return nil

	case exportDoneMsg:
		if msg.err != nil {
			a.errMsg = friendlyError(msg.err)
		} else {
			a.status = "Exported to " + msg.path
		}
		return nil

	case spinner.TickMsg:
		if !a.busy {
			return nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Quit):
		if a.cancel != nil {
			a.cancel()
		}
		return tea.Quit
	case key.Matches(msg, a.keys.Cancel):
		if a.busy && a.cancel != nil {
			a.cancel()
			a.status = "Cancelling..."
		}
		return nil
	}

	if !a.svc.Configured() {
		return a.handleKeyEntry(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Tasks):
		a.showTasks = !a.showTasks
		return nil
	case key.Matches(msg, a.keys.Export):
		return a.exportCmd()
	case key.Matches(msg, a.keys.Send):
		if a.busy {
			return nil
		}
		return a.submit()
	case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return cmd
	}

	if a.busy {
		return nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return cmd
}

// handleKeyEntry drives the masked API key prompt shown while unconfigured.
func (a *App) handleKeyEntry(msg tea.KeyMsg) tea.Cmd {
	if !key.Matches(msg, a.keys.Send) {
		var cmd tea.Cmd
		a.keyInput, cmd = a.keyInput.Update(msg)
		return cmd
	}

	apiKey := strings.TrimSpace(a.keyInput.Value())
	if apiKey == "" || a.opts.Configure == nil {
		return nil
	}
	a.keyInput.Reset()

	configure := a.opts.Configure
	return func() tea.Msg {
		gen, err := configure(context.Background(), apiKey)
		return configuredMsg{gen: gen, err: err}
	}
}

func (a *App) submit() tea.Cmd {
	text := a.input.Value()
	a.errMsg = ""
	a.status = ""

	c, err := ParseCommand(text)
	if err != nil {
		a.errMsg = err.Error()
		return nil
	}
	if c.Kind != CmdNone {
		a.input.Reset()
		return a.runCommand(c)
	}

	// Blank input never starts a turn.
	if strings.TrimSpace(text) == "" {
		return nil
	}

	a.input.Reset()
	a.busy = true
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	svc := a.svc
	send := func() tea.Msg {
		defer cancel()
		res, err := svc.SendMessage(ctx, text)
		return turnDoneMsg{result: res, err: err}
	}
	return tea.Batch(a.spinner.Tick, send)
}

func (a *App) runCommand(c Command) tea.Cmd {
	ctx := context.Background()

	switch c.Kind {
	case CmdTasks:
		a.showTasks = !a.showTasks
	case CmdDone:
		task, err := a.svc.CompleteTask(ctx, c.TaskID-1)
		if err != nil {
			a.errMsg = friendlyError(err)
			return nil
		}
		a.status = fmt.Sprintf("Task #%d completed", task.ID)
	case CmdClear:
		cleared, err := a.svc.ClearConversation(ctx)
		if err != nil {
			a.errMsg = friendlyError(err)
			return nil
		}
		if cleared {
			a.status = "Conversation cleared"
		}
	case CmdExport:
		return a.exportCmd()
	case CmdTemperature, CmdMaxTokens, CmdTopP:
		cfg := a.svc.GenerationConfig()
		switch c.Kind {
		case CmdTemperature:
			cfg.Temperature = float32(c.Float)
		case CmdMaxTokens:
			cfg.MaxOutputTokens = config.ClampMaxTokens(c.Int)
		case CmdTopP:
			cfg.TopP = float32(c.Float)
		}
		cfg = config.ClampGeneration(cfg)
		a.svc.SetGenerationConfig(cfg)
		a.status = fmt.Sprintf("temp %.1f · max tokens %d · top-p %.2f", cfg.Temperature, cfg.MaxOutputTokens, cfg.TopP)
	case CmdStats:
		a.showStats = !a.showStats
	case CmdHelp:
		a.showHelp = !a.showHelp
	case CmdQuit:
		return tea.Quit
	}
	return nil
}

func (a *App) exportCmd() tea.Cmd {
	snap := a.svc.Export()
	dir := a.opts.ExportDir
	return func() tea.Msg {
		path, err := export.WriteFile(dir, snap)
		if err == nil {
			observability.Logger().Info("chat exported", "path", path)
		}
		return exportDoneMsg{path: path, err: err}
	}
}

// friendlyError turns an error into the line shown under the conversation.
func friendlyError(err error) string {
	var (
		cfgErr  *domain.ConfigurationError
		provErr *domain.ProviderError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "Please configure your Gemini API key to start chatting!"
	case errors.As(err, &provErr):
		return "Error: " + err.Error()
	case errors.Is(err, domain.ErrTaskNotFound):
		return "No such task"
	case errors.Is(err, export.ErrNothingToExport):
		return "No chat to export!"
	case errors.Is(err, domain.ErrTurnInFlight):
		return "Still thinking about the previous message"
	default:
		return err.Error()
	}
}

// ─────────────────────────────────────────────
// View
// ─────────────────────────────────────────────

func (a *App) headerView() string {
	header := a.styles.Header.Render("ProductiBot") + "  " +
		a.styles.SubHeader.Render("Your AI-Powered Productivity Assistant")
	if a.showStats && a.svc.Configured() {
		header += "\n" + renderStats(a.styles, a.svc.Stats(), a.svc.GenerationConfig())
	}
	return header
}

func (a *App) footerView() string {
	var parts []string

	if a.showTasks {
		parts = append(parts, renderTasks(a.styles, a.svc.Tasks()))
	}
	if a.showHelp {
		parts = append(parts, a.styles.Help.Render(helpText))
	}
	if a.errMsg != "" {
		parts = append(parts, a.styles.Error.Render(a.errMsg))
		if strings.HasPrefix(a.errMsg, "Error:") {
			parts = append(parts, a.styles.Hint.Render(errorHint))
		}
	}
	if a.busy {
		parts = append(parts, a.spinner.View()+" Thinking...")
	} else if a.status != "" {
		parts = append(parts, a.styles.Status.Render(a.status))
	}

	parts = append(parts, a.styles.Input.Width(styles.ContentWidth(a.width)-2).Render(a.input.View()))
	parts = append(parts, a.styles.Help.Render("enter send · esc cancel · ctrl+t tasks · ctrl+e export · /help · ctrl+c quit"))

	return strings.Join(parts, "\n")
}

// layout sizes the viewport to the space left by header and footer and
// refreshes its content.
func (a *App) layout() {
	if !a.svc.Configured() {
		return
	}
	reserved := lipgloss.Height(a.headerView()) + lipgloss.Height(a.footerView()) + 2
	h := a.height - reserved
	if h < 3 {
		h = 3
	}
	a.viewport.Width = styles.ContentWidth(a.width)
	a.viewport.Height = h

	atBottom := a.viewport.AtBottom()
	a.viewport.SetContent(renderConversation(a.styles, a.md, a.svc.Messages()))
	if atBottom || a.busy {
		a.viewport.GotoBottom()
	}
}

func (a *App) View() string {
	if !a.svc.Configured() {
		return a.unconfiguredView()
	}
	return strings.Join([]string{a.headerView(), "", a.viewport.View(), "", a.footerView()}, "\n")
}

func (a *App) unconfiguredView() string {
	parts := []string{
		a.styles.Header.Render("ProductiBot") + "  " + a.styles.SubHeader.Render("Your AI-Powered Productivity Assistant"),
		"",
		a.styles.Banner.Render(onboardingText),
	}
	if a.configErr != nil && !errors.Is(a.configErr, domain.ErrNotConfigured) {
		parts = append(parts, a.styles.Error.Render(a.configErr.Error()))
	}
	parts = append(parts, "", a.styles.Input.Render(a.keyInput.View()), a.styles.Help.Render("enter save key · ctrl+c quit"))
	return strings.Join(parts, "\n")
}

// Run starts the full-screen program.
func Run(app *App) error {
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
