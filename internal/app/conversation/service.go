package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PabloGalante/productibot/internal/app/tasks"
	"github.com/PabloGalante/productibot/internal/domain"
	"github.com/PabloGalante/productibot/internal/export"
	"github.com/PabloGalante/productibot/internal/observability"
)

// State of the chat-turn state machine.
type State int

const (
	StateIdle State = iota
	StateAwaitingGeneration
)

func (s State) String() string {
	if s == StateAwaitingGeneration {
		return "awaiting_generation"
	}
	return "idle"
}

// Service runs chat turns against one Session. Only one turn may be
// awaiting generation at a time.
type Service struct {
	mu      sync.Mutex
	session *Session
	llm     domain.Generator
	genCfg  domain.GenerationConfig
	state   State
	now     func() time.Time
}

// NewService builds the orchestrator. llm may be nil: every turn then fails
// with a ConfigurationError until Configure is called.
func NewService(llm domain.Generator, session *Session, genCfg domain.GenerationConfig) *Service {
	return &Service{
		session: session,
		llm:     llm,
		genCfg:  genCfg,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Configure installs a generator, e.g. after the user typed an API key.
func (s *Service) Configure(g domain.Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llm = g
}

func (s *Service) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.llm != nil
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) GenerationConfig() domain.GenerationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genCfg
}

// SetGenerationConfig stores cfg as given. Range checks belong to the caller.
func (s *Service) SetGenerationConfig(cfg domain.GenerationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genCfg = cfg
}

// TurnResult describes one turn. AssistantMessage and Task are nil when
// generation failed; Task is also nil when no keyword matched.
type TurnResult struct {
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
	Task             *domain.Task
}

// SendMessage runs one chat turn.
//
// The user message is appended and the conversation count incremented
// before the provider is called, so both survive a failed generation.
// On failure no assistant message and no task are recorded and the
// returned error is a *domain.ProviderError.
func (s *Service) SendMessage(ctx context.Context, text string) (*TurnResult, error) {
	log := observability.LoggerFromContext(ctx)

	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}

	s.mu.Lock()
	if s.llm == nil {
		s.mu.Unlock()
		return nil, domain.ErrNotConfigured
	}
	if s.state == StateAwaitingGeneration {
		s.mu.Unlock()
		return nil, domain.ErrTurnInFlight
	}

	userMsg := domain.NewMessage(domain.RoleUser, text, s.now())
	if err := s.session.Messages.Append(userMsg); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.session.conversationCount++

	prompt := BuildPrompt(s.session.Messages.RecentWindow(HistoryWindow), s.now())
	gen, cfg := s.llm, s.genCfg
	s.state = StateAwaitingGeneration
	turn := s.session.conversationCount
	s.mu.Unlock()

	log = log.With("turn", turn)
	log.Info("generation started", "prompt_chars", len(prompt))
	start := time.Now()

	reply, genErr := gen.Generate(ctx, prompt, cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle

	result := &TurnResult{UserMessage: userMsg}

	if genErr != nil {
		log.Error("generation failed", "error", genErr, "elapsed_ms", time.Since(start).Milliseconds())
		return result, domain.NewProviderError("generator", genErr)
	}

	if task := tasks.Extract(text, s.now()); task != nil {
		if err := s.session.Tasks.Add(task); err != nil {
			return result, err
		}
		result.Task = task
		log.Info("task extracted", "task_id", task.ID)
	}

	assistantMsg := domain.NewMessage(domain.RoleAssistant, reply, s.now())
	if err := s.session.Messages.Append(assistantMsg); err != nil {
		return result, err
	}
	result.AssistantMessage = assistantMsg

	log.Info("generation completed", "elapsed_ms", time.Since(start).Milliseconds())
	return result, nil
}

// CompleteTask marks the task at position index (0-based) as completed.
func (s *Service) CompleteTask(ctx context.Context, index int) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.session.Tasks.Complete(index)
	if err != nil {
		return nil, err
	}
	observability.LoggerFromContext(ctx).Info("task completed", "task_id", task.ID)
	return task, nil
}

// ClearConversation empties the message log and resets the conversation
// count. Tasks are kept. Returns false when there was nothing to clear.
func (s *Service) ClearConversation(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAwaitingGeneration {
		return false, domain.ErrTurnInFlight
	}
	if s.session.Messages.Len() == 0 {
		return false, nil
	}

	s.session.Messages.Clear()
	s.session.conversationCount = 0
	observability.LoggerFromContext(ctx).Info("conversation cleared")
	return true, nil
}

func (s *Service) Messages() []*domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Messages.All()
}

func (s *Service) Tasks() []*domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Tasks.List()
}

func (s *Service) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.stats()
}

// Export takes a read-only snapshot of the session.
func (s *Service) Export() *export.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return export.NewSnapshot(
		s.now(),
		s.session.Messages.All(),
		s.session.Tasks.List(),
		s.session.conversationCount,
	)
}
