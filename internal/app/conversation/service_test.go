package conversation_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/PabloGalante/productibot/internal/adapters/storage/memory"
	"github.com/PabloGalante/productibot/internal/app/conversation"
	"github.com/PabloGalante/productibot/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGen replies with a fixed text or fails when err is set.
type fakeGen struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGen) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// tickingClock advances one second per call so ordering is observable.
func tickingClock() func() time.Time {
	t := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newSession() *conversation.Session {
	return conversation.NewSession(memory.NewMessageStore(), memory.NewTaskStore())
}

func newService(gen domain.Generator) *conversation.Service {
	return conversation.NewService(gen, newSession(), domain.DefaultGenerationConfig()).
		WithClock(tickingClock())
}

func TestSendMessage_SuccessWithTask(t *testing.T) {
	ctx := context.Background()
	svc := newService(&fakeGen{reply: "Let's plan it."})

	res, err := svc.SendMessage(ctx, "I need to finish the report by Friday")
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, 1, stats.ConversationCount)
	assert.Equal(t, 2, stats.TotalMessages)
	assert.Equal(t, 1, stats.TotalTasks)

	require.NotNil(t, res.Task)
	assert.Equal(t, 1, res.Task.ID)
	assert.Equal(t, "I need to finish the report by Friday", res.Task.Description)
	assert.Equal(t, domain.TaskPending, res.Task.Status)
	assert.False(t, res.Task.CreatedAt.Before(res.UserMessage.At))

	msgs := svc.Messages()
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Let's plan it.", msgs[1].Content)
}

func TestSendMessage_SuccessWithoutTask(t *testing.T) {
	svc := newService(&fakeGen{reply: "It's 25 minutes of focus."})

	res, err := svc.SendMessage(context.Background(), "What's the Pomodoro technique?")
	require.NoError(t, err)

	assert.Nil(t, res.Task)
	assert.Equal(t, 2, svc.Stats().TotalMessages)
	assert.Equal(t, 0, svc.Stats().TotalTasks)
}

func TestSendMessage_FailureStillCountsTurn(t *testing.T) {
	svc := newService(&fakeGen{err: errors.New("quota exceeded")})

	res, err := svc.SendMessage(context.Background(), "I must call the bank")

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "quota exceeded")
	require.NotNil(t, res)
	assert.Nil(t, res.AssistantMessage)
	assert.Nil(t, res.Task)

	stats := svc.Stats()
	assert.Equal(t, 1, stats.ConversationCount, "failed turn still increments the count")
	assert.Equal(t, 1, stats.TotalMessages, "only the user message is kept")
	assert.Equal(t, 0, stats.TotalTasks, "no task on a failed turn")
	assert.Equal(t, conversation.StateIdle, svc.State())
}

func TestSendMessage_TaskIDsIncreaseAcrossFailures(t *testing.T) {
	gen := &fakeGen{reply: "ok"}
	svc := newService(gen)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "todo: buy stamps")
	require.NoError(t, err)

	gen.err = errors.New("boom")
	_, err = svc.SendMessage(ctx, "remind me about the deadline")
	require.Error(t, err)

	gen.err = nil
	_, err = svc.SendMessage(ctx, "I have to water the plants")
	require.NoError(t, err)

	tasks := svc.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, 1, tasks[0].ID)
	assert.Equal(t, 2, tasks[1].ID)
	assert.Equal(t, "I have to water the plants", tasks[1].Description)
	assert.Equal(t, 3, svc.Stats().ConversationCount)
}

func TestSendMessage_EmptyInputIsIgnored(t *testing.T) {
	gen := &fakeGen{reply: "ok"}
	svc := newService(gen)

	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := svc.SendMessage(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrEmptyInput)
	}

	assert.Equal(t, domain.Stats{}, svc.Stats())
	assert.Empty(t, gen.prompts)
}

func TestSendMessage_Unconfigured(t *testing.T) {
	svc := conversation.NewService(nil, newSession(), domain.DefaultGenerationConfig())

	_, err := svc.SendMessage(context.Background(), "hello")

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, domain.Stats{}, svc.Stats(), "no turn starts while unconfigured")
	assert.False(t, svc.Configured())

	svc.Configure(&fakeGen{reply: "hi"})
	_, err = svc.SendMessage(context.Background(), "hello")
	require.NoError(t, err)
}

func TestSendMessage_PromptUsesLastTenMessages(t *testing.T) {
	gen := &fakeGen{reply: "ok"}
	svc := newService(gen)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := svc.SendMessage(ctx, fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	last := gen.prompts[len(gen.prompts)-1]
	history := last[strings.Index(last, "Conversation History:\n"):]

	// 15 messages exist when the 8th prompt is built; the window starts at
	// the assistant reply to question 2.
	assert.NotContains(t, history, "User: question 2\n")
	assert.Contains(t, history, "User: question 3\n")
	assert.Contains(t, history, "User: question 7\n\nRespond naturally")
	assert.Equal(t, 10, strings.Count(history, "User: ")+strings.Count(history, "Assistant: "))
}

// blockingGen waits until release is closed.
type blockingGen struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingGen) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	close(b.started)
	select {
	case <-b.release:
		return "done", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSendMessage_RejectsConcurrentTurn(t *testing.T) {
	gen := &blockingGen{started: make(chan struct{}), release: make(chan struct{})}
	svc := newService(gen)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := svc.SendMessage(ctx, "first")
		errc <- err
	}()

	<-gen.started
	assert.Equal(t, conversation.StateAwaitingGeneration, svc.State())

	_, err := svc.SendMessage(ctx, "second")
	assert.ErrorIs(t, err, domain.ErrTurnInFlight)

	_, err = svc.ClearConversation(ctx)
	assert.ErrorIs(t, err, domain.ErrTurnInFlight)

	close(gen.release)
	require.NoError(t, <-errc)

	assert.Equal(t, conversation.StateIdle, svc.State())
	assert.Equal(t, 1, svc.Stats().ConversationCount)
	assert.Equal(t, 2, svc.Stats().TotalMessages)
}

func TestSendMessage_CanceledGeneration(t *testing.T) {
	gen := &blockingGen{started: make(chan struct{}), release: make(chan struct{})}
	svc := newService(gen)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		_, err := svc.SendMessage(ctx, "I need to plan")
		errc <- err
	}()

	<-gen.started
	cancel()

	err := <-errc
	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, svc.Stats().TotalTasks)
}

func TestCompleteTask(t *testing.T) {
	svc := newService(&fakeGen{reply: "ok"})
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "task: renew passport")
	require.NoError(t, err)

	task, err := svc.CompleteTask(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, task.Status)

	task, err = svc.CompleteTask(ctx, 0)
	require.NoError(t, err, "completing twice is a no-op")
	assert.Equal(t, domain.TaskCompleted, task.Status)

	_, err = svc.CompleteTask(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	assert.Equal(t, 1, svc.Stats().CompletedTasks)
}

func TestClearConversation_KeepsTasks(t *testing.T) {
	svc := newService(&fakeGen{reply: "ok"})
	ctx := context.Background()

	cleared, err := svc.ClearConversation(ctx)
	require.NoError(t, err)
	assert.False(t, cleared, "nothing to clear")

	_, err = svc.SendMessage(ctx, "deadline is Monday")
	require.NoError(t, err)

	cleared, err = svc.ClearConversation(ctx)
	require.NoError(t, err)
	assert.True(t, cleared)

	stats := svc.Stats()
	assert.Equal(t, 0, stats.ConversationCount)
	assert.Equal(t, 0, stats.TotalMessages)
	assert.Equal(t, 1, stats.TotalTasks)

	_, err = svc.SendMessage(ctx, "todo: next")
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Tasks()[1].ID)
}

func TestExport_Snapshot(t *testing.T) {
	svc := newService(&fakeGen{reply: "On it."})
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "I need to finish the report by Friday")
	require.NoError(t, err)

	snap := svc.Export()

	assert.Equal(t, 2, snap.Stats.TotalMessages)
	assert.Equal(t, 1, snap.Stats.ConversationCount)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, domain.TaskPending, snap.Tasks[0].Status)
	assert.Equal(t, 2, svc.Stats().TotalMessages, "export does not mutate")
}

func TestSetGenerationConfig_PassedVerbatim(t *testing.T) {
	var seen domain.GenerationConfig
	gen := generatorFunc(func(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
		seen = cfg
		return "ok", nil
	})
	svc := newService(gen)

	cfg := domain.GenerationConfig{Temperature: 1.9, MaxOutputTokens: 2048, TopP: 0.2}
	svc.SetGenerationConfig(cfg)
	_, err := svc.SendMessage(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, cfg, seen)
	assert.Equal(t, cfg, svc.GenerationConfig())
}

type generatorFunc func(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	return f(ctx, prompt, cfg)
}
