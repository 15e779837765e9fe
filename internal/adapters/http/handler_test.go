package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/productibot/internal/adapters/http"
	"github.com/PabloGalante/productibot/internal/adapters/llm"
	"github.com/PabloGalante/productibot/internal/adapters/storage/memory"
	"github.com/PabloGalante/productibot/internal/app/conversation"
	"github.com/PabloGalante/productibot/internal/domain"
)

func newTestServer(t *testing.T, gen domain.Generator) http.Handler {
	t.Helper()

	svc := conversation.NewService(gen, conversation.NewSession(memory.NewMessageStore(), memory.NewTaskStore()), domain.DefaultGenerationConfig())
	return httpadapter.NewServer(svc)
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())

	w := do(t, srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSendMessageCreatesTaskAndExports(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())

	w := do(t, srv, http.MethodPost, "/messages", `{"text":"I need to finish the report by Friday"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sent struct {
		UserMessage      domain.Message `json:"user_message"`
		AssistantMessage domain.Message `json:"assistant_message"`
		Task             *domain.Task   `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	assert.Equal(t, domain.RoleAssistant, sent.AssistantMessage.Role)
	require.NotNil(t, sent.Task)
	assert.Equal(t, 1, sent.Task.ID)

	w = do(t, srv, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "productibot_chat_")

	var snap struct {
		Tasks []domain.Task `json:"tasks"`
		Stats struct {
			TotalMessages int `json:"total_messages"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.Stats.TotalMessages)
	assert.Equal(t, domain.TaskPending, snap.Tasks[0].Status)

	w = do(t, srv, http.MethodPost, "/tasks/0/complete", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/tasks", "")
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

func TestSendMessageValidation(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/messages", `{"text":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/messages", `not json`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodPatch, "/messages", "").Code)
}

func TestUnconfiguredProvider(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(t, srv, http.MethodPost, "/messages", `{"text":"hello"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "GEMINI_API_KEY")
}

type failingGen struct{}

func (failingGen) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	return "", errors.New("invalid api key")
}

func TestProviderFailureKeepsUserMessage(t *testing.T) {
	srv := newTestServer(t, failingGen{})

	w := do(t, srv, http.MethodPost, "/messages", `{"text":"todo: plan"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(t, srv, http.MethodGet, "/stats", "")
	var stats domain.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, domain.Stats{ConversationCount: 1, TotalMessages: 1}, stats)
}

func TestTaskRoutes(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/tasks/3/complete", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/tasks/x/complete", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/tasks/1/undo", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodGet, "/tasks/0/complete", "").Code)
}

func TestExportEmptyConversation(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/export", "").Code)
}

func TestClearConversation(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/messages", `{"text":"must stretch"}`).Code)

	w := do(t, srv, http.MethodDelete, "/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cleared":true}`, w.Body.String())

	w = do(t, srv, http.MethodGet, "/stats", "")
	var stats domain.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.ConversationCount)
	assert.Equal(t, 1, stats.TotalTasks)
}

func TestGenerationConfigIsClamped(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())

	w := do(t, srv, http.MethodPut, "/config/generation", `{"temperature":5,"max_output_tokens":10}`)
	require.Equal(t, http.StatusOK, w.Code)

	var cfg domain.GenerationConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, float32(2), cfg.Temperature)
	assert.Equal(t, int32(256), cfg.MaxOutputTokens)
	assert.Equal(t, float32(0.95), cfg.TopP)
}
