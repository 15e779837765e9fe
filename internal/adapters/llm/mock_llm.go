package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/productibot/internal/domain"
)

// MockLLM answers without calling any provider. Useful for local runs.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.NewProviderError("mock", err)
	}
	return fmt.Sprintf("Got it! You said %q. What's the very next step you could take?", lastUserLine(prompt)), nil
}

// lastUserLine finds the latest "User: " line of a chat prompt.
func lastUserLine(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if rest, ok := strings.CutPrefix(lines[i], domain.RoleUser.Label()+": "); ok {
			return rest
		}
	}
	return ""
}
