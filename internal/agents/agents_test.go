package agents

import (
	"context"
	"sync"
	"time"

	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	Prompts          []string
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GetModel(_ llm.ModelTier) string { return "mock-model" }
func (m *MockLLMClient) Close() error                    { return nil }

// newTestInvoker wraps a mock client with a fast retry policy.
func newTestInvoker(client llm.Client) *llm.Invoker {
	return llm.NewInvoker(client, llm.InvokerOptions{
		MalformedRetries: 1,
		Backoff:          time.Millisecond,
		CallTimeout:      time.Second,
	})
}

// recordingTracer captures trace entries for assertions.
type recordingTracer struct {
	mu      sync.Mutex
	entries []prep.ReasoningEntry
}

func (t *recordingTracer) Trace(agentName, thought string, sources ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, prep.ReasoningEntry{
		Timestamp:        time.Now(),
		AgentName:        agentName,
		Thought:          thought,
		SourcesConsulted: sources,
	})
}

func testHighlights() *prep.CandidateHighlights {
	return &prep.CandidateHighlights{
		Summary:        "Backend engineer with ten years of Go experience",
		RelevantPoints: []string{"Led a migration to Go microservices", "Scaled a queue to 1M msgs/day"},
		GapAreas:       []string{"Kubernetes operators"},
	}
}

func testJobDetails() *prep.JobDetails {
	return &prep.JobDetails{
		Title:    "Senior Go Engineer",
		Company:  "Acme",
		Location: "Remote",
		Skills:   []string{"Go", "PostgreSQL", "distributed systems"},
	}
}
