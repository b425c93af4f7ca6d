package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
)

func TestGradeResponse_Success(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return `{
				"score": 82,
				"strengths": ["Concrete metrics", "Clear structure"],
				"improvements": ["Quantify the business impact"],
				"suggestion": "Close with what you would do differently next time."
			}`, nil
		},
	}

	result, err := GradeResponse(context.Background(), newTestInvoker(mock), "Tell me about a hard bug.", "I once debugged a deadlock in our scheduler...")
	require.NoError(t, err)
	assert.Equal(t, 82, result.Score)
	assert.Len(t, result.Strengths, 2)
	assert.Equal(t, []string{"Quantify the business impact"}, result.Improvements)
	assert.NotEmpty(t, result.Suggestion)

	// The prompt carries both the question and the candidate's answer
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "Tell me about a hard bug.")
	assert.Contains(t, mock.Prompts[0], "deadlock in our scheduler")
}

func TestGradeResponse_ClampsScore(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{"above range", `{"score": 140, "strengths": [], "improvements": []}`, 100},
		{"below range", `{"score": -5, "strengths": [], "improvements": []}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockLLMClient{
				GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
					return tt.reply, nil
				},
			}

			result, err := GradeResponse(context.Background(), newTestInvoker(mock), "Q", "A")
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Score)
		})
	}
}

func TestGradeResponse_MalformedSurfacesClientError(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "I cannot grade this", nil
		},
	}

	_, err := GradeResponse(context.Background(), newTestInvoker(mock), "Q", "A")
	require.Error(t, err)

	var cerr *llm.ClientError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, llm.ErrMalformedResponse, cerr.Kind)
}
