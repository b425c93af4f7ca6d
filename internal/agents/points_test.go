package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
)

func testQuestion() prep.InterviewQuestion {
	return prep.InterviewQuestion{
		ID:       "q-1",
		Question: "Tell me about a time you scaled a system under load.",
	}
}

func TestBuildTalkingPoints_GroundedInResume(t *testing.T) {
	const marker = "ZEPHYR-9000 ingestion cluster"
	resume := "At Initech I scaled the " + marker + " from 10k to 1M messages per day."

	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return `{"points": ["Scaled the ZEPHYR-9000 ingestion cluster 100x", "Owned capacity planning"], "relevance": "Shows direct scaling experience."}`, nil
		},
	}
	tracer := &recordingTracer{}

	points, err := BuildTalkingPoints(context.Background(), newTestInvoker(mock), tracer, testQuestion(), resume, testHighlights())
	require.NoError(t, err)

	// The resume text, including the marker fact, is in the prompt: every
	// claimed fact is available to the generation service verbatim.
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], marker)
	assert.Contains(t, mock.Prompts[0], testQuestion().Question)

	// 2 points plus the relevance explanation appended as the final point
	require.Len(t, points, 3)
	assert.Contains(t, points[0].Text, "ZEPHYR-9000")
	assert.Contains(t, points[2].Text, "Why this matters")
	for _, p := range points {
		assert.NotEmpty(t, p.ID)
	}
}

func TestBuildTalkingPoints_FallbackOnEmptyPoints(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return `{"points": [], "relevance": ""}`, nil
		},
	}
	tracer := &recordingTracer{}

	points, err := BuildTalkingPoints(context.Background(), newTestInvoker(mock), tracer, testQuestion(), "short resume", testHighlights())
	require.NoError(t, err, "an empty generation result must not fail the stage")

	require.Len(t, points, 1)
	assert.Equal(t, FallbackTalkingPoint, points[0].Text)
	assert.NotEmpty(t, points[0].ID)
}

func TestBuildTalkingPoints_WhitespaceOnlyPointsFallBack(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return `{"points": ["   ", ""], "relevance": "n/a"}`, nil
		},
	}

	points, err := BuildTalkingPoints(context.Background(), newTestInvoker(mock), &recordingTracer{}, testQuestion(), "resume", testHighlights())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, FallbackTalkingPoint, points[0].Text)
}

func TestBuildTalkingPoints_ClientErrorPropagates(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "garbage", nil
		},
	}

	_, err := BuildTalkingPoints(context.Background(), newTestInvoker(mock), &recordingTracer{}, testQuestion(), "resume", testHighlights())
	var clientErr *llm.ClientError
	require.ErrorAs(t, err, &clientErr)
}
