package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
	"github.com/anunag86/InterviewGenius-sub002/internal/prompts"
)

const gradeSchema = `{
  "type": "object",
  "required": ["score", "strengths", "improvements"],
  "properties": {
    "score": {"type": "number"},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "improvements": {"type": "array", "items": {"type": "string"}},
    "suggestion": {"type": "string"}
  }
}`

// GradeResponse grades a candidate's practice response to a question. It is
// on-demand and independent of the main pipeline sequence. A *llm.ClientError
// means the service could not produce a valid grading document; callers
// treat that as "grading unavailable", not as a hard failure.
func GradeResponse(ctx context.Context, inv *llm.Invoker, question, responseText string) (*prep.GradingResult, error) {
	prompt := prompts.Format(prompts.MustGet(promptFile, "grade-response"), map[string]string{
		"Question": question,
		"Response": responseText,
	})

	raw, err := inv.Invoke(ctx, prompt, gradeSchema, llm.TierLite)
	if err != nil {
		return nil, err
	}

	var result prep.GradingResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode grading result: %w", err)
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}

	return &result, nil
}
