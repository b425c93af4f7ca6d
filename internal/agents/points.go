package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
	"github.com/anunag86/InterviewGenius-sub002/internal/prompts"
)

const pointsSchema = `{
  "type": "object",
  "required": ["points", "relevance"],
  "properties": {
    "points": {"type": "array", "items": {"type": "string"}},
    "relevance": {"type": "string"}
  }
}`

// FallbackTalkingPoint is substituted when the generation service finds
// nothing in the resume relevant to a question. The stage never fails the
// whole job for an empty result.
const FallbackTalkingPoint = "We could not find a directly relevant example in your resume for this question. Prepare your own example: pick a concrete situation, the action you took, and the measurable result."

type pointsResponse struct {
	Points    []string `json:"points"`
	Relevance string   `json:"relevance"`
}

// BuildTalkingPoints generates 3-5 resume-grounded talking points for one
// interview question, appending the relevance explanation as a final point.
// Sibling questions are independent; the orchestrator fans these out.
func BuildTalkingPoints(ctx context.Context, inv *llm.Invoker, tracer Tracer, question prep.InterviewQuestion, resumeText string, highlights *prep.CandidateHighlights) ([]prep.TalkingPoint, error) {
	tracer.Trace(AgentTalkingPoints,
		fmt.Sprintf("Searching the resume for evidence to answer question %s", question.ID),
		SourceQuestions, SourceResumeText, SourceHighlights)

	prompt := prompts.Format(prompts.MustGet(promptFile, "talking-points"), map[string]string{
		"Question":   question.Question,
		"Highlights": bulleted(highlights.RelevantPoints),
		"ResumeText": resumeText,
	})

	raw, err := inv.Invoke(ctx, prompt, pointsSchema, llm.TierStandard)
	if err != nil {
		return nil, err
	}

	var resp pointsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode talking points: %w", err)
	}

	var points []prep.TalkingPoint
	for _, text := range resp.Points {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		points = append(points, prep.TalkingPoint{ID: uuid.New().String(), Text: text})
	}

	if len(points) == 0 {
		tracer.Trace(AgentTalkingPoints,
			fmt.Sprintf("No resume-grounded points found for question %s, substituting the fallback point", question.ID),
			SourceQuestions, SourceResumeText)
		return []prep.TalkingPoint{{ID: uuid.New().String(), Text: FallbackTalkingPoint}}, nil
	}

	if strings.TrimSpace(resp.Relevance) != "" {
		points = append(points, prep.TalkingPoint{
			ID:   uuid.New().String(),
			Text: "Why this matters: " + strings.TrimSpace(resp.Relevance),
		})
	}

	tracer.Trace(AgentTalkingPoints,
		fmt.Sprintf("Grounded %d talking points in the resume for question %s", len(points), question.ID),
		SourceQuestions, SourceResumeText, SourceHighlights)

	return points, nil
}
