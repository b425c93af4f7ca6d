package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
	"github.com/anunag86/InterviewGenius-sub002/internal/prompts"
)

const narrativeSchema = `{
  "type": "object",
  "required": ["situation", "action", "result", "guidance"],
  "properties": {
    "situation": {"type": "string"},
    "action": {"type": "string"},
    "result": {"type": "string"},
    "guidance": {"type": "string"}
  }
}`

type narrativeResponse struct {
	Situation string `json:"situation"`
	Action    string `json:"action"`
	Result    string `json:"result"`
	Guidance  string `json:"guidance"`
}

// BuildNarrative turns a question's existing talking points into a four-part
// situation/action/result/guidance framing, rendered as a single guidance
// string. It must not introduce facts absent from the talking points.
func BuildNarrative(ctx context.Context, inv *llm.Invoker, tracer Tracer, question prep.InterviewQuestion, highlights *prep.CandidateHighlights) (string, error) {
	tracer.Trace(AgentNarrative,
		fmt.Sprintf("Structuring the %d talking points for question %s into an answer narrative", len(question.TalkingPoints), question.ID),
		SourceTalkingPoints, SourceHighlights)

	pointTexts := make([]string, len(question.TalkingPoints))
	for i, p := range question.TalkingPoints {
		pointTexts[i] = p.Text
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "build-narrative"), map[string]string{
		"Question":      question.Question,
		"TalkingPoints": bulleted(pointTexts),
		"Highlights":    highlights.Summary,
	})

	raw, err := inv.Invoke(ctx, prompt, narrativeSchema, llm.TierAdvanced)
	if err != nil {
		return "", err
	}

	var resp narrativeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to decode narrative: %w", err)
	}

	narrative := renderNarrative(resp)

	tracer.Trace(AgentNarrative,
		fmt.Sprintf("Built a four-part narrative for question %s", question.ID),
		SourceTalkingPoints, SourceHighlights)

	return narrative, nil
}

// renderNarrative flattens the four parts into the single guidance string the
// artifact carries.
func renderNarrative(n narrativeResponse) string {
	var sb strings.Builder
	write := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(value))
	}
	write("Situation", n.Situation)
	write("Action", n.Action)
	write("Result", n.Result)
	write("Guidance", n.Guidance)
	return sb.String()
}
