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

const questionsSchema = `{
  "type": "object",
  "required": ["rounds"],
  "properties": {
    "rounds": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "focus", "questions"],
        "properties": {
          "name": {"type": "string"},
          "focus": {"type": "string"},
          "questions": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string"}
          }
        }
      }
    }
  }
}`

type questionsResponse struct {
	Rounds []struct {
		Name      string   `json:"name"`
		Focus     string   `json:"focus"`
		Questions []string `json:"questions"`
	} `json:"rounds"`
}

// GenerateQuestions designs the interview loop: ordered rounds, each with an
// ordered list of questions. Talking points are added by a later stage.
// Depends on job research and candidate analysis.
func GenerateQuestions(ctx context.Context, inv *llm.Invoker, tracer Tracer, details *prep.JobDetails, info *prep.CompanyInfo, highlights *prep.CandidateHighlights) ([]prep.InterviewRound, error) {
	tracer.Trace(AgentQuestionGeneration,
		fmt.Sprintf("Designing an interview loop for %s at %s based on the candidate summary", details.Title, details.Company),
		SourceJobDetails, SourceCompanyInfo, SourceHighlights)

	prompt := prompts.Format(prompts.MustGet(promptFile, "generate-questions"), map[string]string{
		"JobTitle":         details.Title,
		"Company":          details.Company,
		"CompanyInfo":      renderCompanyInfo(info),
		"CandidateSummary": highlights.Summary,
	})

	raw, err := inv.Invoke(ctx, prompt, questionsSchema, llm.TierAdvanced)
	if err != nil {
		return nil, err
	}

	var resp questionsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode interview rounds: %w", err)
	}

	rounds := make([]prep.InterviewRound, 0, len(resp.Rounds))
	total := 0
	for _, r := range resp.Rounds {
		round := prep.InterviewRound{
			ID:    uuid.New().String(),
			Name:  r.Name,
			Focus: r.Focus,
		}
		for _, q := range r.Questions {
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			round.Questions = append(round.Questions, prep.InterviewQuestion{
				ID:       uuid.New().String(),
				Question: q,
			})
			total++
		}
		if len(round.Questions) > 0 {
			rounds = append(rounds, round)
		}
	}
	if len(rounds) == 0 {
		return nil, fmt.Errorf("generation service produced no usable questions")
	}

	tracer.Trace(AgentQuestionGeneration,
		fmt.Sprintf("Produced %d rounds with %d questions in total", len(rounds), total),
		SourceJobDetails, SourceCompanyInfo, SourceHighlights)

	return rounds, nil
}

// renderCompanyInfo flattens the researched company context for prompting.
func renderCompanyInfo(info *prep.CompanyInfo) string {
	var sb strings.Builder
	write := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			sb.WriteString(label)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteString("\n")
		}
	}
	write("Description", info.Description)
	write("Culture", info.Culture)
	write("Business focus", info.BusinessFocus)
	write("Team", info.TeamInfo)
	write("Role details", info.RoleDetails)
	return sb.String()
}
