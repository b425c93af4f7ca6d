package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
	"github.com/anunag86/InterviewGenius-sub002/internal/prompts"
)

const highlightsSchema = `{
  "type": "object",
  "required": ["summary", "relevant_points"],
  "properties": {
    "summary": {"type": "string"},
    "relevant_points": {"type": "array", "items": {"type": "string"}},
    "gap_areas": {"type": "array", "items": {"type": "string"}},
    "experience_quotes": {"type": "array", "items": {"type": "string"}},
    "talking_point_categories": {"type": "array", "items": {"type": "string"}}
  }
}`

// AnalyzeCandidate maps the candidate's resume and profile reference onto the
// researched job details, producing the highlight summary the downstream
// stages build on. Depends on the job-research stage.
func AnalyzeCandidate(ctx context.Context, inv *llm.Invoker, tracer Tracer, resumeText, profileReference string, details *prep.JobDetails) (*prep.CandidateHighlights, error) {
	tracer.Trace(AgentCandidateAnalysis,
		fmt.Sprintf("Mapping the candidate's background onto the %s role at %s", details.Title, details.Company),
		SourceResumeText, SourceProfileReference, SourceJobDetails)

	prompt := prompts.Format(prompts.MustGet(promptFile, "analyze-candidate"), map[string]string{
		"JobTitle":         details.Title,
		"Company":          details.Company,
		"Skills":           joinList(details.Skills),
		"ResumeText":       resumeText,
		"ProfileReference": profileReference,
	})

	raw, err := inv.Invoke(ctx, prompt, highlightsSchema, llm.TierStandard)
	if err != nil {
		return nil, err
	}

	var highlights prep.CandidateHighlights
	if err := json.Unmarshal(raw, &highlights); err != nil {
		return nil, fmt.Errorf("failed to decode candidate highlights: %w", err)
	}

	tracer.Trace(AgentCandidateAnalysis,
		fmt.Sprintf("Summarized the candidate with %d relevant points and %d gap areas", len(highlights.RelevantPoints), len(highlights.GapAreas)),
		SourceResumeText, SourceProfileReference, SourceJobDetails)

	return &highlights, nil
}
