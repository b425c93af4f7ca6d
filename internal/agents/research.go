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

// researchSchema is the shape the job-research stage requires from the
// generation service.
const researchSchema = `{
  "type": "object",
  "required": ["job_details", "company_info"],
  "properties": {
    "job_details": {
      "type": "object",
      "required": ["title", "company", "skills"],
      "properties": {
        "title": {"type": "string"},
        "company": {"type": "string"},
        "location": {"type": "string"},
        "skills": {"type": "array", "items": {"type": "string"}}
      }
    },
    "company_info": {
      "type": "object",
      "required": ["description"],
      "properties": {
        "description": {"type": "string"},
        "culture": {"type": "string"},
        "business_focus": {"type": "string"},
        "team_info": {"type": "string"},
        "role_details": {"type": "string"}
      }
    }
  }
}`

type researchResponse struct {
	JobDetails  prep.JobDetails  `json:"job_details"`
	CompanyInfo prep.CompanyInfo `json:"company_info"`
}

// ResearchJob extracts structured job details and company context from the
// raw job-posting reference text. It has no upstream pipeline dependency.
func ResearchJob(ctx context.Context, inv *llm.Invoker, tracer Tracer, jobPosting string) (*prep.JobDetails, *prep.CompanyInfo, error) {
	tracer.Trace(AgentJobResearch,
		"Analyzing the job posting to extract the role, required skills, and company context",
		SourceJobPosting)

	prompt := prompts.Format(prompts.MustGet(promptFile, "research-job"), map[string]string{
		"JobPosting": jobPosting,
	})

	raw, err := inv.Invoke(ctx, prompt, researchSchema, llm.TierStandard)
	if err != nil {
		return nil, nil, err
	}

	var resp researchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("failed to decode research response: %w", err)
	}

	if strings.TrimSpace(resp.JobDetails.Title) == "" {
		resp.JobDetails.Title = "Unknown role"
	}
	if strings.TrimSpace(resp.JobDetails.Company) == "" {
		resp.JobDetails.Company = "Unknown company"
	}

	tracer.Trace(AgentJobResearch,
		fmt.Sprintf("Identified role %q at %q with %d key skills", resp.JobDetails.Title, resp.JobDetails.Company, len(resp.JobDetails.Skills)),
		SourceJobPosting)

	return &resp.JobDetails, &resp.CompanyInfo, nil
}
