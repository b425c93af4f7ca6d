// Package agents implements the pipeline's stage agents. Each agent is a
// pure transformation from accumulated upstream context to a typed partial
// result: it builds its prompt, invokes the generation service through the
// schema-enforcing Invoker, and records before/after reasoning entries via
// its Tracer.
package agents

import "strings"

// Agent names, used to attribute reasoning-trace entries.
const (
	AgentJobResearch        = "job_research"
	AgentCandidateAnalysis  = "candidate_analysis"
	AgentQuestionGeneration = "question_generation"
	AgentTalkingPoints      = "talking_points"
	AgentNarrative          = "narrative"
	AgentGrading            = "grading"
)

// Source identifiers for the sourcesConsulted field of trace entries.
const (
	SourceJobPosting       = "job_posting"
	SourceResumeText       = "resume_text"
	SourceProfileReference = "profile_reference"
	SourceJobDetails       = "job_details"
	SourceCompanyInfo      = "company_info"
	SourceHighlights       = "candidate_highlights"
	SourceQuestions        = "interview_questions"
	SourceTalkingPoints    = "talking_points"
)

// promptFile is the embedded template file all agents read from.
const promptFile = "agents.json"

// Tracer receives reasoning entries as an agent works. The orchestrator
// backs it with the job store's append-only trace; tests use a recorder.
type Tracer interface {
	Trace(agentName, thought string, sources ...string)
}

// joinList renders a string slice as a comma-separated fragment for prompts.
func joinList(items []string) string {
	return strings.Join(items, ", ")
}

// bulleted renders a string slice as a newline-separated bullet list.
func bulleted(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}
