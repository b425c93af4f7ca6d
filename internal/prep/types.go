// Package prep defines the domain types shared across the interview
// preparation pipeline: structured job research, candidate analysis, the
// final InterviewPrep artifact, and the reasoning trace entries that record
// how each agent arrived at its output.
package prep

import "time"

// JobDetails holds the structured facts extracted from a job posting.
type JobDetails struct {
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Location string   `json:"location,omitempty"`
	Skills   []string `json:"skills"`
}

// CompanyInfo holds researched context about the hiring company.
type CompanyInfo struct {
	Description   string `json:"description"`
	Culture       string `json:"culture,omitempty"`
	BusinessFocus string `json:"business_focus,omitempty"`
	TeamInfo      string `json:"team_info,omitempty"`
	RoleDetails   string `json:"role_details,omitempty"`
}

// CandidateHighlights summarizes how the candidate's background maps onto the
// job. ExperienceQuotes are verbatim snippets from the supplied resume text;
// agents downstream must only claim facts present here or in the resume.
type CandidateHighlights struct {
	Summary                string   `json:"summary"`
	RelevantPoints         []string `json:"relevant_points"`
	GapAreas               []string `json:"gap_areas,omitempty"`
	ExperienceQuotes       []string `json:"experience_quotes,omitempty"`
	TalkingPointCategories []string `json:"talking_point_categories,omitempty"`
}

// TalkingPoint is a single resume-grounded claim offered to help answer an
// interview question.
type TalkingPoint struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// InterviewQuestion is one question within a round. Narrative is the
// four-part situation/action/result/guidance framing rendered as a single
// string; it is empty until the narrative stage runs.
type InterviewQuestion struct {
	ID            string         `json:"id"`
	Question      string         `json:"question"`
	TalkingPoints []TalkingPoint `json:"talking_points"`
	Narrative     string         `json:"narrative,omitempty"`
}

// InterviewRound is an ordered group of questions with a shared focus.
type InterviewRound struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Focus     string              `json:"focus"`
	Questions []InterviewQuestion `json:"questions"`
}

// InterviewPrep is the terminal artifact of a completed pipeline run.
type InterviewPrep struct {
	JobTitle            string              `json:"job_title"`
	Company             string              `json:"company"`
	JobDetails          JobDetails          `json:"job_details"`
	CompanyInfo         CompanyInfo         `json:"company_info"`
	CandidateHighlights CandidateHighlights `json:"candidate_highlights"`
	InterviewRounds     []InterviewRound    `json:"interview_rounds"`
}

// GradingResult is the outcome of grading a candidate's practice response to
// a single question. It is returned synchronously to the grading caller and
// never attached to a job record.
type GradingResult struct {
	Score        int      `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Suggestion   string   `json:"suggestion,omitempty"`
}

// ReasoningEntry is one immutable record in a job's append-only reasoning
// trace: which agent acted, what it was thinking, and which upstream
// artifacts it consulted.
type ReasoningEntry struct {
	Timestamp        time.Time `json:"timestamp"`
	AgentName        string    `json:"agent_name"`
	Thought          string    `json:"thought"`
	SourcesConsulted []string  `json:"sources_consulted,omitempty"`
}

// Inputs are the three raw inputs a pipeline run starts from.
type Inputs struct {
	JobPosting       string `json:"job_posting"`
	ProfileReference string `json:"profile_reference"`
	ResumeText       string `json:"resume_text"`
}
