package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
	"github.com/anunag86/InterviewGenius-sub002/internal/store"
)

// SubmitRequest represents the request body for POST /jobs. Validation
// failures are rejected before a job record is ever created.
type SubmitRequest struct {
	JobPosting       string `json:"job_posting" validate:"required,min=20"`
	ProfileReference string `json:"profile_reference" validate:"required"`
	ResumeText       string `json:"resume_text" validate:"required,min=20"`
}

// SubmitResponse represents the response for POST /jobs
type SubmitResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// StatusResponse is the read-only projection of a job for polling clients.
type StatusResponse struct {
	JobID     string                `json:"job_id"`
	Status    store.Status          `json:"status"`
	Stage     string                `json:"stage"`
	CreatedAt time.Time             `json:"created_at"`
	Trace     []prep.ReasoningEntry `json:"trace"`
	Artifacts []string              `json:"artifacts,omitempty"`
	Result    *prep.InterviewPrep   `json:"result,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// GradeRequest represents the request body for POST /grade
type GradeRequest struct {
	Question string `json:"question" validate:"required"`
	Response string `json:"response" validate:"required"`
}

// GradeResponse represents the response for POST /grade. Available is false
// when the generation service could not produce a valid grading document.
type GradeResponse struct {
	Available bool                `json:"available"`
	Grading   *prep.GradingResult `json:"grading,omitempty"`
}

// handleSubmit validates the inputs, creates a job, and starts its pipeline.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid input: "+verrs[0].Error())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid input")
		return
	}

	jobID, err := s.orch.Submit(r.Context(), prep.Inputs{
		JobPosting:       req.JobPosting,
		ProfileReference: req.ProfileReference,
		ResumeText:       req.ResumeText,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to start job: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, SubmitResponse{
		JobID:  jobID,
		Status: string(store.StatusPending),
	})
}

// handleStatus returns a consistent snapshot of a job. Unknown and expired
// ids are indistinguishable: both return 404.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Job not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load job: "+err.Error())
		return
	}

	artifacts := make([]string, 0, len(job.Artifacts))
	for step := range job.Artifacts {
		artifacts = append(artifacts, step)
	}
	sort.Strings(artifacts)

	s.jsonResponse(w, http.StatusOK, StatusResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Stage:     job.Stage.String(),
		CreatedAt: job.CreatedAt,
		Trace:     job.Trace,
		Artifacts: artifacts,
		Result:    job.Result,
		Error:     job.Error,
	})
}

// handleGrade grades a practice response synchronously, independent of any
// job. An unusable generation document yields available=false, never a 5xx.
func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "question and response are required")
		return
	}

	grading := s.orch.Grade(r.Context(), req.Question, req.Response)
	s.jsonResponse(w, http.StatusOK, GradeResponse{
		Available: grading != nil,
		Grading:   grading,
	})
}

// handleHealth is a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
