// Package store provides the authoritative, shared record of pipeline jobs:
// status, current stage, append-only reasoning trace, per-stage artifacts,
// and the terminal result or error. The orchestrator is the only writer for
// a running job; the status API reads concurrently and always sees a
// consistent snapshot.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
)

// Status is the lifecycle state of a job.
type Status string

// Job lifecycle states.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Stage is the ordinal of the last successfully completed pipeline stage.
// It is monotonically non-decreasing for the lifetime of a job.
type Stage int

// Pipeline stages in execution order.
const (
	StageCreated Stage = iota
	StageResearching
	StageProfiling
	StageGeneratingQuestions
	StageEnrichingPoints
	StageBuildingNarrative
	StageDone
)

var stageNames = map[Stage]string{
	StageCreated:             "created",
	StageResearching:         "researching",
	StageProfiling:           "profiling",
	StageGeneratingQuestions: "generating_questions",
	StageEnrichingPoints:     "enriching_points",
	StageBuildingNarrative:   "building_narrative",
	StageDone:                "completed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Job is the full record for one pipeline run.
type Job struct {
	ID        string                     `json:"id"`
	Status    Status                     `json:"status"`
	Stage     Stage                      `json:"stage"`
	Inputs    prep.Inputs                `json:"-"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
	ExpiresAt time.Time                  `json:"expires_at"`
	Trace     []prep.ReasoningEntry      `json:"trace"`
	Result    *prep.InterviewPrep        `json:"result,omitempty"`
	Error     string                     `json:"error,omitempty"`
	Artifacts map[string]json.RawMessage `json:"-"`
}

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned for unknown or expired job ids.
	ErrNotFound = errors.New("job not found")
	// ErrStageRegression is returned when AdvanceStage would move backwards.
	ErrStageRegression = errors.New("stage may not decrease")
	// ErrIllegalTransition is returned when a status transition is not legal
	// from the job's current state.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Store is the contract the orchestrator and status API share. A memory
// implementation backs tests and single-process deployments; a Postgres
// implementation backs production. Per-key operations are atomic: a
// concurrent AppendTrace and Get on the same id never produce a torn read.
type Store interface {
	// Create records a new pending job and returns it.
	Create(ctx context.Context, inputs prep.Inputs) (*Job, error)
	// Get returns a consistent snapshot of a job, or ErrNotFound for
	// unknown or expired ids.
	Get(ctx context.Context, id string) (*Job, error)
	// AppendTrace appends one immutable reasoning entry.
	AppendTrace(ctx context.Context, id string, entry prep.ReasoningEntry) error
	// AdvanceStage moves the job's completed-stage marker forward and marks
	// a pending job as running. Fails with ErrStageRegression if newStage is
	// behind the current one.
	AdvanceStage(ctx context.Context, id string, newStage Stage) error
	// SetResult transitions RUNNING -> COMPLETED with the final artifact.
	SetResult(ctx context.Context, id string, result *prep.InterviewPrep) error
	// SetError transitions any non-terminal state -> FAILED.
	SetError(ctx context.Context, id string, message string) error
	// SaveArtifact stores (or replaces) a stage's diagnostic output.
	SaveArtifact(ctx context.Context, id, step string, content any) error
	// Expire removes jobs whose retention window has passed. Returns the
	// number of jobs removed.
	Expire(ctx context.Context, now time.Time) (int, error)
	// MarkStale fails non-terminal jobs that have not advanced within the
	// liveness window. Returns the ids of jobs it failed.
	MarkStale(ctx context.Context, olderThan time.Duration, message string) ([]string, error)
	// Close releases backing resources.
	Close()
}
