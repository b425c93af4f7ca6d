package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
)

// MemoryStore is a process-local Store backed by a mutex-guarded map. It is
// the default for tests and single-process deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	jobs      map[string]*Job
	retention time.Duration
	now       func() time.Time
}

// DefaultRetention is how long jobs survive after creation before Expire
// removes them.
const DefaultRetention = 30 * 24 * time.Hour

// NewMemoryStore creates an empty in-memory store. A non-positive retention
// falls back to DefaultRetention.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryStore{
		jobs:      make(map[string]*Job),
		retention: retention,
		now:       time.Now,
	}
}

// Create records a new pending job.
func (s *MemoryStore) Create(_ context.Context, inputs prep.Inputs) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		Stage:     StageCreated,
		Inputs:    inputs,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.retention),
		Artifacts: make(map[string]json.RawMessage),
	}
	s.jobs[job.ID] = job
	return snapshot(job), nil
}

// Get returns a consistent snapshot of a job.
func (s *MemoryStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok || s.now().After(job.ExpiresAt) {
		return nil, ErrNotFound
	}
	return snapshot(job), nil
}

// AppendTrace appends one reasoning entry.
func (s *MemoryStore) AppendTrace(_ context.Context, id string, entry prep.ReasoningEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Trace = append(job.Trace, entry)
	job.UpdatedAt = s.now()
	return nil
}

// AdvanceStage moves the completed-stage marker forward.
func (s *MemoryStore) AdvanceStage(_ context.Context, id string, newStage Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.Terminal() {
		return fmt.Errorf("%w: job is %s", ErrIllegalTransition, job.Status)
	}
	if newStage < job.Stage {
		return fmt.Errorf("%w: %s -> %s", ErrStageRegression, job.Stage, newStage)
	}
	job.Stage = newStage
	if job.Status == StatusPending {
		job.Status = StatusRunning
	}
	job.UpdatedAt = s.now()
	return nil
}

// SetResult completes a running job.
func (s *MemoryStore) SetResult(_ context.Context, id string, result *prep.InterviewPrep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != StatusRunning {
		return fmt.Errorf("%w: result requires a running job, got %s", ErrIllegalTransition, job.Status)
	}
	job.Status = StatusCompleted
	job.Stage = StageDone
	job.Result = result
	job.Error = ""
	job.UpdatedAt = s.now()
	return nil
}

// SetError fails a non-terminal job.
func (s *MemoryStore) SetError(_ context.Context, id string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.Terminal() {
		return fmt.Errorf("%w: job is already %s", ErrIllegalTransition, job.Status)
	}
	job.Status = StatusFailed
	job.Result = nil
	job.Error = message
	job.UpdatedAt = s.now()
	return nil
}

// SaveArtifact stores a stage's diagnostic output.
func (s *MemoryStore) SaveArtifact(_ context.Context, id, step string, content any) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", step, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Artifacts[step] = raw
	job.UpdatedAt = s.now()
	return nil
}

// Expire removes jobs past their retention window.
func (s *MemoryStore) Expire(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if now.After(job.ExpiresAt) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed, nil
}

// MarkStale fails non-terminal jobs that have not advanced within olderThan.
func (s *MemoryStore) MarkStale(_ context.Context, olderThan time.Duration, message string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	var failed []string
	for id, job := range s.jobs {
		if job.Status.Terminal() {
			continue
		}
		if job.UpdatedAt.Before(cutoff) {
			job.Status = StatusFailed
			job.Result = nil
			job.Error = message
			job.UpdatedAt = s.now()
			failed = append(failed, id)
		}
	}
	return failed, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() {}

// snapshot deep-copies the mutable parts of a job so readers never observe
// later writes. Trace entries and artifact payloads are immutable once
// stored, so copying the containers is sufficient.
func snapshot(job *Job) *Job {
	cp := *job
	cp.Trace = make([]prep.ReasoningEntry, len(job.Trace))
	copy(cp.Trace, job.Trace)
	cp.Artifacts = make(map[string]json.RawMessage, len(job.Artifacts))
	for step, raw := range job.Artifacts {
		cp.Artifacts[step] = raw
	}
	if job.Result != nil {
		result := *job.Result
		cp.Result = &result
	}
	return &cp
}
