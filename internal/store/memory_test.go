package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
)

func testInputs() prep.Inputs {
	return prep.Inputs{
		JobPosting:       "Senior Go Engineer at Acme, building pipelines.",
		ProfileReference: "https://example.com/in/candidate",
		ResumeText:       "Ten years of Go and distributed systems.",
	}
}

func entry(agent, thought string) prep.ReasoningEntry {
	return prep.ReasoningEntry{Timestamp: time.Now(), AgentName: agent, Thought: thought}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	job, err := s.Create(ctx, testInputs())
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, StageCreated, job.Stage)
	assert.True(t, job.ExpiresAt.After(job.CreatedAt))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Empty(t, got.Trace)
	assert.Nil(t, got.Result)
	assert.Empty(t, got.Error)
}

func TestMemoryStore_GetUnknownID(t *testing.T) {
	s := NewMemoryStore(0)

	_, err := s.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	job, err := s.Create(ctx, testInputs())
	require.NoError(t, err)

	before, err := s.Get(ctx, job.ID)
	require.NoError(t, err)

	require.NoError(t, s.AppendTrace(ctx, job.ID, entry("research", "thinking")))

	// The earlier snapshot must not observe the later write
	assert.Empty(t, before.Trace)

	after, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, after.Trace, 1)
}

func TestMemoryStore_AdvanceStageMonotonic(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	job, err := s.Create(ctx, testInputs())
	require.NoError(t, err)

	require.NoError(t, s.AdvanceStage(ctx, job.ID, StageResearching))
	require.NoError(t, s.AdvanceStage(ctx, job.ID, StageProfiling))

	err = s.AdvanceStage(ctx, job.ID, StageResearching)
	assert.ErrorIs(t, err, ErrStageRegression)

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StageProfiling, got.Stage)
}

func TestMemoryStore_AdvanceStageMarksRunning(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	job, err := s.Create(ctx, testInputs())
	require.NoError(t, err)

	require.NoError(t, s.AdvanceStage(ctx, job.ID, StageCreated))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Equal(t, StageCreated, got.Stage)
}

func TestMemoryStore_SetResultRequiresRunning(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	job, err := s.Create(ctx, testInputs())
	require.NoError(t, err)

	err = s.SetResult(ctx, job.ID, &prep.InterviewPrep{Company: "Acme"})
	assert.ErrorIs(t, err, ErrIllegalTransition)

	require.NoError(t, s.AdvanceStage(ctx, job.ID, StageCreated))
	require.NoError(t, s.SetResult(ctx, job.ID, &prep.InterviewPrep{Company: "Acme"}))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, StageDone, got.Stage)
	require.NotNil(t, got.Result)
	assert.Empty(t, got.Error)
}

func TestMemoryStore_SetErrorFromAnyNonTerminalState(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	// From pending
	pending, err := s.Create(ctx, testInputs())
	require.NoError(t, err)
	require.NoError(t, s.SetError(ctx, pending.ID, "stage research failed"))

	got, err := s.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "stage research failed", got.Error)
	assert.Nil(t, got.Result)

	// Terminal jobs reject further transitions
	err = s.SetError(ctx, pending.ID, "again")
	assert.ErrorIs(t, err, ErrIllegalTransition)
	err = s.SetResult(ctx, pending.ID, &prep.InterviewPrep{})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestMemoryStore_TerminalExclusivity(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	completed, err := s.Create(ctx, testInputs())
	require.NoError(t, err)
	require.NoError(t, s.AdvanceStage(ctx, completed.ID, StageCreated))
	require.NoError(t, s.SetResult(ctx, completed.ID, &prep.InterviewPrep{}))

	failed, err := s.Create(ctx, testInputs())
	require.NoError(t, err)
	require.NoError(t, s.SetError(ctx, failed.ID, "boom"))

	gotCompleted, err := s.Get(ctx, completed.ID)
	require.NoError(t, err)
	assert.NotNil(t, gotCompleted.Result)
	assert.Empty(t, gotCompleted.Error)

	gotFailed, err := s.Get(ctx, failed.ID)
	require.NoError(t, err)
	assert.Nil(t, gotFailed.Result)
	assert.NotEmpty(t, gotFailed.Error)
}

func TestMemoryStore_TraceOrderPreserved(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	job, err := s.Create(ctx, testInputs())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendTrace(ctx, job.ID, entry("agent", fmt.Sprintf("thought %d", i))))
	}

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, got.Trace, 5)
	for i, e := range got.Trace {
		assert.Equal(t, fmt.Sprintf("thought %d", i), e.Thought)
	}
}

func TestMemoryStore_SaveArtifact(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	job, err := s.Create(ctx, testInputs())
	require.NoError(t, err)

	require.NoError(t, s.SaveArtifact(ctx, job.ID, "job_research", map[string]string{"title": "Engineer"}))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Contains(t, got.Artifacts, "job_research")
	assert.JSONEq(t, `{"title": "Engineer"}`, string(got.Artifacts["job_research"]))
}

func TestMemoryStore_ExpiredJobsReturnNotFound(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	job, err := s.Create(ctx, testInputs())
	require.NoError(t, err)

	// Within the window
	_, err = s.Get(ctx, job.ID)
	require.NoError(t, err)

	// Past the window
	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = s.Get(ctx, job.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := s.Expire(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestMemoryStore_MarkStale(t *testing.T) {
	s := NewMemoryStore(0)
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	stuck, err := s.Create(ctx, testInputs())
	require.NoError(t, err)
	require.NoError(t, s.AdvanceStage(ctx, stuck.ID, StageResearching))

	done, err := s.Create(ctx, testInputs())
	require.NoError(t, err)
	require.NoError(t, s.AdvanceStage(ctx, done.ID, StageCreated))
	require.NoError(t, s.SetResult(ctx, done.ID, &prep.InterviewPrep{}))

	s.now = func() time.Time { return now.Add(30 * time.Minute) }
	failed, err := s.MarkStale(ctx, 10*time.Minute, "job stalled")
	require.NoError(t, err)
	assert.Equal(t, []string{stuck.ID}, failed)

	got, err := s.Get(ctx, stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "job stalled", got.Error)

	// Terminal jobs are untouched
	gotDone, err := s.Get(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, gotDone.Status)
}

func TestMemoryStore_ConcurrentAppendAndGet(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	job, err := s.Create(ctx, testInputs())
	require.NoError(t, err)

	const writes = 200
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			_ = s.AppendTrace(ctx, job.ID, entry("agent", fmt.Sprintf("thought %d", i)))
		}
	}()

	go func() {
		defer wg.Done()
		prev := 0
		for i := 0; i < writes; i++ {
			got, err := s.Get(ctx, job.ID)
			if err != nil {
				continue
			}
			// Trace length is monotonically non-decreasing across reads
			if len(got.Trace) < prev {
				t.Errorf("trace length decreased: %d -> %d", prev, len(got.Trace))
				return
			}
			prev = len(got.Trace)
		}
	}()

	wg.Wait()

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, got.Trace, writes)
}
