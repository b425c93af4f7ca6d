package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/anunag86/InterviewGenius-sub002/internal/agents"
	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
	"github.com/anunag86/InterviewGenius-sub002/internal/store"
)

// ErrRunActive is returned when a run is requested for a job id that already
// has an active run.
var ErrRunActive = errors.New("a run is already active for this job")

// Options configures the orchestrator. Zero values fall back to defaults.
type Options struct {
	// FanOut bounds per-question concurrency in the enrichment stages.
	FanOut int
	// Liveness is how long a job may go without advancing before the
	// janitor fails it as stale.
	Liveness time.Duration
	// SweepInterval is how often the janitor sweeps for stale and expired
	// jobs.
	SweepInterval time.Duration
}

// Orchestrator sequences the stage agents against a job's accumulated
// context and drives the job to a terminal state. Each job is driven by one
// goroutine; distinct jobs run fully independently.
type Orchestrator struct {
	store   store.Store
	invoker *llm.Invoker
	fanOut  int

	liveness      time.Duration
	sweepInterval time.Duration

	mu     sync.Mutex
	active map[string]struct{}
}

// New creates an orchestrator over a job store and generation invoker.
func New(st store.Store, invoker *llm.Invoker, opts Options) *Orchestrator {
	if opts.FanOut <= 0 {
		opts.FanOut = 4
	}
	if opts.Liveness <= 0 {
		opts.Liveness = 10 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	return &Orchestrator{
		store:         st,
		invoker:       invoker,
		fanOut:        opts.FanOut,
		liveness:      opts.Liveness,
		sweepInterval: opts.SweepInterval,
		active:        make(map[string]struct{}),
	}
}

// Submit creates a job record for the inputs and starts its run
// asynchronously. The returned id is immediately pollable.
func (o *Orchestrator) Submit(ctx context.Context, inputs prep.Inputs) (string, error) {
	job, err := o.store.Create(ctx, inputs)
	if err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}
	if err := o.Start(job.ID, inputs); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Start launches the pipeline for an existing job id. At most one run may be
// active per id; a second Start while the first is in flight returns
// ErrRunActive. A run started for a terminal job aborts on its first store
// transition and leaves the record untouched.
func (o *Orchestrator) Start(id string, inputs prep.Inputs) error {
	o.mu.Lock()
	if _, busy := o.active[id]; busy {
		o.mu.Unlock()
		return ErrRunActive
	}
	o.active[id] = struct{}{}
	o.mu.Unlock()

	go o.run(id, inputs)
	return nil
}

// run executes the stage table for one job. It never panics the process:
// every stage failure is converted into the job's terminal error and other
// jobs are unaffected.
func (o *Orchestrator) run(id string, inputs prep.Inputs) {
	defer func() {
		o.mu.Lock()
		delete(o.active, id)
		o.mu.Unlock()
	}()

	ctx := context.Background()
	jc := &jobContext{inputs: inputs}

	// Mark the job running before the first stage does any work.
	if err := o.store.AdvanceStage(ctx, id, store.StageCreated); err != nil {
		log.Printf("pipeline %s: failed to mark running: %v", id, err)
		return
	}

	for _, stage := range stages {
		log.Printf("pipeline %s: running stage %s", id, stage.completes)

		// Each stage's reasoning entries are buffered and flushed to the
		// store only when the stage completes, so a failed stage leaves the
		// trace exactly as its predecessors wrote it.
		tracer := newStageTracer()

		if err := stage.run(ctx, o, jc, tracer); err != nil {
			// Previously completed stages' outputs and trace stay intact.
			msg := fmt.Sprintf("stage %s failed: %v", stage.completes, err)
			log.Printf("pipeline %s: %s", id, msg)
			if serr := o.store.SetError(ctx, id, msg); serr != nil {
				log.Printf("pipeline %s: failed to record error: %v", id, serr)
			}
			return
		}

		for _, entry := range tracer.drain() {
			if err := o.store.AppendTrace(ctx, id, entry); err != nil {
				log.Printf("pipeline %s: failed to append trace entry: %v", id, err)
			}
		}
		if err := o.store.AdvanceStage(ctx, id, stage.completes); err != nil {
			log.Printf("pipeline %s: failed to advance stage: %v", id, err)
			_ = o.store.SetError(ctx, id, fmt.Sprintf("failed to persist stage %s: %v", stage.completes, err))
			return
		}
		if err := o.store.SaveArtifact(ctx, id, stage.artifact, stage.output(jc)); err != nil {
			log.Printf("pipeline %s: failed to save artifact %s: %v", id, stage.artifact, err)
		}
	}

	if err := o.store.SetResult(ctx, id, jc.assemble()); err != nil {
		log.Printf("pipeline %s: failed to record result: %v", id, err)
		return
	}
	log.Printf("pipeline %s: completed", id)
}

// Grade grades a practice response outside the pipeline sequence. A nil
// result means grading is unavailable for this attempt; it is never a hard
// error for the caller.
func (o *Orchestrator) Grade(ctx context.Context, question, responseText string) *prep.GradingResult {
	result, err := agents.GradeResponse(ctx, o.invoker, question, responseText)
	if err != nil {
		log.Printf("grading unavailable: %v", err)
		return nil
	}
	return result
}

// RunJanitor periodically fails stale jobs and removes expired ones. It
// blocks until ctx is cancelled; callers run it in its own goroutine.
func (o *Orchestrator) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(o.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			staleMsg := fmt.Sprintf("job made no progress within %s and was abandoned", o.liveness)
			if failed, err := o.store.MarkStale(ctx, o.liveness, staleMsg); err != nil {
				log.Printf("janitor: failed to mark stale jobs: %v", err)
			} else if len(failed) > 0 {
				log.Printf("janitor: failed %d stale jobs", len(failed))
			}
			if removed, err := o.store.Expire(ctx, time.Now()); err != nil {
				log.Printf("janitor: failed to expire jobs: %v", err)
			} else if removed > 0 {
				log.Printf("janitor: expired %d jobs", removed)
			}
		}
	}
}

// stageTracer buffers one stage's reasoning entries until the stage
// completes. Fan-out sub-units trace concurrently, so appends are guarded;
// entries keep their emission timestamps and per-question attribution.
type stageTracer struct {
	mu      sync.Mutex
	entries []prep.ReasoningEntry
}

func newStageTracer() *stageTracer {
	return &stageTracer{}
}

func (t *stageTracer) Trace(agentName, thought string, sources ...string) {
	entry := prep.ReasoningEntry{
		Timestamp:        time.Now(),
		AgentName:        agentName,
		Thought:          thought,
		SourcesConsulted: sources,
	}
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()
}

func (t *stageTracer) drain() []prep.ReasoningEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := t.entries
	t.entries = nil
	return entries
}
