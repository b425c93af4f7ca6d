// Package pipeline provides the orchestrator that drives a job through the
// ordered generation stages, persisting progress and classifying failures
// into the job's terminal state.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/anunag86/InterviewGenius-sub002/internal/agents"
	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
	"github.com/anunag86/InterviewGenius-sub002/internal/store"
)

// jobContext is the accumulated upstream context a run threads through its
// stages. Only the driving goroutine mutates it; fan-out sub-units write
// exclusively to their own question's fields.
type jobContext struct {
	inputs     prep.Inputs
	details    *prep.JobDetails
	company    *prep.CompanyInfo
	highlights *prep.CandidateHighlights
	rounds     []prep.InterviewRound
}

// assemble builds the terminal artifact once every stage has run.
func (jc *jobContext) assemble() *prep.InterviewPrep {
	return &prep.InterviewPrep{
		JobTitle:            jc.details.Title,
		Company:             jc.details.Company,
		JobDetails:          *jc.details,
		CompanyInfo:         *jc.company,
		CandidateHighlights: *jc.highlights,
		InterviewRounds:     jc.rounds,
	}
}

// stageDef describes one ordered pipeline stage: the stage ordinal it
// completes, the artifact key its output is persisted under, and the
// function that runs it against the accumulated context. The executor in
// run.go interprets this table; stage order and data dependencies live here,
// not in hand-written call chains.
type stageDef struct {
	completes store.Stage
	artifact  string
	run       func(ctx context.Context, o *Orchestrator, jc *jobContext, tracer agents.Tracer) error
	output    func(jc *jobContext) any
}

// Artifact keys for per-stage diagnostic outputs.
const (
	ArtifactResearch   = "job_research"
	ArtifactHighlights = "candidate_highlights"
	ArtifactQuestions  = "interview_questions"
	ArtifactPoints     = "talking_points"
	ArtifactNarratives = "narratives"
)

// stages is the pipeline in dependency order. Stages 1-3 are strictly
// sequential; the last two fan out per question.
var stages = []stageDef{
	{
		completes: store.StageResearching,
		artifact:  ArtifactResearch,
		run: func(ctx context.Context, o *Orchestrator, jc *jobContext, tracer agents.Tracer) error {
			details, company, err := agents.ResearchJob(ctx, o.invoker, tracer, jc.inputs.JobPosting)
			if err != nil {
				return err
			}
			jc.details = details
			jc.company = company
			return nil
		},
		output: func(jc *jobContext) any {
			return map[string]any{"job_details": jc.details, "company_info": jc.company}
		},
	},
	{
		completes: store.StageProfiling,
		artifact:  ArtifactHighlights,
		run: func(ctx context.Context, o *Orchestrator, jc *jobContext, tracer agents.Tracer) error {
			highlights, err := agents.AnalyzeCandidate(ctx, o.invoker, tracer, jc.inputs.ResumeText, jc.inputs.ProfileReference, jc.details)
			if err != nil {
				return err
			}
			jc.highlights = highlights
			return nil
		},
		output: func(jc *jobContext) any { return jc.highlights },
	},
	{
		completes: store.StageGeneratingQuestions,
		artifact:  ArtifactQuestions,
		run: func(ctx context.Context, o *Orchestrator, jc *jobContext, tracer agents.Tracer) error {
			rounds, err := agents.GenerateQuestions(ctx, o.invoker, tracer, jc.details, jc.company, jc.highlights)
			if err != nil {
				return err
			}
			jc.rounds = rounds
			return nil
		},
		output: func(jc *jobContext) any { return jc.rounds },
	},
	{
		completes: store.StageEnrichingPoints,
		artifact:  ArtifactPoints,
		run: func(ctx context.Context, o *Orchestrator, jc *jobContext, tracer agents.Tracer) error {
			return o.forEachQuestion(ctx, jc, func(gctx context.Context, q *prep.InterviewQuestion) error {
				points, err := agents.BuildTalkingPoints(gctx, o.invoker, tracer, *q, jc.inputs.ResumeText, jc.highlights)
				if err != nil {
					return fmt.Errorf("question %s: %w", q.ID, err)
				}
				q.TalkingPoints = points
				return nil
			})
		},
		output: func(jc *jobContext) any { return jc.rounds },
	},
	{
		completes: store.StageBuildingNarrative,
		artifact:  ArtifactNarratives,
		run: func(ctx context.Context, o *Orchestrator, jc *jobContext, tracer agents.Tracer) error {
			return o.forEachQuestion(ctx, jc, func(gctx context.Context, q *prep.InterviewQuestion) error {
				narrative, err := agents.BuildNarrative(gctx, o.invoker, tracer, *q, jc.highlights)
				if err != nil {
					return fmt.Errorf("question %s: %w", q.ID, err)
				}
				q.Narrative = narrative
				return nil
			})
		},
		output: func(jc *jobContext) any { return jc.rounds },
	},
}

// forEachQuestion runs fn once per question with bounded concurrency. Each
// sub-unit owns exactly one question; a failure in any sub-unit fails the
// whole stage after the group drains.
func (o *Orchestrator) forEachQuestion(ctx context.Context, jc *jobContext, fn func(ctx context.Context, q *prep.InterviewQuestion) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.fanOut)
	for ri := range jc.rounds {
		for qi := range jc.rounds[ri].Questions {
			q := &jc.rounds[ri].Questions[qi]
			g.Go(func() error {
				return fn(gctx, q)
			})
		}
	}
	return g.Wait()
}
