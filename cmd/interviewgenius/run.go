package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anunag86/InterviewGenius-sub002/internal/config"
	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
	"github.com/anunag86/InterviewGenius-sub002/internal/pipeline"
	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
	"github.com/anunag86/InterviewGenius-sub002/internal/store"
)

var (
	runJobPath     string
	runResumePath  string
	runProfileRef  string
	runPollSeconds int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one pipeline end to end from local files",
	Long:  `Run a single interview-prep pipeline from a job-posting text file and a resume text file, polling until it finishes and printing the resulting artifact as JSON.`,
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().StringVar(&runJobPath, "job", "", "Path to job posting text file (required)")
	runCmd.Flags().StringVar(&runResumePath, "resume", "", "Path to resume text file (required)")
	runCmd.Flags().StringVar(&runProfileRef, "profile", "", "Professional profile reference, e.g. a LinkedIn URL (required)")
	runCmd.Flags().IntVar(&runPollSeconds, "timeout", 600, "Maximum seconds to wait for completion")
	_ = runCmd.MarkFlagRequired("job")
	_ = runCmd.MarkFlagRequired("resume")
	_ = runCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(runCmd)
}

func runOnce(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	jobText, err := os.ReadFile(runJobPath)
	if err != nil {
		return fmt.Errorf("failed to read job posting: %w", err)
	}
	resumeText, err := os.ReadFile(runResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	ctx := context.Background()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	invoker := llm.NewInvoker(client, llm.InvokerOptions{
		MalformedRetries: cfg.MalformedRetries,
		CallTimeout:      cfg.CallTimeout(),
	})

	st := store.NewMemoryStore(cfg.Retention())
	orch := pipeline.New(st, invoker, pipeline.Options{FanOut: cfg.FanOut})

	jobID, err := orch.Submit(ctx, prep.Inputs{
		JobPosting:       string(jobText),
		ProfileReference: runProfileRef,
		ResumeText:       string(resumeText),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Started job %s\n", jobID)

	deadline := time.Now().Add(time.Duration(runPollSeconds) * time.Second)
	for time.Now().Before(deadline) {
		job, err := st.Get(ctx, jobID)
		if err != nil {
			return fmt.Errorf("failed to poll job: %w", err)
		}
		if job.Status.Terminal() {
			if job.Status == store.StatusFailed {
				return fmt.Errorf("pipeline failed: %s", job.Error)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(job.Result)
		}
		fmt.Fprintf(os.Stderr, "Stage %s, %d trace entries...\n", job.Stage, len(job.Trace))
		time.Sleep(2 * time.Second)
	}
	return fmt.Errorf("pipeline did not finish within %d seconds", runPollSeconds)
}
