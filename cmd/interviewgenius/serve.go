package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anunag86/InterviewGenius-sub002/internal/config"
	"github.com/anunag86/InterviewGenius-sub002/internal/llm"
	"github.com/anunag86/InterviewGenius-sub002/internal/pipeline"
	"github.com/anunag86/InterviewGenius-sub002/internal/server"
	"github.com/anunag86/InterviewGenius-sub002/internal/store"
)

var (
	servePort   int
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes job submission, status polling, and response grading.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	invoker := llm.NewInvoker(client, llm.InvokerOptions{
		MalformedRetries: cfg.MalformedRetries,
		CallTimeout:      cfg.CallTimeout(),
	})

	var st store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.ConnectPostgres(ctx, cfg.DatabaseURL, cfg.Retention())
		if err != nil {
			return fmt.Errorf("failed to connect job store: %w", err)
		}
	} else {
		st = store.NewMemoryStore(cfg.Retention())
	}

	orch := pipeline.New(st, invoker, pipeline.Options{
		FanOut:        cfg.FanOut,
		Liveness:      cfg.Liveness(),
		SweepInterval: cfg.SweepInterval(),
	})

	srv := server.New(server.Config{Port: cfg.Port}, st, orch)
	return srv.Start()
}
