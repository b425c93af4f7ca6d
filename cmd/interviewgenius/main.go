// Package main provides the entry point for the InterviewGenius pipeline
// service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interviewgenius",
	Short: "Interview preparation pipeline service",
	Long:  "InterviewGenius turns a job posting, resume text, and professional profile into a structured interview-preparation artifact via a multi-stage generation pipeline.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
