// Package main implements resumectl, a command line tool for extracting and
// normalizing resume text without running the API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resumectl",
	Short: "Resume text extraction tools",
	Long:  "resumectl extracts plain text from PDF resumes and normalizes text the same way the Resume Optimizer API does.",

	SilenceUsage: true,
}

func main() {
	// A .env next to the binary supplies EXTRACTION_TIMEOUT and RESUMECTL_JOBS.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
