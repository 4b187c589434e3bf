package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/textnorm"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize text read from stdin",
	Long:  "Reads text from stdin and writes it back with the whitespace rules applied to extracted resumes.",
	Args:  cobra.NoArgs,
	RunE:  runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	in, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	text := textnorm.Clean(string(in))
	if text == "" {
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
