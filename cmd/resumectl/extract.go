package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/buffer"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/extraction"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>...",
	Short: "Extract text from one or more PDF files",
	Long: "Extracts and normalizes the text of each PDF. With a single input the text is written to resume.txt; " +
		"with several inputs each file gets <name>.txt. Files are processed concurrently.",
	Args:    cobra.MinimumNArgs(1),
	PreRunE: applyEnvDefaults,
	RunE:    runExtract,
}

var (
	extractOutputDir string
	extractJobs      int
	extractTimeout   time.Duration
)

func init() {
	extractCmd.Flags().StringVarP(&extractOutputDir, "out", "o", ".", "Directory to write text files into")
	extractCmd.Flags().IntVarP(&extractJobs, "jobs", "j", 4, "Maximum number of files extracted at once (env RESUMECTL_JOBS)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 0, "Per-file extraction timeout, 0 = none (env EXTRACTION_TIMEOUT)")

	rootCmd.AddCommand(extractCmd)
}

// applyEnvDefaults fills flags the user did not pass from the environment,
// so resumectl honours the same EXTRACTION_TIMEOUT as the server.
func applyEnvDefaults(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if v, ok := os.LookupEnv("EXTRACTION_TIMEOUT"); ok && v != "" && !flags.Changed("timeout") {
		d := v
		// A bare integer means seconds, as in the server config.
		if _, err := strconv.Atoi(v); err == nil {
			d += "s"
		}
		if err := flags.Set("timeout", d); err != nil {
			return fmt.Errorf("EXTRACTION_TIMEOUT=%q: %w", v, err)
		}
	}

	if v, ok := os.LookupEnv("RESUMECTL_JOBS"); ok && v != "" && !flags.Changed("jobs") {
		if err := flags.Set("jobs", v); err != nil {
			return fmt.Errorf("RESUMECTL_JOBS=%q: %w", v, err)
		}
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	return extractFiles(cmd.Context(), args, extractOutputDir, extractJobs, extractTimeout, cmd.OutOrStdout())
}

// extractFiles extracts every input concurrently, at most jobs at a time.
// The first failure cancels the files not yet started and is returned.
func extractFiles(ctx context.Context, inputs []string, outDir string, jobs int, timeout time.Duration, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	targets, err := outputPaths(inputs, outDir)
	if err != nil {
		return err
	}

	var mu sync.Mutex // serializes progress lines
	g, gCtx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	for i, input := range inputs {
		target := targets[i]
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			words, pages, err := extractOne(gCtx, input, target, timeout)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			mu.Lock()
			fmt.Fprintf(out, "✅ %s -> %s (%d pages, %d words)\n", input, target, pages, words)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func extractOne(ctx context.Context, input, target string, timeout time.Duration) (words, pages int, err error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read file: %w", err)
	}

	result, err := extraction.ExtractPDF(ctx, data, timeout)
	if err != nil {
		return 0, 0, err
	}

	b := buffer.New(result.Text)
	if err := os.WriteFile(target, b.ExportBytes(), 0o644); err != nil {
		return 0, 0, fmt.Errorf("failed to write output: %w", err)
	}
	return result.WordCount, result.PageCount, nil
}

// outputPaths names the text file for each input. A single input always
// becomes resume.txt; several inputs keep their base names, which must then
// be unique.
func outputPaths(inputs []string, outDir string) ([]string, error) {
	if len(inputs) == 1 {
		return []string{filepath.Join(outDir, buffer.ExportFilename)}, nil
	}

	seen := make(map[string]string, len(inputs))
	paths := make([]string, len(inputs))
	for i, input := range inputs {
		base := filepath.Base(input)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, input, name)
		}
		seen[name] = input
		paths[i] = filepath.Join(outDir, name)
	}
	return paths, nil
}
