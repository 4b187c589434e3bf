package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/pdf/pdftest"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []string
		want    []string
		wantErr bool
	}{
		{"single input is resume.txt", []string{"in/jane.pdf"}, []string{"out/resume.txt"}, false},
		{"several inputs keep names", []string{"a/jane.pdf", "b/bob.PDF"}, []string{"out/jane.txt", "out/bob.txt"}, false},
		{"colliding names", []string{"a/jane.pdf", "b/jane.pdf"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPaths(tt.inputs, "out")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for i := range tt.want {
				tt.want[i] = filepath.FromSlash(tt.want[i])
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFiles_Single(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "text")
	path := writeFile(t, in, "jane.pdf", pdftest.Build("Jane Doe", "Go Engineer"))

	var log bytes.Buffer
	require.NoError(t, extractFiles(context.Background(), []string{path}, out, 2, 0, &log))

	text, err := os.ReadFile(filepath.Join(out, "resume.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nGo Engineer", string(text))
	assert.Contains(t, log.String(), "(2 pages, 4 words)")
}

func TestExtractFiles_Many(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	inputs := []string{
		writeFile(t, in, "jane.pdf", pdftest.Build("Jane")),
		writeFile(t, in, "bob.pdf", pdftest.Build("Bob")),
		writeFile(t, in, "ana.pdf", pdftest.Build("Ana")),
	}

	var log bytes.Buffer
	require.NoError(t, extractFiles(context.Background(), inputs, out, 2, 0, &log))

	for name, want := range map[string]string{"jane.txt": "Jane", "bob.txt": "Bob", "ana.txt": "Ana"} {
		text, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(text))
	}
	assert.Equal(t, 3, strings.Count(log.String(), "✅"))
}

func TestExtractFiles_BadInput(t *testing.T) {
	in := t.TempDir()
	inputs := []string{
		writeFile(t, in, "good.pdf", pdftest.Build("Fine")),
		writeFile(t, in, "bad.pdf", []byte("not a pdf")),
	}

	err := extractFiles(context.Background(), inputs, t.TempDir(), 1, 0, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.pdf")
}

func TestNormalizeCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("  Jane \t Doe\r\n\r\n\r\n  Go   Engineer  "))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"normalize"})
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "Jane Doe\n\nGo Engineer\n", out.String())
}

func TestApplyEnvDefaults(t *testing.T) {
	tests := []struct {
		name        string
		timeoutEnv  string
		jobsEnv     string
		args        []string
		wantTimeout time.Duration
		wantJobs    int
		wantErr     bool
	}{
		{name: "no env", wantTimeout: 0, wantJobs: 4},
		{name: "bare seconds", timeoutEnv: "45", wantTimeout: 45 * time.Second, wantJobs: 4},
		{name: "duration string", timeoutEnv: "2m", jobsEnv: "8", wantTimeout: 2 * time.Minute, wantJobs: 8},
		{name: "flags win", timeoutEnv: "45", jobsEnv: "8", args: []string{"--timeout=3s", "--jobs=2"}, wantTimeout: 3 * time.Second, wantJobs: 2},
		{name: "bad timeout", timeoutEnv: "soon", wantErr: true},
		{name: "bad jobs", jobsEnv: "many", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EXTRACTION_TIMEOUT", tt.timeoutEnv)
			t.Setenv("RESUMECTL_JOBS", tt.jobsEnv)

			var (
				jobs    int
				timeout time.Duration
			)
			cmd := &cobra.Command{Use: "extract"}
			cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "")
			cmd.Flags().DurationVar(&timeout, "timeout", 0, "")
			require.NoError(t, cmd.Flags().Parse(tt.args))

			err := applyEnvDefaults(cmd, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTimeout, timeout)
			assert.Equal(t, tt.wantJobs, jobs)
		})
	}
}
