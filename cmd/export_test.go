package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/docchat/testutil"
)

func TestExportCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantFiles []string
		wantText  string
	}{
		{
			name:      "all as markdown",
			args:      []string{"--format", "md"},
			wantFiles: []string{"doc1_1710495045123.md", "doc2_1710400000000.md"},
			wantText:  "Chapter 2 covers the rollout plan.",
		},
		{
			name:      "one document as jsonl",
			args:      []string{"--format", "jsonl", "--doc", "doc2"},
			wantFiles: []string{"doc2_1710400000000.jsonl"},
			wantText:  "The budget is 40k.",
		},
		{
			name:      "html",
			args:      []string{"-f", "html", "--doc", "doc1"},
			wantFiles: []string{"doc1_1710495045123.html"},
			wantText:  "<html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seed(t)
			outDir := testutil.CreateTempDir(t)

			args := append([]string{"export", "--out", outDir}, tt.args...)
			out, err := env.run(t, args...)
			if err != nil {
				t.Fatalf("export error = %v", err)
			}
			if !strings.Contains(out, "Export complete") {
				t.Errorf("unexpected output:\n%s", out)
			}

			entries, err := os.ReadDir(outDir)
			if err != nil {
				t.Fatalf("ReadDir() error = %v", err)
			}
			if len(entries) != len(tt.wantFiles) {
				t.Fatalf("exported %d files, want %d", len(entries), len(tt.wantFiles))
			}

			var all strings.Builder
			for _, name := range tt.wantFiles {
				data, err := os.ReadFile(filepath.Join(outDir, name))
				if err != nil {
					t.Fatalf("missing export %s: %v", name, err)
				}
				all.Write(data)
			}
			if !strings.Contains(all.String(), tt.wantText) {
				t.Errorf("exports do not contain %q", tt.wantText)
			}
		})
	}
}

func TestExportCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unsupported format", args: []string{"--format", "pdf"}},
		{name: "unknown document", args: []string{"--doc", "doc9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seed(t)

			args := append([]string{"export", "--out", testutil.CreateTempDir(t)}, tt.args...)
			if _, err := env.run(t, args...); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestExportCommand_NothingToExport(t *testing.T) {
	env := newTestEnv(t)
	outDir := filepath.Join(testutil.CreateTempDir(t), "exports")

	if _, err := env.run(t, "export", "--out", outDir); err != nil {
		t.Fatalf("export error = %v", err)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("output directory should not be created when nothing is exported")
	}
}
